// Package types defines the core entities of the issue tracker: issues,
// comments, users, tags and milestones, together with their invariants.
//
// Entities are created with a zero id ("not yet persisted"). A repository
// assigns a positive id exactly once on first save; a second assignment is a
// conflict. All mutators that touch an invariant validate and return an error
// instead of leaving the entity in a broken state.
package types

import "strings"

// Status represents the current state of an issue.
type Status string

// Issue status constants. Transitions between them are free.
const (
	StatusToDo       Status = "To Be Done"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// IsValid checks if the status value is one of the known states.
func (s Status) IsValid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus resolves a status from its literal text or from the numeric
// aliases "1", "2", "3". The aliases are a convenience for interactive
// callers and are honored only at the service boundary.
func ParseStatus(value string) (Status, error) {
	switch strings.TrimSpace(value) {
	case "1":
		return StatusToDo, nil
	case "2":
		return StatusInProgress, nil
	case "3":
		return StatusDone, nil
	}
	s := Status(value)
	if !s.IsValid() {
		return "", Validationf("unknown status %q", value)
	}
	return s, nil
}

// User is identified by name. Names are case-sensitive and unique across the
// store; the role is free-form text (the frontends offer a fixed list, the
// domain accepts any non-empty role).
type User struct {
	Name string `json:"name" db:"name"`
	Role string `json:"role" db:"role"`
}

// NewUser creates a validated user.
func NewUser(name, role string) (*User, error) {
	u := &User{Name: name, Role: role}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the user invariants.
func (u *User) Validate() error {
	if u.Name == "" {
		return Validationf("user name must not be empty")
	}
	if u.Role == "" {
		return Validationf("user role must not be empty")
	}
	return nil
}

// SetName replaces the user name. The store-wide rename cascade is a service
// concern; this only guards the non-empty invariant.
func (u *User) SetName(name string) error {
	if name == "" {
		return Validationf("user name must not be empty")
	}
	u.Name = name
	return nil
}

// SetRole replaces the role.
func (u *User) SetRole(role string) error {
	if role == "" {
		return Validationf("user role must not be empty")
	}
	u.Role = role
	return nil
}

// Tag is a name with an optional display color. Tags are equal by name.
type Tag struct {
	Name  string `json:"name" db:"name"`
	Color string `json:"color,omitempty" db:"color"`
}

// NewTag creates a validated tag.
func NewTag(name, color string) (Tag, error) {
	t := Tag{Name: name, Color: color}
	if err := t.Validate(); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// Validate checks the tag invariants.
func (t Tag) Validate() error {
	if t.Name == "" {
		return Validationf("tag name must not be empty")
	}
	return nil
}

// Comment is a note on an issue. Comment ids are local to their issue: the
// pair (issue id, comment id) is the real identity, which is why Comment does
// not carry an issue reference itself.
type Comment struct {
	ID        int64  `json:"id" db:"id"`
	Author    string `json:"author_id" db:"author_id"`
	Text      string `json:"text" db:"text"`
	Timestamp int64  `json:"timestamp" db:"timestamp"` // epoch milliseconds, 0 = unknown
}

// NewComment creates a validated, not-yet-persisted comment.
func NewComment(author, text string, timestamp int64) (*Comment, error) {
	c := &Comment{Author: author, Text: text, Timestamp: timestamp}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the comment invariants.
func (c *Comment) Validate() error {
	if c.ID < 0 {
		return Validationf("comment id must not be negative")
	}
	if c.Author == "" {
		return Validationf("comment author must not be empty")
	}
	if c.Text == "" {
		return Validationf("comment text must not be empty")
	}
	if c.Timestamp < 0 {
		return Validationf("comment timestamp must not be negative")
	}
	return nil
}

// HasPersistentID reports whether a repository has assigned an id.
func (c *Comment) HasPersistentID() bool { return c.ID > 0 }

// AssignID records the repository-assigned id. Assigning twice is a conflict;
// this lets callers detect accidental re-insertion.
func (c *Comment) AssignID(id int64) error {
	if c.HasPersistentID() {
		return Conflictf("comment id already set to %d", c.ID)
	}
	if id <= 0 {
		return Validationf("persistent comment id must be positive, got %d", id)
	}
	c.ID = id
	return nil
}

// SetAuthor replaces the author reference.
func (c *Comment) SetAuthor(author string) error {
	if author == "" {
		return Validationf("comment author must not be empty")
	}
	c.Author = author
	return nil
}

// SetText replaces the text.
func (c *Comment) SetText(text string) error {
	if text == "" {
		return Validationf("comment text must not be empty")
	}
	c.Text = text
	return nil
}

// SetTimestamp sets the creation time in epoch milliseconds.
func (c *Comment) SetTimestamp(ts int64) error {
	if ts < 0 {
		return Validationf("comment timestamp must not be negative")
	}
	c.Timestamp = ts
	return nil
}

// Clone returns an independent copy.
func (c *Comment) Clone() *Comment {
	cp := *c
	return &cp
}
