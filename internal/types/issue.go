package types

import (
	"slices"
	"sort"
)

// Issue is the aggregate root. The struct itself is the plain row: scalar
// fields plus the repository-maintained comment id set and the tag set.
// Hydrated reads (row + full comment snapshots) are represented separately by
// HydratedIssue so that stale comment copies never ride along on writes.
type Issue struct {
	ID                   int64  `json:"id" db:"id"`
	AuthorID             string `json:"author_id" db:"author_id"`
	Title                string `json:"title" db:"title"`
	DescriptionCommentID int64  `json:"description_comment_id,omitempty" db:"description_comment_id"` // 0 = none
	AssignedTo           string `json:"assigned_to,omitempty" db:"assigned_to"`                        // "" = unassigned
	Status               Status `json:"status" db:"status"`
	CreatedAt            int64  `json:"created_at" db:"created_at"` // epoch milliseconds, 0 = unknown

	CommentIDs []int64 `json:"comment_ids,omitempty"`
	Tags       []Tag   `json:"tags,omitempty"`
}

// NewIssue creates a validated, not-yet-persisted issue with the default
// status.
func NewIssue(authorID, title string, createdAt int64) (*Issue, error) {
	i := &Issue{
		AuthorID:  authorID,
		Title:     title,
		Status:    StatusToDo,
		CreatedAt: createdAt,
	}
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return i, nil
}

// Validate checks the issue invariants.
func (i *Issue) Validate() error {
	if i.ID < 0 {
		return Validationf("issue id must not be negative")
	}
	if i.AuthorID == "" {
		return Validationf("issue author must not be empty")
	}
	if i.Title == "" {
		return Validationf("issue title must not be empty")
	}
	if !i.Status.IsValid() {
		return Validationf("unknown status %q", string(i.Status))
	}
	if i.CreatedAt < 0 {
		return Validationf("issue timestamp must not be negative")
	}
	if i.DescriptionCommentID < 0 {
		return Validationf("description comment id must not be negative")
	}
	if i.DescriptionCommentID != 0 && !slices.Contains(i.CommentIDs, i.DescriptionCommentID) {
		return Validationf("description comment %d is not attached to the issue", i.DescriptionCommentID)
	}
	return nil
}

// HasPersistentID reports whether a repository has assigned an id.
func (i *Issue) HasPersistentID() bool { return i.ID > 0 }

// AssignID records the repository-assigned id, exactly once.
func (i *Issue) AssignID(id int64) error {
	if i.HasPersistentID() {
		return Conflictf("issue id already set to %d", i.ID)
	}
	if id <= 0 {
		return Validationf("persistent issue id must be positive, got %d", id)
	}
	i.ID = id
	return nil
}

// SetTitle replaces the title.
func (i *Issue) SetTitle(title string) error {
	if title == "" {
		return Validationf("issue title must not be empty")
	}
	i.Title = title
	return nil
}

// SetAuthor replaces the author reference.
func (i *Issue) SetAuthor(authorID string) error {
	if authorID == "" {
		return Validationf("issue author must not be empty")
	}
	i.AuthorID = authorID
	return nil
}

// AssignTo sets the assignee. Whether the user exists is checked at the
// service boundary, not here.
func (i *Issue) AssignTo(userName string) error {
	if userName == "" {
		return Validationf("assignee must not be empty")
	}
	i.AssignedTo = userName
	return nil
}

// Unassign clears the assignee.
func (i *Issue) Unassign() { i.AssignedTo = "" }

// HasAssignee reports whether the issue is assigned.
func (i *Issue) HasAssignee() bool { return i.AssignedTo != "" }

// SetStatus replaces the status. All transitions are allowed.
func (i *Issue) SetStatus(s Status) error {
	if !s.IsValid() {
		return Validationf("unknown status %q", string(s))
	}
	i.Status = s
	return nil
}

// SetCreatedAt sets the creation time in epoch milliseconds.
func (i *Issue) SetCreatedAt(ts int64) error {
	if ts < 0 {
		return Validationf("issue timestamp must not be negative")
	}
	i.CreatedAt = ts
	return nil
}

// AddCommentID attaches a persisted comment id to the issue's id set.
// Duplicates are ignored; the set stays sorted ascending.
func (i *Issue) AddCommentID(id int64) error {
	if id <= 0 {
		return Validationf("comment id must be positive, got %d", id)
	}
	if slices.Contains(i.CommentIDs, id) {
		return nil
	}
	i.CommentIDs = append(i.CommentIDs, id)
	sort.Slice(i.CommentIDs, func(a, b int) bool { return i.CommentIDs[a] < i.CommentIDs[b] })
	return nil
}

// RemoveCommentID detaches a comment id. Removing the id that backs the
// description clears the description link. Reports whether the id was present.
func (i *Issue) RemoveCommentID(id int64) bool {
	idx := slices.Index(i.CommentIDs, id)
	if idx < 0 {
		return false
	}
	if i.DescriptionCommentID == id {
		i.DescriptionCommentID = 0
	}
	i.CommentIDs = slices.Delete(i.CommentIDs, idx, idx+1)
	return true
}

// SetDescriptionCommentID marks a comment as the issue's long-form
// description. The id is added to the comment id set if absent.
func (i *Issue) SetDescriptionCommentID(id int64) error {
	if err := i.AddCommentID(id); err != nil {
		return err
	}
	i.DescriptionCommentID = id
	return nil
}

// HasDescription reports whether a description comment is linked.
func (i *Issue) HasDescription() bool { return i.DescriptionCommentID > 0 }

// AddTag adds or updates a tag in the issue's tag set. It reports true when
// the set changed: a brand-new tag, or an existing tag whose color changed.
func (i *Issue) AddTag(tag Tag) (bool, error) {
	if err := tag.Validate(); err != nil {
		return false, err
	}
	for idx, existing := range i.Tags {
		if existing.Name != tag.Name {
			continue
		}
		if existing.Color == tag.Color {
			return false, nil
		}
		i.Tags[idx].Color = tag.Color
		return true, nil
	}
	i.Tags = append(i.Tags, tag)
	sort.Slice(i.Tags, func(a, b int) bool { return i.Tags[a].Name < i.Tags[b].Name })
	return true, nil
}

// RemoveTag removes a tag by name, reporting whether it was present.
func (i *Issue) RemoveTag(name string) bool {
	for idx, existing := range i.Tags {
		if existing.Name == name {
			i.Tags = slices.Delete(i.Tags, idx, idx+1)
			return true
		}
	}
	return false
}

// HasTag reports whether a tag with the given name is present.
func (i *Issue) HasTag(name string) bool {
	for _, existing := range i.Tags {
		if existing.Name == name {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the row.
func (i *Issue) Clone() *Issue {
	cp := *i
	cp.CommentIDs = slices.Clone(i.CommentIDs)
	cp.Tags = slices.Clone(i.Tags)
	return &cp
}

// HydratedIssue is an issue row together with snapshots of all its comments,
// ordered by ascending comment id. Repositories produce it on every read so
// consumers can render an issue without a second round-trip; it is never an
// input to a write.
type HydratedIssue struct {
	Issue
	Comments []*Comment `json:"comments,omitempty"`
}

// FindComment returns the comment snapshot with the given id, or nil.
func (h *HydratedIssue) FindComment(id int64) *Comment {
	for _, c := range h.Comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// UpsertComment inserts or replaces a comment snapshot, keeping the snapshot
// list ordered by id and the comment id set in sync.
func (h *HydratedIssue) UpsertComment(c *Comment) error {
	if c == nil || !c.HasPersistentID() {
		return Validationf("hydrated comments must carry a persistent id")
	}
	for idx, existing := range h.Comments {
		if existing.ID == c.ID {
			h.Comments[idx] = c
			return nil
		}
	}
	h.Comments = append(h.Comments, c)
	sort.Slice(h.Comments, func(a, b int) bool { return h.Comments[a].ID < h.Comments[b].ID })
	return h.AddCommentID(c.ID)
}

// RemoveComment drops a snapshot along with its id set entry, clearing the
// description link when it pointed at the removed comment.
func (h *HydratedIssue) RemoveComment(id int64) bool {
	for idx, existing := range h.Comments {
		if existing.ID == id {
			h.Comments = slices.Delete(h.Comments, idx, idx+1)
			break
		}
	}
	return h.RemoveCommentID(id)
}

// Description returns the text of the description comment, or "" when the
// issue has none.
func (h *HydratedIssue) Description() string {
	if !h.HasDescription() {
		return ""
	}
	if c := h.FindComment(h.DescriptionCommentID); c != nil {
		return c.Text
	}
	return ""
}

// Clone returns a deep copy.
func (h *HydratedIssue) Clone() *HydratedIssue {
	cp := &HydratedIssue{Issue: *h.Issue.Clone()}
	cp.Comments = make([]*Comment, 0, len(h.Comments))
	for _, c := range h.Comments {
		cp.Comments = append(cp.Comments, c.Clone())
	}
	return cp
}
