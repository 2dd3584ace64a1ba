package types

import "slices"

// Milestone groups issues into a date-bounded span. Membership is a
// non-owning set of issue ids: removing an issue from a milestone does not
// delete the issue.
type Milestone struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	StartDate   string `json:"start_date" db:"start_date"`
	EndDate     string `json:"end_date" db:"end_date"`

	IssueIDs []int64 `json:"issue_ids,omitempty"`
}

// NewMilestone creates a validated, not-yet-persisted milestone.
func NewMilestone(name, description, startDate, endDate string) (*Milestone, error) {
	m := &Milestone{
		Name:        name,
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the milestone invariants.
func (m *Milestone) Validate() error {
	if m.ID < 0 {
		return Validationf("milestone id must not be negative")
	}
	if m.Name == "" {
		return Validationf("milestone name must not be empty")
	}
	if m.StartDate == "" {
		return Validationf("milestone start date must not be empty")
	}
	if m.EndDate == "" {
		return Validationf("milestone end date must not be empty")
	}
	for _, id := range m.IssueIDs {
		if id <= 0 {
			return Validationf("milestone member issue id must be positive, got %d", id)
		}
	}
	return nil
}

// HasPersistentID reports whether a repository has assigned an id.
func (m *Milestone) HasPersistentID() bool { return m.ID > 0 }

// AssignID records the repository-assigned id, exactly once.
func (m *Milestone) AssignID(id int64) error {
	if m.HasPersistentID() {
		return Conflictf("milestone id already set to %d", m.ID)
	}
	if id <= 0 {
		return Validationf("persistent milestone id must be positive, got %d", id)
	}
	m.ID = id
	return nil
}

// SetName replaces the name.
func (m *Milestone) SetName(name string) error {
	if name == "" {
		return Validationf("milestone name must not be empty")
	}
	m.Name = name
	return nil
}

// SetDescription replaces the description. It may be empty.
func (m *Milestone) SetDescription(description string) {
	m.Description = description
}

// SetStartDate replaces the start date.
func (m *Milestone) SetStartDate(startDate string) error {
	if startDate == "" {
		return Validationf("milestone start date must not be empty")
	}
	m.StartDate = startDate
	return nil
}

// SetEndDate replaces the end date.
func (m *Milestone) SetEndDate(endDate string) error {
	if endDate == "" {
		return Validationf("milestone end date must not be empty")
	}
	m.EndDate = endDate
	return nil
}

// AddIssue adds an issue id to the membership set. Adding an existing member
// is a no-op.
func (m *Milestone) AddIssue(issueID int64) error {
	if issueID <= 0 {
		return Validationf("issue id must be positive, got %d", issueID)
	}
	if m.HasIssue(issueID) {
		return nil
	}
	m.IssueIDs = append(m.IssueIDs, issueID)
	slices.Sort(m.IssueIDs)
	return nil
}

// RemoveIssue drops an issue id from the membership set, reporting whether it
// was present.
func (m *Milestone) RemoveIssue(issueID int64) bool {
	idx := slices.Index(m.IssueIDs, issueID)
	if idx < 0 {
		return false
	}
	m.IssueIDs = slices.Delete(m.IssueIDs, idx, idx+1)
	return true
}

// HasIssue reports whether the issue id is a member.
func (m *Milestone) HasIssue(issueID int64) bool {
	return slices.Contains(m.IssueIDs, issueID)
}

// Clone returns an independent copy.
func (m *Milestone) Clone() *Milestone {
	cp := *m
	cp.IssueIDs = slices.Clone(m.IssueIDs)
	return &cp
}
