// Package memory provides a pure in-memory storage backend. It holds every
// entity behind a single RWMutex and hands out deep copies, so callers can
// never mutate the store through a returned snapshot. Semantics match the
// relational backend operation for operation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/types"
)

var _ storage.Repository = (*Store)(nil)

// issueRecord is the canonical in-store form of an issue: the row plus the
// authoritative comment list. Comment id sets and hydrated views are derived
// from it on every read.
type issueRecord struct {
	issue    types.Issue
	comments []*types.Comment
}

// Store is the in-memory repository.
type Store struct {
	mu sync.RWMutex

	issues     map[int64]*issueRecord
	users      map[string]types.User
	milestones map[int64]*types.Milestone

	nextIssueID     int64
	nextMilestoneID int64
}

// New returns an empty store. Ids are allocated monotonically starting at 1,
// mirroring the relational backend's autoincrement columns.
func New() *Store {
	return &Store{
		issues:          make(map[int64]*issueRecord),
		users:           make(map[string]types.User),
		milestones:      make(map[int64]*types.Milestone),
		nextIssueID:     1,
		nextMilestoneID: 1,
	}
}

// Close releases nothing; it exists to satisfy the repository contract.
func (s *Store) Close() error { return nil }

func nowMillis() int64 { return time.Now().UnixMilli() }

// hydrate builds the caller-owned view of a record: cloned row, cloned
// comments ordered by id, the derived comment id set, and the description
// link honored only when it points at an attached comment.
func (r *issueRecord) hydrate() (*types.HydratedIssue, error) {
	row := r.issue.Clone()
	descID := row.DescriptionCommentID
	row.DescriptionCommentID = 0
	row.CommentIDs = nil

	h := &types.HydratedIssue{Issue: *row}
	for _, c := range r.comments {
		if err := h.UpsertComment(c.Clone()); err != nil {
			return nil, err
		}
	}
	if descID > 0 && h.FindComment(descID) != nil {
		if err := h.SetDescriptionCommentID(descID); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// SaveIssue inserts a fresh issue (zero id) or replaces the scalar fields and
// tag set of an existing one. The comment set is never touched here.
func (s *Store) SaveIssue(_ context.Context, issue *types.Issue) (*types.HydratedIssue, error) {
	if issue == nil {
		return nil, types.Validationf("issue must not be nil")
	}
	if err := issue.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := issue.Clone()
	stored.CommentIDs = nil
	if stored.CreatedAt == 0 {
		if err := stored.SetCreatedAt(nowMillis()); err != nil {
			return nil, err
		}
	}

	var record *issueRecord
	if !stored.HasPersistentID() {
		if err := stored.AssignID(s.nextIssueID); err != nil {
			return nil, err
		}
		s.nextIssueID++
		record = &issueRecord{issue: *stored}
		s.issues[stored.ID] = record
	} else {
		existing, ok := s.issues[stored.ID]
		if !ok {
			return nil, storage.NotFoundf("issue %d", stored.ID)
		}
		record = &issueRecord{issue: *stored, comments: existing.comments}
		s.issues[stored.ID] = record
	}
	return record.hydrate()
}

// GetIssue returns a hydrated issue or ErrNotFound.
func (s *Store) GetIssue(_ context.Context, id int64) (*types.HydratedIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.issues[id]
	if !ok {
		return nil, storage.NotFoundf("issue %d", id)
	}
	return record.hydrate()
}

// DeleteIssue removes an issue along with its comments, tags and milestone
// memberships, mirroring the relational cascade.
func (s *Store) DeleteIssue(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteIssueLocked(id), nil
}

func (s *Store) deleteIssueLocked(id int64) bool {
	if _, ok := s.issues[id]; !ok {
		return false
	}
	delete(s.issues, id)
	for _, m := range s.milestones {
		m.RemoveIssue(id)
	}
	return true
}

// ListIssues returns every issue hydrated, ordered by ascending id.
func (s *Store) ListIssues(_ context.Context) ([]*types.HydratedIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listIssuesLocked()
}

func (s *Store) listIssuesLocked() ([]*types.HydratedIssue, error) {
	ids := make([]int64, 0, len(s.issues))
	for id := range s.issues {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	issues := make([]*types.HydratedIssue, 0, len(ids))
	for _, id := range ids {
		h, err := s.issues[id].hydrate()
		if err != nil {
			return nil, err
		}
		issues = append(issues, h)
	}
	return issues, nil
}

// FindIssues filters the full hydrated list through the predicate.
func (s *Store) FindIssues(_ context.Context, keep func(*types.HydratedIssue) bool) ([]*types.HydratedIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.listIssuesLocked()
	if err != nil {
		return nil, err
	}
	filtered := make([]*types.HydratedIssue, 0, len(all))
	for _, issue := range all {
		if keep(issue) {
			filtered = append(filtered, issue)
		}
	}
	return filtered, nil
}

// SaveComment inserts a fresh comment (zero id) under the issue, allocating
// max existing id plus one, or replaces an existing one. A zero timestamp is
// filled at first insert.
func (s *Store) SaveComment(_ context.Context, issueID int64, comment *types.Comment) (*types.Comment, error) {
	if comment == nil {
		return nil, types.Validationf("comment must not be nil")
	}
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.issues[issueID]
	if !ok {
		return nil, storage.NotFoundf("issue %d", issueID)
	}

	stored := comment.Clone()
	if !stored.HasPersistentID() {
		if stored.Timestamp == 0 {
			if err := stored.SetTimestamp(nowMillis()); err != nil {
				return nil, err
			}
		}
		var next int64 = 1
		for _, c := range record.comments {
			if c.ID >= next {
				next = c.ID + 1
			}
		}
		if err := stored.AssignID(next); err != nil {
			return nil, err
		}
		record.comments = append(record.comments, stored.Clone())
		return stored, nil
	}

	for idx, c := range record.comments {
		if c.ID == stored.ID {
			record.comments[idx] = stored.Clone()
			return stored, nil
		}
	}
	return nil, storage.NotFoundf("comment %d on issue %d", stored.ID, issueID)
}

// GetComment returns one comment of an issue or ErrNotFound.
func (s *Store) GetComment(_ context.Context, issueID, commentID int64) (*types.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.issues[issueID]
	if !ok {
		return nil, storage.NotFoundf("comment %d on issue %d", commentID, issueID)
	}
	for _, c := range record.comments {
		if c.ID == commentID {
			return c.Clone(), nil
		}
	}
	return nil, storage.NotFoundf("comment %d on issue %d", commentID, issueID)
}

// GetAllComments returns the issue's comments ordered by ascending id.
func (s *Store) GetAllComments(_ context.Context, issueID int64) ([]*types.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.issues[issueID]
	if !ok {
		return nil, storage.NotFoundf("issue %d", issueID)
	}
	comments := make([]*types.Comment, 0, len(record.comments))
	for _, c := range record.comments {
		comments = append(comments, c.Clone())
	}
	sort.Slice(comments, func(a, b int) bool { return comments[a].ID < comments[b].ID })
	return comments, nil
}

// DeleteComment removes one comment, clearing the issue's description link
// when it pointed at the removed comment.
func (s *Store) DeleteComment(_ context.Context, issueID, commentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.issues[issueID]
	if !ok {
		return false, nil
	}
	for idx, c := range record.comments {
		if c.ID != commentID {
			continue
		}
		if record.issue.DescriptionCommentID == commentID {
			record.issue.DescriptionCommentID = 0
		}
		record.comments = append(record.comments[:idx], record.comments[idx+1:]...)
		return true, nil
	}
	return false, nil
}

// SaveUser upserts a user keyed by name.
func (s *Store) SaveUser(_ context.Context, user *types.User) (*types.User, error) {
	if user == nil {
		return nil, types.Validationf("user must not be nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.Name] = *user
	stored := *user
	return &stored, nil
}

// GetUser returns the user with the given name or ErrNotFound.
func (s *Store) GetUser(_ context.Context, name string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[name]
	if !ok {
		return nil, storage.NotFoundf("user %q", name)
	}
	return &user, nil
}

// DeleteUser removes a user. Issues and comments referencing the name are
// left untouched; rewriting those is the caller's concern.
func (s *Store) DeleteUser(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[name]; !ok {
		return false, nil
	}
	delete(s.users, name)
	return true, nil
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(_ context.Context) ([]*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*types.User, 0, len(s.users))
	for _, user := range s.users {
		u := user
		users = append(users, &u)
	}
	sort.Slice(users, func(a, b int) bool {
		return strings.Compare(users[a].Name, users[b].Name) < 0
	})
	return users, nil
}

// AddTag attaches a tag to an issue, recoloring it when already present.
// It reports whether the issue's tag set actually changed.
func (s *Store) AddTag(_ context.Context, issueID int64, tag types.Tag) (bool, error) {
	if err := tag.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.issues[issueID]
	if !ok {
		return false, storage.NotFoundf("issue %d", issueID)
	}
	return record.issue.AddTag(tag)
}

// RemoveTag detaches a tag by name, reporting whether it was present.
func (s *Store) RemoveTag(_ context.Context, issueID int64, tagName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.issues[issueID]
	if !ok {
		return false, storage.NotFoundf("issue %d", issueID)
	}
	return record.issue.RemoveTag(tagName), nil
}

// SaveMilestone inserts a fresh milestone (zero id) or replaces the scalar
// fields of an existing one. Issue membership is managed exclusively through
// AddIssueToMilestone and RemoveIssueFromMilestone.
func (s *Store) SaveMilestone(_ context.Context, milestone *types.Milestone) (*types.Milestone, error) {
	if milestone == nil {
		return nil, types.Validationf("milestone must not be nil")
	}
	if err := milestone.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := milestone.Clone()
	stored.IssueIDs = nil
	if !stored.HasPersistentID() {
		if err := stored.AssignID(s.nextMilestoneID); err != nil {
			return nil, err
		}
		s.nextMilestoneID++
	} else {
		existing, ok := s.milestones[stored.ID]
		if !ok {
			return nil, storage.NotFoundf("milestone %d", stored.ID)
		}
		stored.IssueIDs = existing.IssueIDs
	}
	s.milestones[stored.ID] = stored.Clone()
	return stored.Clone(), nil
}

// GetMilestone returns a milestone with its member issue ids or ErrNotFound.
func (s *Store) GetMilestone(_ context.Context, id int64) (*types.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	milestone, ok := s.milestones[id]
	if !ok {
		return nil, storage.NotFoundf("milestone %d", id)
	}
	return milestone.Clone(), nil
}

// DeleteMilestone removes a milestone. With cascade set the member issues are
// deleted too.
func (s *Store) DeleteMilestone(_ context.Context, id int64, cascade bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	milestone, ok := s.milestones[id]
	if !ok {
		return false, nil
	}
	if cascade {
		for _, issueID := range milestone.IssueIDs {
			s.deleteIssueLocked(issueID)
		}
	}
	delete(s.milestones, id)
	return true, nil
}

// ListMilestones returns all milestones ordered by start date, then id.
func (s *Store) ListMilestones(_ context.Context) ([]*types.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	milestones := make([]*types.Milestone, 0, len(s.milestones))
	for _, m := range s.milestones {
		milestones = append(milestones, m.Clone())
	}
	sort.Slice(milestones, func(a, b int) bool {
		if milestones[a].StartDate != milestones[b].StartDate {
			return milestones[a].StartDate < milestones[b].StartDate
		}
		return milestones[a].ID < milestones[b].ID
	})
	return milestones, nil
}

// AddIssueToMilestone links an issue into a milestone. Both sides must exist.
// Linking an already-linked issue is a no-op reported as false.
func (s *Store) AddIssueToMilestone(_ context.Context, milestoneID, issueID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	milestone, ok := s.milestones[milestoneID]
	if !ok {
		return false, storage.NotFoundf("milestone %d", milestoneID)
	}
	if _, ok := s.issues[issueID]; !ok {
		return false, storage.NotFoundf("issue %d", issueID)
	}
	if milestone.HasIssue(issueID) {
		return false, nil
	}
	if err := milestone.AddIssue(issueID); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveIssueFromMilestone unlinks an issue, reporting whether it was linked.
// Both sides must exist, matching AddIssueToMilestone.
func (s *Store) RemoveIssueFromMilestone(_ context.Context, milestoneID, issueID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	milestone, ok := s.milestones[milestoneID]
	if !ok {
		return false, storage.NotFoundf("milestone %d", milestoneID)
	}
	if _, ok := s.issues[issueID]; !ok {
		return false, storage.NotFoundf("issue %d", issueID)
	}
	return milestone.RemoveIssue(issueID), nil
}

// GetIssuesForMilestone returns the milestone's member issues hydrated,
// ordered by ascending issue id.
func (s *Store) GetIssuesForMilestone(_ context.Context, milestoneID int64) ([]*types.HydratedIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	milestone, ok := s.milestones[milestoneID]
	if !ok {
		return nil, storage.NotFoundf("milestone %d", milestoneID)
	}
	issues := make([]*types.HydratedIssue, 0, len(milestone.IssueIDs))
	for _, issueID := range milestone.IssueIDs {
		record, ok := s.issues[issueID]
		if !ok {
			continue
		}
		h, err := record.hydrate()
		if err != nil {
			return nil, err
		}
		issues = append(issues, h)
	}
	return issues, nil
}
