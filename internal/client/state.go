package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/todomvc/internal/model"
)

var ErrIndexOutOfRange = errors.New("index out of range")

type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

func (f Filter) Fits(e model.Entry) bool {
	switch f {
	case FilterActive:
		return !e.Completed
	case FilterCompleted:
		return e.Completed
	default:
		return true
	}
}

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

func (f Filter) Href() string {
	switch f {
	case FilterActive:
		return "#/active"
	case FilterCompleted:
		return "#/completed"
	default:
		return "#/"
	}
}

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed":
		return FilterCompleted, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q", s)
}

// State is the client-side mirror of the task list plus UI buffers. Every
// index taken by its methods counts only entries that fit Filter.
type State struct {
	Entries   []model.Entry
	Filter    Filter
	Value     string
	EditValue string
}

// Visible returns copies of the entries that fit the current filter.
func (s State) Visible() []model.Entry {
	out := make([]model.Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if s.Filter.Fits(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s State) Total() int {
	return len(s.Entries)
}

func (s State) TotalCompleted() int {
	n := 0
	for _, e := range s.Entries {
		if FilterCompleted.Fits(e) {
			n++
		}
	}
	return n
}

func (s State) TotalActive() int {
	return s.Total() - s.TotalCompleted()
}

// IsAllCompleted is false when nothing fits the filter.
func (s State) IsAllCompleted() bool {
	seen := false
	for _, e := range s.Entries {
		if !s.Filter.Fits(e) {
			continue
		}
		seen = true
		if !e.Completed {
			return false
		}
	}
	return seen
}

// rawIndex resolves a filtered index to its position in Entries.
func (s *State) rawIndex(idx int) (int, error) {
	if idx < 0 {
		return -1, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	n := 0
	for i, e := range s.Entries {
		if !s.Filter.Fits(e) {
			continue
		}
		if n == idx {
			return i, nil
		}
		n++
	}
	return -1, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx, n)
}

func (s *State) Remove(idx int) (model.Entry, error) {
	i, err := s.rawIndex(idx)
	if err != nil {
		return model.Entry{}, err
	}
	e := s.Entries[i]
	s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
	return e, nil
}

func (s *State) Toggle(idx int) (model.Entry, error) {
	i, err := s.rawIndex(idx)
	if err != nil {
		return model.Entry{}, err
	}
	s.Entries[i].Completed = !s.Entries[i].Completed
	return s.Entries[i], nil
}

// ToggleAll sets completed on every entry that fits the filter.
func (s *State) ToggleAll(value bool) {
	for i := range s.Entries {
		if s.Filter.Fits(s.Entries[i]) {
			s.Entries[i].Completed = value
		}
	}
}

// ToggleEdit leaves at most the target in edit mode and seeds EditValue
// with its content.
func (s *State) ToggleEdit(idx int) (model.Entry, error) {
	i, err := s.rawIndex(idx)
	if err != nil {
		return model.Entry{}, err
	}
	s.clearEditingExcept(i)
	s.EditValue = s.Entries[i].Content
	s.Entries[i].Editing = !s.Entries[i].Editing
	return s.Entries[i], nil
}

func (s *State) clearEditingExcept(keep int) {
	for i := range s.Entries {
		if i != keep {
			s.Entries[i].Editing = false
		}
	}
}

// CompleteEdit stores content and always leaves the entry out of edit mode.
// Empty content removes the entry instead; removed reports which happened.
func (s *State) CompleteEdit(idx int, content string) (e model.Entry, removed bool, err error) {
	if content == "" {
		e, err = s.Remove(idx)
		return e, err == nil, err
	}
	i, err := s.rawIndex(idx)
	if err != nil {
		return model.Entry{}, false, err
	}
	s.Entries[i].Content = content
	s.Entries[i].Editing = false
	return s.Entries[i], false, nil
}

// ClearCompleted drops every completed entry, regardless of filter, and
// returns what was dropped.
func (s *State) ClearCompleted() []model.Entry {
	kept := make([]model.Entry, 0, len(s.Entries))
	var removed []model.Entry
	for _, e := range s.Entries {
		if FilterActive.Fits(e) {
			kept = append(kept, e)
		} else {
			removed = append(removed, e)
		}
	}
	s.Entries = kept
	return removed
}

func (s *State) SetFilter(f Filter) {
	s.Filter = f
}
