package app

import (
	"errors"
	"fmt"

	"todos/model"
)

// ErrIndexOutOfRange is the panic value (wrapped) raised when a visible index
// does not address a row under the current filter. It means the caller is out
// of sync with what is rendered, so it is never recovered here.
var ErrIndexOutOfRange = errors.New("visible index out of range")

// State is the list state model: the ordered entries, the active filter and
// the two text buffers behind the new-entry and edit inputs.
type State struct {
	entries   []model.Entry
	filter    model.Filter
	value     string
	editValue string
}

// NewState seeds a state from previously persisted entries.
func NewState(entries []model.Entry) *State {
	return &State{entries: copyEntries(entries), filter: model.FilterAll}
}

// Entries returns a copy of the backing sequence.
func (s *State) Entries() []model.Entry {
	return copyEntries(s.entries)
}

// Visible returns the entries passing the active filter, in order.
func (s *State) Visible() []model.Entry {
	out := make([]model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if s.filter.Fits(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *State) Filter() model.Filter { return s.filter }
func (s *State) Value() string        { return s.value }
func (s *State) EditValue() string    { return s.editValue }

// Reset swaps in a new backing sequence and leaves filter and buffers alone.
// Used when the persisted entries change underneath the running session.
func (s *State) Reset(entries []model.Entry) {
	s.entries = copyEntries(entries)
}

func (s *State) AddEntry() {
	s.entries = append(s.entries, model.Entry{Description: s.value})
	s.value = ""
}

func (s *State) UpdateValue(text string) {
	s.value = text
}

func (s *State) UpdateEditValue(text string) {
	s.editValue = text
}

// BeginEdit loads the entry's description into the edit buffer and flips its
// editing flag. A second call on the same row leaves edit mode without
// committing.
func (s *State) BeginEdit(visibleIdx int) {
	idx := resolve(s.entries, s.filter, visibleIdx)
	s.editValue = s.entries[idx].Description
	s.entries[idx].Editing = !s.entries[idx].Editing
}

// CommitEdit writes the edit buffer into the entry, flips its editing flag
// and clears the buffer.
func (s *State) CommitEdit(visibleIdx int) {
	idx := resolve(s.entries, s.filter, visibleIdx)
	s.entries[idx].Description = s.editValue
	s.entries[idx].Editing = !s.entries[idx].Editing
	s.editValue = ""
}

func (s *State) RemoveEntry(visibleIdx int) {
	idx := resolve(s.entries, s.filter, visibleIdx)
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
}

func (s *State) SetFilter(filter model.Filter) {
	s.filter = filter
}

// ToggleAll completes every visible entry unless all of them already are, in
// which case it reopens them. Hidden entries are untouched.
func (s *State) ToggleAll() {
	target := !s.IsAllCompleted()
	for i := range s.entries {
		if s.filter.Fits(s.entries[i]) {
			s.entries[i].Completed = target
		}
	}
}

func (s *State) ToggleEntry(visibleIdx int) {
	idx := resolve(s.entries, s.filter, visibleIdx)
	s.entries[idx].Completed = !s.entries[idx].Completed
}

// ClearCompleted drops every completed entry regardless of the display filter.
func (s *State) ClearCompleted() {
	kept := make([]model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if model.FilterActive.Fits(e) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

func (s *State) Noop() {}

func (s *State) TotalCount() int {
	return len(s.entries)
}

func (s *State) TotalCompletedCount() int {
	return s.count(model.FilterCompleted)
}

// ActiveCount is the number of entries still open.
func (s *State) ActiveCount() int {
	return s.count(model.FilterActive)
}

// IsAllCompleted is false for an empty visible set.
func (s *State) IsAllCompleted() bool {
	seen := false
	for _, e := range s.entries {
		if !s.filter.Fits(e) {
			continue
		}
		if !e.Completed {
			return false
		}
		seen = true
	}
	return seen
}

func (s *State) count(filter model.Filter) int {
	n := 0
	for _, e := range s.entries {
		if filter.Fits(e) {
			n++
		}
	}
	return n
}

// resolve maps a position among the entries passing filter to its position
// in entries. It panics when visibleIdx addresses no visible row.
func resolve(entries []model.Entry, filter model.Filter, visibleIdx int) int {
	if visibleIdx >= 0 {
		seen := 0
		for i, e := range entries {
			if !filter.Fits(e) {
				continue
			}
			if seen == visibleIdx {
				return i
			}
			seen++
		}
	}
	panic(fmt.Errorf("%w: %d (filter %s)", ErrIndexOutOfRange, visibleIdx, filter))
}

func copyEntries(entries []model.Entry) []model.Entry {
	out := make([]model.Entry, len(entries))
	copy(out, entries)
	return out
}
