package app

import (
	"errors"
	"reflect"
	"testing"

	"todos/model"
)

func entries(pairs ...any) []model.Entry {
	out := make([]model.Entry, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.Entry{Description: pairs[i].(string), Completed: pairs[i+1].(bool)})
	}
	return out
}

func mustPanicOutOfRange(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic for invalid index")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange panic, got %v", r)
		}
	}()
	fn()
}

func TestNewStateDefaults(t *testing.T) {
	s := NewState(nil)
	if s.TotalCount() != 0 {
		t.Fatalf("expected empty state, got %d entries", s.TotalCount())
	}
	if s.Filter() != model.FilterAll {
		t.Fatalf("expected default filter All, got %s", s.Filter())
	}
	if s.Value() != "" || s.EditValue() != "" {
		t.Fatalf("expected empty buffers, got value=%q edit=%q", s.Value(), s.EditValue())
	}
}

func TestNewStateCopiesInput(t *testing.T) {
	seed := entries("A", false)
	s := NewState(seed)
	seed[0].Description = "mutated"
	if got := s.Entries()[0].Description; got != "A" {
		t.Fatalf("expected state to own its entries, got %q", got)
	}
}

func TestAddEntryAppendsAndClearsValue(t *testing.T) {
	s := NewState(entries("A", true))
	s.UpdateValue("X")
	s.AddEntry()

	want := []model.Entry{
		{Description: "A", Completed: true},
		{Description: "X"},
	}
	if !reflect.DeepEqual(want, s.Entries()) {
		t.Fatalf("unexpected entries\nwant=%+v\ngot=%+v", want, s.Entries())
	}
	if s.Value() != "" {
		t.Fatalf("expected value to be cleared, got %q", s.Value())
	}
}

func TestAddEntryKeepsTextVerbatim(t *testing.T) {
	s := NewState(nil)
	s.AddEntry()
	s.UpdateValue("  padded  ")
	s.AddEntry()

	got := s.Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Description != "" {
		t.Fatalf("expected blank entry, got %q", got[0].Description)
	}
	if got[1].Description != "  padded  " {
		t.Fatalf("expected untrimmed text, got %q", got[1].Description)
	}
}

func TestToggleEntryIsInvolution(t *testing.T) {
	s := NewState(entries("A", false, "B", true))
	s.ToggleEntry(1)
	if s.Entries()[1].Completed {
		t.Fatalf("expected B to be reopened")
	}
	s.ToggleEntry(1)
	if !s.Entries()[1].Completed {
		t.Fatalf("expected B to be completed again")
	}
}

func TestToggleEntryUsesVisibleIndex(t *testing.T) {
	s := NewState(entries("A", true, "B", false, "C", false))
	s.SetFilter(model.FilterActive)
	s.ToggleEntry(1)

	want := entries("A", true, "B", false, "C", true)
	if !reflect.DeepEqual(want, s.Entries()) {
		t.Fatalf("unexpected entries\nwant=%+v\ngot=%+v", want, s.Entries())
	}
}

func TestRemoveEntryUnderActiveFilter(t *testing.T) {
	s := NewState(entries("A", false, "B", true, "C", false))
	s.SetFilter(model.FilterActive)

	visible := s.Visible()
	if len(visible) != 2 || visible[0].Description != "A" || visible[1].Description != "C" {
		t.Fatalf("unexpected visible rows: %+v", visible)
	}

	s.RemoveEntry(1)
	want := entries("A", false, "B", true)
	if !reflect.DeepEqual(want, s.Entries()) {
		t.Fatalf("expected C to be removed\nwant=%+v\ngot=%+v", want, s.Entries())
	}
}

func TestRemoveEntryUnderCompletedFilter(t *testing.T) {
	s := NewState(entries("A", true, "B", false, "C", true))
	s.SetFilter(model.FilterCompleted)
	s.RemoveEntry(0)

	want := entries("B", false, "C", true)
	if !reflect.DeepEqual(want, s.Entries()) {
		t.Fatalf("unexpected entries\nwant=%+v\ngot=%+v", want, s.Entries())
	}
}

func TestToggleAllFlipsBetweenStates(t *testing.T) {
	s := NewState(entries("A", false, "B", true, "C", false))

	s.ToggleAll()
	for _, e := range s.Entries() {
		if !e.Completed {
			t.Fatalf("expected all completed after first toggle, got %+v", s.Entries())
		}
	}

	s.ToggleAll()
	for _, e := range s.Entries() {
		if e.Completed {
			t.Fatalf("expected all open after second toggle, got %+v", s.Entries())
		}
	}
}

func TestToggleAllOnlyTouchesVisibleEntries(t *testing.T) {
	s := NewState(entries("A", false, "B", true, "C", false))
	s.SetFilter(model.FilterCompleted)

	// B is the only visible entry and it is completed, so the target is false.
	s.ToggleAll()
	want := entries("A", false, "B", false, "C", false)
	if !reflect.DeepEqual(want, s.Entries()) {
		t.Fatalf("unexpected entries\nwant=%+v\ngot=%+v", want, s.Entries())
	}
}

func TestToggleAllOnEmptyVisibleSetChangesNothing(t *testing.T) {
	s := NewState(entries("A", false))
	s.SetFilter(model.FilterCompleted)
	s.ToggleAll()

	want := entries("A", false)
	if !reflect.DeepEqual(want, s.Entries()) {
		t.Fatalf("unexpected entries\nwant=%+v\ngot=%+v", want, s.Entries())
	}
}

func TestClearCompletedIgnoresFilterAndIsIdempotent(t *testing.T) {
	s := NewState(entries("A", false, "B", true, "C", false, "D", true))
	s.SetFilter(model.FilterActive)

	s.ClearCompleted()
	once := s.Entries()
	want := entries("A", false, "C", false)
	if !reflect.DeepEqual(want, once) {
		t.Fatalf("unexpected entries\nwant=%+v\ngot=%+v", want, once)
	}

	s.ClearCompleted()
	if !reflect.DeepEqual(once, s.Entries()) {
		t.Fatalf("expected second clear to be a no-op, got %+v", s.Entries())
	}
}

func TestBeginAndCommitEdit(t *testing.T) {
	s := NewState(entries("A", true, "B", false))
	s.SetFilter(model.FilterActive)

	s.BeginEdit(0)
	if s.EditValue() != "B" {
		t.Fatalf("expected edit buffer to hold B, got %q", s.EditValue())
	}
	if !s.Entries()[1].Editing {
		t.Fatalf("expected B to be in edit mode")
	}

	s.UpdateEditValue("B2")
	s.CommitEdit(0)

	got := s.Entries()[1]
	if got.Description != "B2" || got.Editing {
		t.Fatalf("expected committed B2 out of edit mode, got %+v", got)
	}
	if s.EditValue() != "" {
		t.Fatalf("expected edit buffer cleared, got %q", s.EditValue())
	}
	if s.Entries()[0].Description != "A" {
		t.Fatalf("expected hidden entry untouched, got %+v", s.Entries()[0])
	}
}

func TestBeginEditTwiceCancelsWithoutCommitting(t *testing.T) {
	s := NewState(entries("A", false))
	s.BeginEdit(0)
	s.UpdateEditValue("changed")
	s.BeginEdit(0)

	got := s.Entries()[0]
	if got.Editing {
		t.Fatalf("expected second BeginEdit to leave edit mode")
	}
	if got.Description != "A" {
		t.Fatalf("expected description unchanged, got %q", got.Description)
	}
	if s.EditValue() != "A" {
		t.Fatalf("expected edit buffer reloaded from description, got %q", s.EditValue())
	}
}

func TestMultipleEntriesMayBeEditing(t *testing.T) {
	s := NewState(entries("A", false, "B", false))
	s.BeginEdit(0)
	s.BeginEdit(1)
	for i, e := range s.Entries() {
		if !e.Editing {
			t.Fatalf("expected entry %d editing", i)
		}
	}
	if s.EditValue() != "B" {
		t.Fatalf("expected shared buffer to hold the last begun edit, got %q", s.EditValue())
	}
}

func TestSetFilterDoesNotAlterEntries(t *testing.T) {
	seed := entries("A", false, "B", true)
	s := NewState(seed)
	for _, f := range model.Filters() {
		s.SetFilter(f)
		if s.Filter() != f {
			t.Fatalf("expected filter %s, got %s", f, s.Filter())
		}
		if !reflect.DeepEqual(seed, s.Entries()) {
			t.Fatalf("filter %s altered entries: %+v", f, s.Entries())
		}
	}
}

func TestNoopChangesNothing(t *testing.T) {
	s := NewState(entries("A", true))
	s.UpdateValue("v")
	s.UpdateEditValue("e")
	s.Noop()
	if s.Value() != "v" || s.EditValue() != "e" || !reflect.DeepEqual(entries("A", true), s.Entries()) {
		t.Fatalf("noop mutated state")
	}
}

func TestCounts(t *testing.T) {
	s := NewState(entries("A", false, "B", true, "C", true))
	if s.TotalCount() != 3 {
		t.Fatalf("expected total 3, got %d", s.TotalCount())
	}
	if s.TotalCompletedCount() != 2 {
		t.Fatalf("expected 2 completed, got %d", s.TotalCompletedCount())
	}
	if s.ActiveCount() != 1 {
		t.Fatalf("expected 1 active, got %d", s.ActiveCount())
	}
	s.SetFilter(model.FilterActive)
	if s.TotalCount() != 3 {
		t.Fatalf("expected total to ignore filter, got %d", s.TotalCount())
	}
}

func TestIsAllCompleted(t *testing.T) {
	s := NewState(entries("A", false, "B", true))
	if s.IsAllCompleted() {
		t.Fatalf("expected not all completed under All")
	}
	s.SetFilter(model.FilterCompleted)
	if !s.IsAllCompleted() {
		t.Fatalf("expected all visible completed under Completed")
	}

	empty := NewState(entries("A", false))
	empty.SetFilter(model.FilterCompleted)
	if empty.IsAllCompleted() {
		t.Fatalf("expected false for empty visible set")
	}
	if NewState(nil).IsAllCompleted() {
		t.Fatalf("expected false for empty list")
	}
}

func TestResetReplacesEntriesOnly(t *testing.T) {
	s := NewState(entries("A", false))
	s.SetFilter(model.FilterActive)
	s.UpdateValue("draft")
	s.Reset(entries("Z", true))

	if !reflect.DeepEqual(entries("Z", true), s.Entries()) {
		t.Fatalf("unexpected entries after reset: %+v", s.Entries())
	}
	if s.Filter() != model.FilterActive || s.Value() != "draft" {
		t.Fatalf("reset must keep filter and buffers")
	}
}

func TestInvalidVisibleIndexPanics(t *testing.T) {
	s := NewState(entries("A", false, "B", true))
	s.SetFilter(model.FilterActive)

	mustPanicOutOfRange(t, func() { s.ToggleEntry(1) })
	mustPanicOutOfRange(t, func() { s.RemoveEntry(-1) })
	mustPanicOutOfRange(t, func() { s.BeginEdit(5) })
	mustPanicOutOfRange(t, func() { s.CommitEdit(1) })

	if !reflect.DeepEqual(entries("A", false, "B", true), s.Entries()) {
		t.Fatalf("failed operations must not mutate entries, got %+v", s.Entries())
	}
}

func TestResolve(t *testing.T) {
	list := entries("A", false, "B", true, "C", false, "D", true)
	cases := []struct {
		filter  model.Filter
		visible int
		want    int
	}{
		{model.FilterAll, 2, 2},
		{model.FilterActive, 0, 0},
		{model.FilterActive, 1, 2},
		{model.FilterCompleted, 0, 1},
		{model.FilterCompleted, 1, 3},
	}
	for _, c := range cases {
		if got := resolve(list, c.filter, c.visible); got != c.want {
			t.Fatalf("resolve(%s, %d) = %d, want %d", c.filter, c.visible, got, c.want)
		}
	}
}
