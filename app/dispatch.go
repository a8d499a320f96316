package app

import (
	"fmt"
	"log/slog"

	"todos/model"
)

// Msg is one operation against the list state. The set is closed.
type Msg interface {
	apply(s *State)
	name() string
}

type (
	AddMsg             struct{}
	UpdateValueMsg     struct{ Text string }
	UpdateEditValueMsg struct{ Text string }
	BeginEditMsg       struct{ Index int }
	CommitEditMsg      struct{ Index int }
	RemoveMsg          struct{ Index int }
	SetFilterMsg       struct{ Filter model.Filter }
	ToggleAllMsg       struct{}
	ToggleMsg          struct{ Index int }
	ClearCompletedMsg  struct{}
	NoopMsg            struct{}
)

func (AddMsg) apply(s *State)               { s.AddEntry() }
func (m UpdateValueMsg) apply(s *State)     { s.UpdateValue(m.Text) }
func (m UpdateEditValueMsg) apply(s *State) { s.UpdateEditValue(m.Text) }
func (m BeginEditMsg) apply(s *State)       { s.BeginEdit(m.Index) }
func (m CommitEditMsg) apply(s *State)      { s.CommitEdit(m.Index) }
func (m RemoveMsg) apply(s *State)          { s.RemoveEntry(m.Index) }
func (m SetFilterMsg) apply(s *State)       { s.SetFilter(m.Filter) }
func (ToggleAllMsg) apply(s *State)         { s.ToggleAll() }
func (m ToggleMsg) apply(s *State)          { s.ToggleEntry(m.Index) }
func (ClearCompletedMsg) apply(s *State)    { s.ClearCompleted() }
func (NoopMsg) apply(s *State)              { s.Noop() }

func (AddMsg) name() string             { return "add" }
func (UpdateValueMsg) name() string     { return "update" }
func (UpdateEditValueMsg) name() string { return "update_edit" }
func (BeginEditMsg) name() string       { return "begin_edit" }
func (CommitEditMsg) name() string      { return "commit_edit" }
func (RemoveMsg) name() string          { return "remove" }
func (SetFilterMsg) name() string       { return "set_filter" }
func (ToggleAllMsg) name() string       { return "toggle_all" }
func (ToggleMsg) name() string          { return "toggle" }
func (ClearCompletedMsg) name() string  { return "clear_completed" }
func (NoopMsg) name() string            { return "noop" }

// Saver persists the entry sequence.
type Saver interface {
	Save(entries []model.Entry) error
}

// Dispatcher applies messages to a State and saves after every one of them,
// no-ops included.
type Dispatcher struct {
	state *State
	saver Saver
	log   *slog.Logger
}

// NewDispatcher wires a state to its persistence. A nil logger discards.
func NewDispatcher(state *State, saver Saver, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{state: state, saver: saver, log: logger}
}

// State exposes the owned state for rendering.
func (d *Dispatcher) State() *State {
	return d.state
}

// Dispatch applies msg and saves. The returned error only reports a failed
// save; the state change has already happened and is kept.
func (d *Dispatcher) Dispatch(msg Msg) error {
	msg.apply(d.state)
	d.log.Debug("dispatch", "op", msg.name(), "entries", d.state.TotalCount())

	if err := d.saver.Save(d.state.Entries()); err != nil {
		d.log.Error("save failed", "op", msg.name(), "error", err)
		return fmt.Errorf("save after %s: %w", msg.name(), err)
	}
	return nil
}
