package history

import (
	"errors"
	"reflect"
	"testing"
)

// canvas records the replayed operations since the last Clear.
type canvas struct {
	ops    []string
	clears int
}

func (c *canvas) Clear() {
	c.ops = nil
	c.clears++
}

func (c *canvas) draw(name string) Command {
	return CommandFunc(func() { c.ops = append(c.ops, name) })
}

type snapCounter struct {
	n   int
	err error
}

func (s *snapCounter) SaveSnapshot() error {
	s.n++
	return s.err
}

func newStack(t *testing.T) (*Stack, *canvas) {
	t.Helper()
	c := &canvas{}
	s := New(c)
	s.SetBaseline(c.draw("base"))
	return s, c
}

func TestUndoAllReturnsToBaseline(t *testing.T) {
	s, c := newStack(t)
	for _, name := range []string{"a", "b", "c"} {
		cmd := c.draw(name)
		cmd.Execute()
		s.AddCommand(cmd)
	}
	for i := 0; i < 3; i++ {
		s.Undo()
	}
	if !reflect.DeepEqual(c.ops, []string{"base"}) {
		t.Fatalf("after undo ops = %v", c.ops)
	}
	if !s.CommandListEmpty() {
		t.Error("expected nothing left to undo")
	}
	s.Undo()
	if s.Len() != 1 {
		t.Errorf("baseline undone: len %d", s.Len())
	}
}

func TestUndoRedoIdempotent(t *testing.T) {
	s, c := newStack(t)
	s.AddCommand(c.draw("a"))
	s.AddCommand(c.draw("b"))
	s.Undo()
	s.Redo()
	want := []string{"base", "a", "b"}
	for i := 0; i < 5; i++ {
		s.Undo()
		s.Redo()
		if !reflect.DeepEqual(c.ops, want) {
			t.Fatalf("iteration %d: ops = %v", i, c.ops)
		}
	}
	if !s.RedoListEmpty() {
		t.Error("redo list should be empty")
	}
}

func TestAddCommandClearsRedo(t *testing.T) {
	s, c := newStack(t)
	s.AddCommand(c.draw("a"))
	s.AddCommand(c.draw("b"))
	s.Undo()
	s.Undo()
	if s.RedoLen() != 2 {
		t.Fatalf("RedoLen = %d", s.RedoLen())
	}
	s.AddCommand(c.draw("c"))
	if s.RedoLen() != 0 {
		t.Errorf("redo not cleared: %d", s.RedoLen())
	}
	s.Redo()
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestDisabledSuppressesHistory(t *testing.T) {
	notified := 0
	c := &canvas{}
	s := New(c, WithListener(func() { notified++ }))
	s.SetBaseline(c.draw("base"))
	s.AddCommand(c.draw("a"))
	s.Undo()

	s.Disable()
	before := notified
	s.AddCommand(c.draw("b"))
	s.Undo()
	s.Redo()
	if s.Len() != 1 || s.RedoLen() != 1 {
		t.Fatalf("history changed while disabled: len %d redo %d", s.Len(), s.RedoLen())
	}
	if !s.CommandListEmpty() || !s.RedoListEmpty() {
		t.Error("disabled stack should report empty lists")
	}
	if notified != before {
		t.Errorf("unexpected notifications while disabled: %d", notified-before)
	}
	s.Enable()
	if s.RedoListEmpty() {
		t.Error("redo available again after Enable")
	}
	if notified == before {
		t.Error("Enable should notify")
	}
}

func TestSnapshotAfterMutation(t *testing.T) {
	snap := &snapCounter{err: errors.New("disk full")}
	c := &canvas{}
	s := New(c, WithSnapshotter(snap))
	s.SetBaseline(c.draw("base"))
	s.AddCommand(c.draw("a"))
	s.Undo()
	s.Redo()
	if snap.n != 3 {
		t.Errorf("snapshots = %d, want 3", snap.n)
	}
}

func TestReplayClearsFirst(t *testing.T) {
	s, c := newStack(t)
	s.AddCommand(c.draw("a"))
	clears := c.clears
	s.Undo()
	if c.clears != clears+1 {
		t.Errorf("undo did not clear the canvas")
	}
}
