// Package history keeps the linear undo/redo list of drawing commands and
// rebuilds the canvas by replaying them.
package history

import "log"

// Command redraws one operation against the layer it captured.
type Command interface {
	Execute()
}

// CommandFunc adapts a plain function to Command.
type CommandFunc func()

func (f CommandFunc) Execute() { f() }

// Clearer wipes the base canvas before a replay.
type Clearer interface {
	Clear()
}

// Snapshotter persists the canvas after every history change.
type Snapshotter interface {
	SaveSnapshot() error
}

// Option configures a Stack.
type Option func(*Stack)

// WithSnapshotter saves a snapshot after every mutation.
func WithSnapshotter(s Snapshotter) Option {
	return func(st *Stack) { st.snap = s }
}

// WithListener registers fn to be called whenever the stack changes state.
func WithListener(fn func()) Option {
	return func(st *Stack) {
		if fn != nil {
			st.listeners = append(st.listeners, fn)
		}
	}
}

// Stack is the undo/redo history. Index 0 of the command list is the
// baseline and is never undone.
type Stack struct {
	canvas    Clearer
	snap      Snapshotter
	listeners []func()

	commandList []Command
	undoneList  []Command
	disabled    bool
}

// New returns an empty stack that clears canvas before each replay.
func New(canvas Clearer, opts ...Option) *Stack {
	s := &Stack{canvas: canvas}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddListener registers fn for change notifications.
func (s *Stack) AddListener(fn func()) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// AddCommand appends cmd to the history and drops the redo list. It does
// nothing while recording is disabled.
func (s *Stack) AddCommand(cmd Command) {
	if s.disabled || cmd == nil {
		return
	}
	s.commandList = append(s.commandList, cmd)
	s.undoneList = nil
	s.notify()
	s.saveSnapshot()
}

// Undo moves the newest command to the redo list and replays the rest.
func (s *Stack) Undo() {
	if s.disabled || len(s.commandList) <= 1 {
		return
	}
	last := len(s.commandList) - 1
	s.undoneList = append(s.undoneList, s.commandList[last])
	s.commandList = s.commandList[:last]
	s.replay()
	s.notify()
	s.saveSnapshot()
}

// Redo restores the most recently undone command and replays.
func (s *Stack) Redo() {
	if s.disabled || len(s.undoneList) == 0 {
		return
	}
	last := len(s.undoneList) - 1
	s.commandList = append(s.commandList, s.undoneList[last])
	s.undoneList = s.undoneList[:last]
	s.replay()
	s.notify()
	s.saveSnapshot()
}

// SetBaseline discards all history and starts again from cmd.
func (s *Stack) SetBaseline(cmd Command) {
	s.commandList = []Command{cmd}
	s.undoneList = nil
	s.replay()
	s.notify()
}

// Disable suspends recording, undo and redo.
func (s *Stack) Disable() {
	s.disabled = true
	s.notify()
}

// Enable resumes recording.
func (s *Stack) Enable() {
	s.disabled = false
	s.notify()
}

// Enabled reports whether recording is active.
func (s *Stack) Enabled() bool { return !s.disabled }

// CommandListEmpty reports whether there is nothing to undo.
func (s *Stack) CommandListEmpty() bool {
	return s.disabled || len(s.commandList) <= 1
}

// RedoListEmpty reports whether there is nothing to redo.
func (s *Stack) RedoListEmpty() bool {
	return s.disabled || len(s.undoneList) == 0
}

// Len returns the number of commands including the baseline.
func (s *Stack) Len() int { return len(s.commandList) }

// RedoLen returns the number of undone commands.
func (s *Stack) RedoLen() int { return len(s.undoneList) }

// Commands returns a copy of the applied history, baseline first.
func (s *Stack) Commands() []Command {
	out := make([]Command, len(s.commandList))
	copy(out, s.commandList)
	return out
}

func (s *Stack) replay() {
	if s.canvas != nil {
		s.canvas.Clear()
	}
	for _, cmd := range s.commandList {
		if cmd != nil {
			cmd.Execute()
		}
	}
}

func (s *Stack) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

func (s *Stack) saveSnapshot() {
	if s.snap == nil {
		return
	}
	if err := s.snap.SaveSnapshot(); err != nil {
		log.Printf("snapshot: %v", err)
	}
}
