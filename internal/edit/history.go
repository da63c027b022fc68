package edit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Manager is the linear undo/redo history: an ordered command sequence and
// a stack pointer.
//
// commands[0..current] is the "done" prefix; anything after current is the
// redo tail and is discarded the moment a new command executes. There are
// no other states.
//
// Manager serializes all execute/undo/redo traffic. Two commands in flight
// against the same canonical store would corrupt the linear history
// invariant, so each call runs to completion under the manager's lock.
//
// Construct one Manager per editing session and Clear it on teardown;
// there is no ambient global instance, so independent sessions (and tests)
// never interfere.
type Manager struct {
	mu       sync.Mutex
	commands []Command
	current  int // index of last done command; -1 when empty
	log      *slog.Logger
}

// SummaryEntry is one row of the read-only history listing.
type SummaryEntry struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Current     bool   `json:"current" yaml:"current"`
}

// NewManager creates an empty history.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{current: -1, log: logger}
}

// ExecuteCommand runs cmd and, on success, records it: the redo tail is
// truncated, cmd is appended, and the stack pointer advances. On failure
// the stack is left exactly as it was and the error propagates.
//
// If the command on top of the stack implements Merger and absorbs cmd,
// cmd's effect is folded into the existing entry instead of growing the
// history (rapid consecutive selection edits coalesce this way).
func (m *Manager) ExecuteCommand(ctx context.Context, cmd Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := cmd.Execute(ctx); err != nil {
		m.log.Warn("command execute failed",
			"command_id", cmd.ID(),
			"description", cmd.Description(),
			"error", err,
		)
		return fmt.Errorf("execute %s: %w", cmd.Description(), err)
	}

	// Merge into the top entry when possible, but only when the top is the
	// current command - merging across an undone boundary would resurrect
	// the redo tail.
	if m.current >= 0 && m.current == len(m.commands)-1 {
		if top, ok := m.commands[m.current].(Merger); ok && top.TryMerge(cmd) {
			m.log.Debug("command merged into previous entry",
				"command_id", cmd.ID(),
				"merged_into", m.commands[m.current].ID(),
			)
			return nil
		}
	}

	// Truncate the redo tail, then append.
	m.commands = append(m.commands[:m.current+1], cmd)
	m.current++

	m.log.Debug("command recorded",
		"command_id", cmd.ID(),
		"description", cmd.Description(),
		"stack_depth", len(m.commands),
	)
	return nil
}

// Undo reverses the current command. Returns (false, nil) when there is
// nothing to undo, (false, err) when the command's Undo failed - the stack
// pointer is unchanged in that case, so the caller may retry.
func (m *Manager) Undo(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current < 0 {
		return false, nil
	}

	cmd := m.commands[m.current]
	if err := cmd.Undo(ctx); err != nil {
		m.log.Warn("undo failed",
			"command_id", cmd.ID(),
			"description", cmd.Description(),
			"error", err,
		)
		return false, fmt.Errorf("undo %s: %w", cmd.Description(), err)
	}

	m.current--
	return true, nil
}

// Redo re-executes the next command past the stack pointer. Returns
// (false, nil) when there is nothing to redo, (false, err) when the
// re-execute failed - the tentative pointer advance is rolled back.
func (m *Manager) Redo(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current >= len(m.commands)-1 {
		return false, nil
	}

	cmd := m.commands[m.current+1]
	if err := cmd.Execute(ctx); err != nil {
		m.log.Warn("redo failed",
			"command_id", cmd.ID(),
			"description", cmd.Description(),
			"error", err,
		)
		return false, fmt.Errorf("redo %s: %w", cmd.Description(), err)
	}

	m.current++
	return true, nil
}

// CanUndo reports whether the done prefix is non-empty.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current >= 0
}

// CanRedo reports whether a redo tail exists.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current < len(m.commands)-1
}

// Clear resets the history to the empty state.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = nil
	m.current = -1
}

// Len returns the number of recorded commands (done prefix plus redo tail).
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.commands)
}

// Summary returns a read-only listing of the history for UI display.
func (m *Manager) Summary() []SummaryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SummaryEntry, len(m.commands))
	for i, cmd := range m.commands {
		out[i] = SummaryEntry{
			ID:          cmd.ID(),
			Description: cmd.Description(),
			Current:     i == m.current,
		}
	}
	return out
}
