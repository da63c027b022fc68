package edit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCommand is a minimal command whose execute/undo outcomes are
// controlled by the test. It records the order of calls in a shared log.
type scriptedCommand struct {
	meta
	execErr error
	undoErr error
	log     *[]string
}

func newScripted(id string, log *[]string) *scriptedCommand {
	return &scriptedCommand{meta: meta{id: id, description: id}, log: log}
}

func (c *scriptedCommand) Execute(context.Context) error {
	if c.execErr != nil {
		return c.execErr
	}
	if c.log != nil {
		*c.log = append(*c.log, "exec:"+c.id)
	}
	return nil
}

func (c *scriptedCommand) Undo(context.Context) error {
	if c.undoErr != nil {
		return c.undoErr
	}
	if c.log != nil {
		*c.log = append(*c.log, "undo:"+c.id)
	}
	return nil
}

func newTestManager() *Manager {
	return NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestManager_Empty(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())

	ok, err := m.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "undo on empty history is a no-op")

	ok, err = m.Redo(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_ExecuteRecordsOnSuccess(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	var log []string

	require.NoError(t, m.ExecuteCommand(ctx, newScripted("A", &log)))
	assert.True(t, m.CanUndo())
	assert.False(t, m.CanRedo())
	assert.Equal(t, 1, m.Len())
}

func TestManager_ExecuteFailureLeavesStackUntouched(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	var log []string

	require.NoError(t, m.ExecuteCommand(ctx, newScripted("A", &log)))

	bad := newScripted("B", &log)
	bad.execErr = errors.New("source offline")
	err := m.ExecuteCommand(ctx, bad)
	require.Error(t, err)

	assert.Equal(t, 1, m.Len(), "failed command is not recorded")
	summary := m.Summary()
	require.Len(t, summary, 1)
	assert.Equal(t, "A", summary[0].Description)
	assert.True(t, summary[0].Current)
}

func TestManager_StackTruncation(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	var log []string

	// History [A, B, C], then undo twice, then execute D: [A, D].
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, m.ExecuteCommand(ctx, newScripted(id, &log)))
	}
	for i := 0; i < 2; i++ {
		ok, err := m.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, m.ExecuteCommand(ctx, newScripted("D", &log)))

	summary := m.Summary()
	require.Len(t, summary, 2)
	assert.Equal(t, "A", summary[0].Description)
	assert.Equal(t, "D", summary[1].Description)
	assert.True(t, summary[1].Current)
	assert.False(t, m.CanRedo(), "B and C are discarded")
}

func TestManager_UndoRedoReplay(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	var log []string

	require.NoError(t, m.ExecuteCommand(ctx, newScripted("A", &log)))

	ok, err := m.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Redo(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{"exec:A", "undo:A", "exec:A"}, log)
}

func TestManager_FailedUndoKeepsIndex(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	var log []string

	cmd := newScripted("A", &log)
	require.NoError(t, m.ExecuteCommand(ctx, cmd))

	cmd.undoErr = errors.New("rebuild failed")
	ok, err := m.Undo(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.True(t, m.CanUndo(), "failed undo is retryable")

	// Clearing the fault lets the retry succeed.
	cmd.undoErr = nil
	ok, err = m.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManager_FailedRedoRollsBackIncrement(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	var log []string

	cmd := newScripted("A", &log)
	require.NoError(t, m.ExecuteCommand(ctx, cmd))
	_, err := m.Undo(ctx)
	require.NoError(t, err)

	cmd.execErr = errors.New("source offline")
	ok, err := m.Redo(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.True(t, m.CanRedo(), "failed redo is retryable")
	assert.False(t, m.CanUndo())
}

func TestManager_Clear(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	var log []string

	require.NoError(t, m.ExecuteCommand(ctx, newScripted("A", &log)))
	m.Clear()

	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
	assert.Empty(t, m.Summary())
}

func TestManager_SummaryMarksCurrent(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	var log []string

	require.NoError(t, m.ExecuteCommand(ctx, newScripted("A", &log)))
	require.NoError(t, m.ExecuteCommand(ctx, newScripted("B", &log)))
	_, err := m.Undo(ctx)
	require.NoError(t, err)

	summary := m.Summary()
	require.Len(t, summary, 2)
	assert.True(t, summary[0].Current)
	assert.False(t, summary[1].Current)
}

func TestManager_IndependentSessions(t *testing.T) {
	ctx := context.Background()
	var log []string

	m1 := newTestManager()
	m2 := newTestManager()

	require.NoError(t, m1.ExecuteCommand(ctx, newScripted("A", &log)))
	assert.True(t, m1.CanUndo())
	assert.False(t, m2.CanUndo(), "sessions do not share history")
}
