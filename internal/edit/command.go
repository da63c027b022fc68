// Package edit implements the undoable command engine at the core of the
// timeline editor.
//
// The defining invariant: no command retains a live render node across
// time. Commands capture canonical placement snapshots at construction and
// rebuild render nodes from them on every execute and undo, so a node that
// the compositor has long since disposed can always be reconstructed from
// the same data. Two consecutive redos produce two independently
// constructed nodes with identical observable state.
//
// The Manager serializes all execute/undo/redo traffic; the canonical
// project store is mutated only by the currently-executing command.
package edit

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reelkit/reelkit/internal/comp"
	"github.com/reelkit/reelkit/internal/media"
	"github.com/reelkit/reelkit/internal/project"
)

// Command is one unit of undoable work.
//
// A command is immutable once constructed except for snapshots it captures
// during its own Execute/Undo. Execute and Undo may suspend on the
// compositor; they must be called to completion before the next command
// runs - the Manager enforces this.
type Command interface {
	// ID returns the command's unique id.
	ID() string

	// Description is a short human-readable label for history display.
	Description() string

	// Execute applies the command to the canonical store and, where
	// applicable, reconstructs and attaches a render node.
	Execute(ctx context.Context) error

	// Undo restores the canonical store from the captured snapshot and,
	// where applicable, reconstructs the prior render node.
	Undo(ctx context.Context) error
}

// Merger is implemented by commands that can absorb an immediately
// following command of the same kind. The Manager consults the top of the
// stack after each successful execute; a successful merge means the new
// command is not pushed.
type Merger interface {
	// TryMerge absorbs next into the receiver. Returns false when the two
	// commands cannot coalesce (different kind, mode, or too far apart in
	// time); the receiver is unchanged in that case.
	TryMerge(next Command) bool
}

// meta is the shared bookkeeping every command carries: plain data, not an
// inherited method set.
type meta struct {
	id          string
	description string
	timestamp   time.Time
}

func (m meta) ID() string          { return m.id }
func (m meta) Description() string { return m.description }

// IDGenerator produces ids for commands and generated placements.
// Implemented by UUIDGenerator (production) and SequenceGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates time-sortable UUIDv7 ids.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns "prefix-1", "prefix-2", ... for deterministic
// tests and golden traces.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator with the given prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return g.prefix + "-" + strconv.Itoa(g.n)
}

// Env bundles the collaborators a concrete command needs: the canonical
// store, the media library, the compositor, and the rebuilder. One Env is
// shared by every command in a session.
type Env struct {
	Project *project.Project
	Library *media.Library
	Comp    comp.Compositor
	Rebuild *Rebuilder
	IDs     IDGenerator
	Log     *slog.Logger

	// Now stamps command construction time. Overridable for the selection
	// merge-window tests.
	Now func() time.Time
}

// NewEnv wires a command environment with production defaults.
func NewEnv(p *project.Project, lib *media.Library, c comp.Compositor, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{
		Project: p,
		Library: lib,
		Comp:    c,
		Rebuild: NewRebuilder(p, lib, c, logger),
		IDs:     UUIDGenerator{},
		Log:     logger,
		Now:     time.Now,
	}
}

// newMeta stamps shared command bookkeeping.
func (e *Env) newMeta(description string) meta {
	return meta{
		id:          e.IDs.Generate(),
		description: description,
		timestamp:   e.Now(),
	}
}
