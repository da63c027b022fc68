package comp

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Compositor. It renders nothing; it records the
// exact state the edit engine pushed across the boundary, which is what the
// harness and tests assert against and what the CLI prints.
//
// Failure injection (FailAttach, FailDetach) exercises the hard-error paths
// of attach/detach without a real engine.
type Memory struct {
	mu       sync.Mutex
	nodes    map[string]*MemoryNode // nodes constructed, attached or not
	attached map[string]bool

	// FailAttach and FailDetach, when set, make the next matching call
	// return the given error once.
	FailAttach error
	FailDetach error
}

// NewMemory creates an empty in-process compositor.
func NewMemory() *Memory {
	return &Memory{
		nodes:    make(map[string]*MemoryNode),
		attached: make(map[string]bool),
	}
}

// NewNode constructs a detached node for the given placement id.
func (m *Memory) NewNode(id string, kind string) (Node, error) {
	if id == "" {
		return nil, fmt.Errorf("comp: node id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := &MemoryNode{id: id, Kind: kind, Opacity: 1}
	m.nodes[id] = n
	return n, nil
}

// Attach marks a node attached. Attaching an already-attached node is an
// error: it means two commands believe they own the same placement.
func (m *Memory) Attach(_ context.Context, node Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailAttach; err != nil {
		m.FailAttach = nil
		return err
	}
	if m.attached[node.ID()] {
		return fmt.Errorf("comp: node %s already attached", node.ID())
	}
	m.attached[node.ID()] = true
	m.nodes[node.ID()] = node.(*MemoryNode)
	return nil
}

// Detach removes a node from the composition.
func (m *Memory) Detach(_ context.Context, node Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailDetach; err != nil {
		m.FailDetach = nil
		return err
	}
	if !m.attached[node.ID()] {
		return fmt.Errorf("comp: node %s not attached", node.ID())
	}
	delete(m.attached, node.ID())
	return nil
}

// AttachedCount returns the number of nodes currently in the composition.
func (m *Memory) AttachedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attached)
}

// AttachedIDs returns the ids of all attached nodes, sorted.
func (m *Memory) AttachedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.attached))
	for id := range m.attached {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Attached returns the live node for a placement id, if attached.
func (m *Memory) Attached(id string) (Node, bool) {
	n, ok := m.AttachedNode(id)
	if !ok {
		return nil, false
	}
	return n, true
}

// AttachedNode is Attached with the concrete node type, for tests that
// inspect recorded state.
func (m *Memory) AttachedNode(id string) (*MemoryNode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.attached[id] {
		return nil, false
	}
	return m.nodes[id], true
}

// MemoryNode records every value set through the Node interface.
type MemoryNode struct {
	id   string
	Kind string

	TimelineStartMicros int64
	TimelineEndMicros   int64
	SourceStartMicros   int64
	SourceEndMicros     int64
	HasSourceRange      bool

	Geometry Geometry
	Opacity  float64
	ZOrder   int
	Audio    AudioState
	GainDB   float64
}

// ID implements Node.
func (n *MemoryNode) ID() string { return n.id }

// SetTimelineRange implements Node.
func (n *MemoryNode) SetTimelineRange(startMicros, endMicros int64) {
	n.TimelineStartMicros = startMicros
	n.TimelineEndMicros = endMicros
}

// SetSourceRange implements Node.
func (n *MemoryNode) SetSourceRange(startMicros, endMicros int64) {
	n.SourceStartMicros = startMicros
	n.SourceEndMicros = endMicros
	n.HasSourceRange = true
}

// SetGeometry implements Node.
func (n *MemoryNode) SetGeometry(g Geometry) { n.Geometry = g }

// SetOpacity implements Node.
func (n *MemoryNode) SetOpacity(opacity float64) { n.Opacity = opacity }

// SetZOrder implements Node.
func (n *MemoryNode) SetZOrder(z int) { n.ZOrder = z }

// SetAudioState implements Node.
func (n *MemoryNode) SetAudioState(state AudioState) { n.Audio = state }

// SetGain implements Node.
func (n *MemoryNode) SetGain(db float64) { n.GainDB = db }

// State returns a copy of the node's observable placement, used by tests
// to compare reconstruction results bit for bit.
func (n *MemoryNode) State() MemoryNode {
	return *n
}
