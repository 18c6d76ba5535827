package scope

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxLevel is the depth of the scope hierarchy: scope type instance,
// feature, sub-feature, sub-item.
const MaxLevel = 4

// Scope item statuses.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// ErrNotFound is returned when a node id does not address a live node.
var ErrNotFound = errors.New("scope: node not found")

// NodeID is a stable editor-local key for a node. It survives sibling
// removals, unlike a positional path.
type NodeID string

// Node is the domain state of one scope item. Transient view state (editing,
// expansion) lives in the editor's UI-state map, never here.
type Node struct {
	ID             NodeID
	PersistedID    uint // database id, 0 until saved
	Level          int
	TypeID         uint // catalog reference, level 1 only
	Name           string
	Description    string
	Status         string
	StartDate      string // ISO YYYY-MM-DD, empty when unset
	TargetDate     string
	EstimatedHours float64
	Order          int
}

type uiState struct {
	editing  bool
	isNew    bool
	expanded bool
	snapshot *Node // pre-edit copy of a committed node, restored on cancel
}

// Editor maintains the in-memory forest of scope nodes for one container.
// Nodes live in an arena keyed by NodeID; parent/child structure is held
// beside them so that domain fields stay a pure tree for aggregation.
type Editor struct {
	catalog     Catalog
	containerID uint

	nodes    map[NodeID]*Node
	parent   map[NodeID]NodeID // absent for roots
	children map[NodeID][]NodeID
	roots    []NodeID
	ui       map[NodeID]*uiState
}

// NewEditor returns an empty editor for the given container, offering level-1
// choices from catalog.
func NewEditor(catalog Catalog, containerID uint) *Editor {
	return &Editor{
		catalog:     catalog,
		containerID: containerID,
		nodes:       make(map[NodeID]*Node),
		parent:      make(map[NodeID]NodeID),
		children:    make(map[NodeID][]NodeID),
		ui:          make(map[NodeID]*uiState),
	}
}

// Catalog returns the scope type catalog the editor was constructed with.
func (e *Editor) Catalog() Catalog { return e.catalog }

// ContainerID returns the container this editor belongs to.
func (e *Editor) ContainerID() uint { return e.containerID }

// Len returns the total number of live nodes.
func (e *Editor) Len() int { return len(e.nodes) }

// Roots returns the level-1 node ids in insertion order.
func (e *Editor) Roots() []NodeID {
	out := make([]NodeID, len(e.roots))
	copy(out, e.roots)
	return out
}

// ChildrenOf returns the ordered child ids of a node.
func (e *Editor) ChildrenOf(id NodeID) []NodeID {
	kids := e.children[id]
	out := make([]NodeID, len(kids))
	copy(out, kids)
	return out
}

// Node returns a copy of the domain state of a node.
func (e *Editor) Node(id NodeID) (Node, error) {
	n, ok := e.nodes[id]
	if !ok {
		return Node{}, ErrNotFound
	}
	return *n, nil
}

// IsEditing reports whether the node is currently in edit mode.
func (e *Editor) IsEditing(id NodeID) bool {
	st, ok := e.ui[id]
	return ok && st.editing
}

// IsNew reports whether the node has never been committed.
func (e *Editor) IsNew(id NodeID) bool {
	st, ok := e.ui[id]
	return ok && st.isNew
}

// IsExpanded reports whether the node's children are shown.
func (e *Editor) IsExpanded(id NodeID) bool {
	st, ok := e.ui[id]
	return ok && st.expanded
}

// AddNode appends a new node in edit mode under parent (or as a root when
// parent is empty) and auto-expands the parent. The new node's level must be
// exactly one below its parent and within the 4-level hierarchy.
func (e *Editor) AddNode(parent NodeID, level int) (NodeID, error) {
	if level < 1 || level > MaxLevel {
		return "", fmt.Errorf("scope: level %d outside 1..%d", level, MaxLevel)
	}
	if parent == "" {
		if level != 1 {
			return "", fmt.Errorf("scope: root nodes must be level 1, got %d", level)
		}
	} else {
		p, ok := e.nodes[parent]
		if !ok {
			return "", ErrNotFound
		}
		if level != p.Level+1 {
			return "", fmt.Errorf("scope: level %d under level-%d parent, want %d", level, p.Level, p.Level+1)
		}
	}

	id := NodeID(uuid.NewString())
	n := &Node{
		ID:     id,
		Level:  level,
		Status: StatusPlanned,
	}
	e.nodes[id] = n
	e.ui[id] = &uiState{editing: true, isNew: true}

	if parent == "" {
		e.roots = append(e.roots, id)
		n.Order = len(e.roots)
	} else {
		e.parent[id] = parent
		e.children[parent] = append(e.children[parent], id)
		n.Order = len(e.children[parent])
		e.ui[parent].expanded = true
	}
	return id, nil
}

// Import inserts an already-committed node below parent (or as a root when
// parent is empty), keeping the persisted id and field values it carries.
// Callers rebuilding a tree from stored rows or a client payload use this
// instead of the AddNode edit flow; the node is still validated.
func (e *Editor) Import(parent NodeID, n Node) (NodeID, error) {
	id, err := e.AddNode(parent, n.Level)
	if err != nil {
		return "", err
	}
	stored := e.nodes[id]
	order := stored.Order
	*stored = n
	stored.ID = id
	stored.Order = order
	if stored.Status == "" {
		stored.Status = StatusPlanned
	}
	if err := e.Commit(id); err != nil {
		e.detach(id)
		return "", err
	}
	return id, nil
}

// BeginEdit puts a committed node back into edit mode, snapshotting its
// domain state so a later Cancel can restore it.
func (e *Editor) BeginEdit(id NodeID) error {
	n, ok := e.nodes[id]
	if !ok {
		return ErrNotFound
	}
	st := e.ui[id]
	if st.editing {
		return nil
	}
	snap := *n
	st.snapshot = &snap
	st.editing = true
	return nil
}

// Field setters mutate a single domain field without validation; validation
// is deferred to Commit.

func (e *Editor) SetName(id NodeID, name string) error { return e.set(id, func(n *Node) { n.Name = name }) }

func (e *Editor) SetDescription(id NodeID, d string) error {
	return e.set(id, func(n *Node) { n.Description = d })
}

func (e *Editor) SetType(id NodeID, typeID uint) error { return e.set(id, func(n *Node) { n.TypeID = typeID }) }

func (e *Editor) SetStatus(id NodeID, status string) error {
	return e.set(id, func(n *Node) { n.Status = status })
}

func (e *Editor) SetStartDate(id NodeID, date string) error {
	return e.set(id, func(n *Node) { n.StartDate = date })
}

func (e *Editor) SetTargetDate(id NodeID, date string) error {
	return e.set(id, func(n *Node) { n.TargetDate = date })
}

func (e *Editor) SetEstimatedHours(id NodeID, h float64) error {
	return e.set(id, func(n *Node) { n.EstimatedHours = h })
}

func (e *Editor) set(id NodeID, mutate func(*Node)) error {
	n, ok := e.nodes[id]
	if !ok {
		return ErrNotFound
	}
	mutate(n)
	return nil
}

// Commit validates a node and, on success, leaves edit mode. On failure the
// node stays in edit mode and no state changes.
func (e *Editor) Commit(id NodeID) error {
	n, ok := e.nodes[id]
	if !ok {
		return ErrNotFound
	}

	if err := e.validate(n); err != nil {
		return err
	}

	if n.Level == 1 {
		// Level-1 display name is derived from the catalog entry.
		t, _ := e.catalog.ByID(n.TypeID)
		n.Name = t.Name
	}

	st := e.ui[id]
	st.editing = false
	st.isNew = false
	st.snapshot = nil
	return nil
}

func (e *Editor) validate(n *Node) error {
	if n.Level == 1 {
		if n.TypeID == 0 {
			return fmt.Errorf("scope: scope type is required")
		}
		if _, ok := e.catalog.ByID(n.TypeID); !ok {
			return fmt.Errorf("scope: unknown scope type %d", n.TypeID)
		}
		for _, sib := range e.siblingsOf(n.ID) {
			if sib.ID != n.ID && sib.TypeID == n.TypeID {
				return fmt.Errorf("scope: scope type %q already used in this container", sib.Name)
			}
		}
	} else {
		name := strings.TrimSpace(n.Name)
		if name == "" {
			return fmt.Errorf("scope: name is required")
		}
		for _, sib := range e.siblingsOf(n.ID) {
			if sib.ID != n.ID && strings.EqualFold(strings.TrimSpace(sib.Name), name) {
				return fmt.Errorf("scope: an item named %q already exists at this level", name)
			}
		}
	}

	for _, d := range []string{n.StartDate, n.TargetDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("scope: invalid date %q: want YYYY-MM-DD", d)
		}
	}
	// ISO dates compare correctly as strings.
	if n.StartDate != "" && n.TargetDate != "" && n.TargetDate < n.StartDate {
		return fmt.Errorf("scope: target date %s before start date %s", n.TargetDate, n.StartDate)
	}
	return nil
}

func (e *Editor) siblingsOf(id NodeID) []*Node {
	var ids []NodeID
	if p, ok := e.parent[id]; ok {
		ids = e.children[p]
	} else {
		ids = e.roots
	}
	out := make([]*Node, 0, len(ids))
	for _, sid := range ids {
		out = append(out, e.nodes[sid])
	}
	return out
}

// Cancel leaves edit mode. A never-committed node is discarded entirely; a
// committed node has its pre-edit snapshot restored.
func (e *Editor) Cancel(id NodeID) error {
	_, ok := e.nodes[id]
	if !ok {
		return ErrNotFound
	}
	st := e.ui[id]
	if st.isNew {
		e.detach(id)
		return nil
	}
	if st.snapshot != nil {
		*e.nodes[id] = *st.snapshot
		st.snapshot = nil
	}
	st.editing = false
	return nil
}

// SubtreeSize returns the number of descendants below a node, for the
// caller's removal confirmation prompt.
func (e *Editor) SubtreeSize(id NodeID) (int, error) {
	if _, ok := e.nodes[id]; !ok {
		return 0, ErrNotFound
	}
	return e.countDescendants(id), nil
}

func (e *Editor) countDescendants(id NodeID) int {
	n := 0
	for _, c := range e.children[id] {
		n += 1 + e.countDescendants(c)
	}
	return n
}

// Remove deletes a node and its entire subtree. The caller is expected to
// have confirmed the removal with the user (see SubtreeSize).
func (e *Editor) Remove(id NodeID) error {
	if _, ok := e.nodes[id]; !ok {
		return ErrNotFound
	}
	e.detach(id)
	return nil
}

// detach unlinks a node from its parent (or the root list) and frees its
// whole subtree from the arena.
func (e *Editor) detach(id NodeID) {
	if p, ok := e.parent[id]; ok {
		kids := e.children[p]
		for i, c := range kids {
			if c == id {
				e.children[p] = append(kids[:i], kids[i+1:]...)
				break
			}
		}
	} else {
		for i, r := range e.roots {
			if r == id {
				e.roots = append(e.roots[:i], e.roots[i+1:]...)
				break
			}
		}
	}
	e.free(id)
}

func (e *Editor) free(id NodeID) {
	for _, c := range e.children[id] {
		e.free(c)
	}
	delete(e.children, id)
	delete(e.parent, id)
	delete(e.nodes, id)
	delete(e.ui, id)
}

// ToggleExpand flips the expansion flag. Pure view state; the children array
// is untouched.
func (e *Editor) ToggleExpand(id NodeID) error {
	st, ok := e.ui[id]
	if !ok {
		return ErrNotFound
	}
	st.expanded = !st.expanded
	return nil
}

// UsedTypeIDs returns the scope type ids already claimed by level-1 nodes,
// excluding the given node. Feed the result to Catalog.Available when
// offering level-1 choices.
func (e *Editor) UsedTypeIDs(exclude NodeID) []uint {
	var used []uint
	for _, r := range e.roots {
		if r == exclude {
			continue
		}
		if n := e.nodes[r]; n.TypeID != 0 {
			used = append(used, n.TypeID)
		}
	}
	return used
}
