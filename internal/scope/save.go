package scope

import (
	"context"
	"fmt"
)

// CreateRequest is the flattened form of one node sent to the persistence
// gateway. ParentID carries the freshly assigned id of the node's parent,
// which is why creates must run parent-before-child.
type CreateRequest struct {
	ContainerID    uint
	ParentID       *uint
	Level          int
	TypeID         *uint
	Name           string
	Description    string
	Status         string
	StartDate      string
	TargetDate     string
	EstimatedHours float64
	Order          int
}

// Gateway persists scope nodes. The editor never talks to storage directly.
type Gateway interface {
	CreateNode(ctx context.Context, req CreateRequest) (uint, error)
	DeleteNode(ctx context.Context, id uint) error
}

// Save persists every not-yet-persisted node through the gateway,
// linearizing the forest top-down so each child's request carries its
// parent's assigned id. Creates run sequentially: the ordering dependency on
// the parent id is real, not an optimization choice.
//
// On a failed create, nodes created earlier in this save are compensated
// with deletes in reverse order, so a partial save leaves no orphan rows.
// Nodes still in edit mode abort the save before anything is written.
func (e *Editor) Save(ctx context.Context, gw Gateway) error {
	for id := range e.nodes {
		if e.ui[id].editing {
			n := e.nodes[id]
			return fmt.Errorf("scope: node %q (level %d) has uncommitted edits", n.Name, n.Level)
		}
	}

	var created []NodeID
	rollback := func() {
		for i := len(created) - 1; i >= 0; i-- {
			// Compensation is best-effort; the original error is what the
			// caller needs to see.
			n := e.nodes[created[i]]
			_ = gw.DeleteNode(context.WithoutCancel(ctx), n.PersistedID)
			n.PersistedID = 0
		}
	}

	for _, r := range e.roots {
		if err := e.saveSubtree(ctx, gw, r, nil, &created); err != nil {
			rollback()
			return err
		}
	}
	return nil
}

func (e *Editor) saveSubtree(ctx context.Context, gw Gateway, id NodeID, parentDBID *uint, created *[]NodeID) error {
	n := e.nodes[id]

	if n.PersistedID == 0 {
		req := CreateRequest{
			ContainerID:    e.containerID,
			ParentID:       parentDBID,
			Level:          n.Level,
			Name:           n.Name,
			Description:    n.Description,
			Status:         n.Status,
			StartDate:      n.StartDate,
			TargetDate:     n.TargetDate,
			EstimatedHours: n.EstimatedHours,
			Order:          n.Order,
		}
		if n.Level == 1 {
			typeID := n.TypeID
			req.TypeID = &typeID
		}

		dbID, err := gw.CreateNode(ctx, req)
		if err != nil {
			return fmt.Errorf("scope: save %q (level %d): %w", n.Name, n.Level, err)
		}
		n.PersistedID = dbID
		*created = append(*created, id)
	}

	myID := n.PersistedID
	for _, c := range e.children[id] {
		if err := e.saveSubtree(ctx, gw, c, &myID, created); err != nil {
			return err
		}
	}
	return nil
}
