package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/scope"
)

func registerScopeRoutes(api *gin.RouterGroup, db *gorm.DB) {
	api.GET("/scope-types", handleScopeTypes(db))
	api.POST("/projects/:id/scopes", handleContainerCreate(db))
	api.GET("/projects/:id/scopes", handleContainerList(db))
	api.GET("/scopes/:id/tree", handleTreeGet(db))
	api.POST("/scopes/:id/tree", handleTreeSave(db))
	api.DELETE("/scopes/:id", handleContainerDelete(db))
	api.PUT("/scope-nodes/:id", handleNodeUpdate(db))
	api.DELETE("/scope-nodes/:id", handleNodeDelete(db))
}

func handleScopeTypes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		catalog, err := scope.LoadCatalog(db)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, catalog)
	}
}

func handleContainerCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		container, err := scope.CreateContainer(db, id, req.Name, req.Description)
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, container)
	}
}

func handleContainerList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		containers, err := scope.ListContainers(db, id)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, containers)
	}
}

func handleContainerDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := scope.DeleteContainer(db, id); err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

func handleNodeUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			Name           *string  `json:"name"`
			Description    *string  `json:"description"`
			Status         *string  `json:"status"`
			StartDate      *string  `json:"start_date"`
			TargetDate     *string  `json:"target_date"`
			EstimatedHours *float64 `json:"estimated_hours"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		node, err := scope.UpdateNode(db, id, scope.NodeUpdate{
			Name:           req.Name,
			Description:    req.Description,
			Status:         req.Status,
			StartDate:      req.StartDate,
			TargetDate:     req.TargetDate,
			EstimatedHours: req.EstimatedHours,
		})
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, node)
	}
}

func handleNodeDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		deleted, err := scope.DeleteSubtree(db, id)
		if err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}

// nodePayload is one scope node in a tree save request. Nodes carrying a
// database id are taken as already persisted; the rest are created.
type nodePayload struct {
	ID             uint          `json:"id"`
	TypeID         uint          `json:"type_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Status         string        `json:"status"`
	StartDate      string        `json:"start_date"`
	TargetDate     string        `json:"target_date"`
	EstimatedHours float64       `json:"estimated_hours"`
	Children       []nodePayload `json:"children"`
}

// nodeView is one scope node in a tree response, aggregates included.
type nodeView struct {
	ID             uint       `json:"id"`
	Level          int        `json:"level"`
	TypeID         uint       `json:"type_id,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	StartDate      string     `json:"start_date,omitempty"`
	TargetDate     string     `json:"target_date,omitempty"`
	EstimatedHours float64    `json:"estimated_hours"`
	TotalHours     float64    `json:"total_hours"`
	EarliestStart  string     `json:"earliest_start,omitempty"`
	LatestTarget   string     `json:"latest_target,omitempty"`
	Children       []nodeView `json:"children,omitempty"`
}

type treeView struct {
	ContainerID   uint       `json:"container_id"`
	TotalHours    float64    `json:"total_hours"`
	EarliestStart string     `json:"earliest_start,omitempty"`
	LatestTarget  string     `json:"latest_target,omitempty"`
	Nodes         []nodeView `json:"nodes"`
}

func handleTreeGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if _, err := scope.GetContainer(db, id); err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		catalog, err := scope.LoadCatalog(db)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		editor, err := scope.LoadEditor(db, catalog, id)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, renderTree(editor))
	}
}

func handleTreeSave(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if _, err := scope.GetContainer(db, id); err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		var req struct {
			Nodes []nodePayload `json:"nodes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}

		catalog, err := scope.LoadCatalog(db)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}

		editor := scope.NewEditor(catalog, id)
		for _, root := range req.Nodes {
			if err := importPayload(editor, "", root, 1); err != nil {
				errJSON(c, http.StatusUnprocessableEntity, err)
				return
			}
		}

		if err := editor.Save(c.Request.Context(), scope.DBGateway{DB: db}); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, renderTree(editor))
	}
}

func importPayload(editor *scope.Editor, parent scope.NodeID, p nodePayload, level int) error {
	id, err := editor.Import(parent, scope.Node{
		PersistedID:    p.ID,
		Level:          level,
		TypeID:         p.TypeID,
		Name:           p.Name,
		Description:    p.Description,
		Status:         p.Status,
		StartDate:      p.StartDate,
		TargetDate:     p.TargetDate,
		EstimatedHours: p.EstimatedHours,
	})
	if err != nil {
		return err
	}
	for _, child := range p.Children {
		if err := importPayload(editor, id, child, level+1); err != nil {
			return err
		}
	}
	return nil
}

func renderTree(editor *scope.Editor) treeView {
	total, earliest, latest := editor.ContainerTotals()
	view := treeView{
		ContainerID:   editor.ContainerID(),
		TotalHours:    total,
		EarliestStart: earliest,
		LatestTarget:  latest,
		Nodes:         make([]nodeView, 0, len(editor.Roots())),
	}
	for _, root := range editor.Roots() {
		view.Nodes = append(view.Nodes, renderNode(editor, root))
	}
	return view
}

func renderNode(editor *scope.Editor, id scope.NodeID) nodeView {
	n, _ := editor.Node(id)
	view := nodeView{
		ID:             n.PersistedID,
		Level:          n.Level,
		TypeID:         n.TypeID,
		Name:           n.Name,
		Description:    n.Description,
		Status:         n.Status,
		StartDate:      n.StartDate,
		TargetDate:     n.TargetDate,
		EstimatedHours: n.EstimatedHours,
		TotalHours:     editor.TotalHours(id),
		EarliestStart:  editor.EarliestStart(id),
		LatestTarget:   editor.LatestTarget(id),
	}
	for _, child := range editor.ChildrenOf(id) {
		view.Children = append(view.Children, renderNode(editor, child))
	}
	return view
}
