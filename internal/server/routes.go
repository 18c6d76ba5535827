package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/budget"
	"github.com/synctech/synctech/internal/client"
	"github.com/synctech/synctech/internal/contract"
	"github.com/synctech/synctech/internal/dashboard"
	"github.com/synctech/synctech/internal/finance"
	"github.com/synctech/synctech/internal/meeting"
	"github.com/synctech/synctech/internal/project"
	"github.com/synctech/synctech/internal/schedule"
	"github.com/synctech/synctech/internal/task"
)

// registerRoutes sets up every API route on the gin engine.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	router.GET("/healthz", handleHealth(db))

	api := router.Group("/api")

	api.GET("/dashboard", handleDashboard(db))

	api.POST("/clients", handleClientCreate(db))
	api.GET("/clients", handleClientList(db))
	api.GET("/clients/:id", handleClientGet(db))
	api.PUT("/clients/:id", handleClientUpdate(db))
	api.DELETE("/clients/:id", handleClientDeactivate(db))

	api.POST("/projects", handleProjectCreate(db))
	api.GET("/projects", handleProjectList(db))
	api.GET("/projects/:id", handleProjectGet(db))
	api.PUT("/projects/:id", handleProjectUpdate(db))
	api.DELETE("/projects/:id", handleProjectDelete(db))
	api.POST("/projects/:id/technologies", handleTechnologyAttach(db))
	api.DELETE("/projects/:id/technologies/:techID", handleTechnologyDetach(db))
	api.GET("/technologies", handleTechnologyList(db))
	api.POST("/technologies", handleTechnologyCreate(db))

	api.POST("/budgets", handleBudgetCreate(db))
	api.GET("/budgets", handleBudgetList(db))
	api.GET("/budgets/:id", handleBudgetGet(db))
	api.PUT("/budgets/:id/values", handleBudgetValues(db))
	api.POST("/budgets/:id/status", handleBudgetStatus(db))
	api.POST("/budgets/:id/contract", handleContractFromBudget(db))

	api.POST("/contracts", handleContractCreate(db))
	api.GET("/contracts", handleContractList(db))
	api.GET("/contracts/:id", handleContractGet(db))
	api.POST("/contracts/:id/status", handleContractStatus(db))
	api.POST("/contracts/:id/installments", handleInstallments(db))
	api.GET("/contract-templates", handleTemplateList(db))
	api.POST("/contract-templates", handleTemplateCreate(db))

	api.POST("/entries", handleEntryCreate(db))
	api.GET("/entries", handleEntryList(db))
	api.POST("/entries/:id/pay", handleEntryPay(db))
	api.POST("/entries/:id/cancel", handleEntryCancel(db))

	api.POST("/meetings", handleMeetingCreate(db))
	api.GET("/meetings", handleMeetingList(db))
	api.GET("/meetings/:id", handleMeetingGet(db))
	api.POST("/meetings/:id/minutes", handleMeetingMinutes(db))
	api.POST("/meetings/:id/cancel", handleMeetingCancel(db))

	api.POST("/tasks", handleTaskCreate(db))
	api.GET("/tasks", handleTaskList(db))
	api.PUT("/tasks/:id", handleTaskUpdate(db))
	api.POST("/tasks/:id/hours", handleTaskHours(db))
	api.DELETE("/tasks/:id", handleTaskDelete(db))

	api.POST("/projects/:id/phases", handlePhaseCreate(db))
	api.GET("/projects/:id/phases", handlePhaseList(db))
	api.POST("/phases/:id/items", handleItemPlace(db))
	api.PUT("/schedule-items/:id/status", handleItemStatus(db))
	api.DELETE("/schedule-items/:id", handleItemRemove(db))

	registerScopeRoutes(api, db)
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return uint(id), nil
}

func queryID(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// parseDate turns an optional YYYY-MM-DD string into a *time.Time.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return &t, nil
}

func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			errJSON(c, http.StatusServiceUnavailable, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleDashboard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ov, err := dashboard.Build(db, time.Now())
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, ov)
	}
}

func handleClientCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts client.CreateOpts
		if err := c.ShouldBindJSON(&opts); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		created, err := client.Create(db, opts)
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleClientList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := client.ListFilters{
			PersonType: c.Query("person_type"),
			Search:     c.Query("search"),
			ActiveOnly: c.Query("active") == "true",
		}
		clients, err := client.List(db, filters)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, clients)
	}
}

func handleClientGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		got, err := client.Get(db, id)
		if err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, got)
	}
}

func handleClientUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := client.Update(db, id, updates); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": id})
	}
}

func handleClientDeactivate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := client.Deactivate(db, id); err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deactivated": id})
	}
}

type projectRequest struct {
	ClientID       uint    `json:"client_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	StartDate      string  `json:"start_date"`
	TargetDate     string  `json:"target_date"`
	EstimatedHours float64 `json:"estimated_hours"`
	EstimatedValue float64 `json:"estimated_value"`
	Notes          string  `json:"notes"`
}

func handleProjectCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		target, err := parseDate(req.TargetDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		created, err := project.Create(db, project.CreateOpts{
			ClientID:       req.ClientID,
			Name:           req.Name,
			Description:    req.Description,
			StartDate:      start,
			TargetDate:     target,
			EstimatedHours: req.EstimatedHours,
			EstimatedValue: req.EstimatedValue,
			Notes:          req.Notes,
		})
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleProjectList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := project.ListFilters{
			ClientID: queryID(c, "client_id"),
			Status:   c.Query("status"),
			Search:   c.Query("search"),
		}
		projects, err := project.List(db, filters)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

func handleProjectGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		got, err := project.Get(db, id)
		if err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, got)
	}
}

func handleProjectUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := project.Update(db, id, updates); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": id})
	}
}

func handleProjectDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := project.Delete(db, id); err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

func handleTechnologyCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     string `json:"name"`
			Category string `json:"category"`
			Version  string `json:"version"`
			ColorHex string `json:"color_hex"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		tech, err := project.CreateTechnology(db, req.Name, req.Category, req.Version, req.ColorHex)
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, tech)
	}
}

func handleTechnologyList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		techs, err := project.ListTechnologies(db)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, techs)
	}
}

func handleTechnologyAttach(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			TechnologyID uint   `json:"technology_id"`
			VersionUsed  string `json:"version_used"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := project.AttachTechnology(db, id, req.TechnologyID, req.VersionUsed); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"attached": req.TechnologyID})
	}
}

func handleTechnologyDetach(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		techID, err := paramID(c, "techID")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := project.DetachTechnology(db, id, techID); err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"detached": techID})
	}
}

type budgetRequest struct {
	ClientID   uint    `json:"client_id"`
	ProjectID  *uint   `json:"project_id"`
	TotalValue float64 `json:"total_value"`
	Discount   float64 `json:"discount"`
	ValidUntil string  `json:"valid_until"`
	Notes      string  `json:"notes"`
}

func handleBudgetCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req budgetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		validUntil, err := parseDate(req.ValidUntil)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		created, err := budget.Create(db, budget.CreateOpts{
			ClientID:   req.ClientID,
			ProjectID:  req.ProjectID,
			TotalValue: req.TotalValue,
			Discount:   req.Discount,
			ValidUntil: validUntil,
			Notes:      req.Notes,
		})
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleBudgetList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		budgets, err := budget.List(db, budget.ListFilters{
			ClientID: queryID(c, "client_id"),
			Status:   c.Query("status"),
		})
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, budgets)
	}
}

func handleBudgetGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		got, err := budget.Get(db, id)
		if err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, got)
	}
}

func handleBudgetValues(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			TotalValue float64 `json:"total_value"`
			Discount   float64 `json:"discount"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := budget.UpdateValues(db, id, req.TotalValue, req.Discount); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": id})
	}
}

func handleBudgetStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := budget.SetStatus(db, id, req.Status); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": req.Status})
	}
}

type contractRequest struct {
	ClientID     uint    `json:"client_id"`
	ProjectID    *uint   `json:"project_id"`
	QuotedValue  float64 `json:"quoted_value"`
	Discount     float64 `json:"discount"`
	SignedDate   string  `json:"signed_date"`
	Installments int     `json:"installments"`
	Notes        string  `json:"notes"`
}

func handleContractCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req contractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		signed, err := parseDate(req.SignedDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		created, err := contract.Create(db, contract.CreateOpts{
			ClientID:     req.ClientID,
			ProjectID:    req.ProjectID,
			QuotedValue:  req.QuotedValue,
			Discount:     req.Discount,
			SignedDate:   signed,
			Installments: req.Installments,
			Notes:        req.Notes,
		})
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleContractFromBudget(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			Installments int    `json:"installments"`
			SignedDate   string `json:"signed_date"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		signed, err := parseDate(req.SignedDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		created, err := contract.FromBudget(db, id, req.Installments, signed)
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleContractList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		contracts, err := contract.List(db, contract.ListFilters{
			ClientID: queryID(c, "client_id"),
			Status:   c.Query("status"),
		})
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, contracts)
	}
}

func handleContractGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		got, err := contract.Get(db, id)
		if err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, got)
	}
}

func handleContractStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := contract.SetStatus(db, id, req.Status); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": req.Status})
	}
}

func handleInstallments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			FirstDue string `json:"first_due"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		firstDue, err := parseDate(req.FirstDue)
		if err != nil || firstDue == nil {
			errJSON(c, http.StatusBadRequest, fmt.Errorf("first_due is required as YYYY-MM-DD"))
			return
		}
		entries, err := finance.GenerateInstallments(db, id, *firstDue)
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, entries)
	}
}

func handleTemplateCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name      string `json:"name"`
			BodyHTML  string `json:"body_html"`
			Variables string `json:"variables"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		tpl, err := contract.CreateTemplate(db, req.Name, req.BodyHTML, req.Variables)
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, tpl)
	}
}

func handleTemplateList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tpls, err := contract.ListTemplates(db)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, tpls)
	}
}

type entryRequest struct {
	ContractID    uint    `json:"contract_id"`
	Direction     string  `json:"direction"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	DueDate       string  `json:"due_date"`
	Notes         string  `json:"notes"`
}

func handleEntryCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req entryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		due, err := parseDate(req.DueDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		created, err := finance.Create(db, finance.CreateOpts{
			ContractID:    req.ContractID,
			Direction:     req.Direction,
			Description:   req.Description,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			DueDate:       due,
			Notes:         req.Notes,
		})
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleEntryList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := finance.List(db, finance.ListFilters{
			ContractID: queryID(c, "contract_id"),
			Status:     c.Query("status"),
			Direction:  c.Query("direction"),
		})
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func handleEntryPay(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			PaidDate string `json:"paid_date"`
			Method   string `json:"method"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		paid, err := parseDate(req.PaidDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		when := time.Now()
		if paid != nil {
			when = *paid
		}
		if err := finance.MarkPaid(db, id, when, req.Method); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"paid": id})
	}
}

func handleEntryCancel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := finance.Cancel(db, id); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cancelled": id})
	}
}

type meetingRequest struct {
	ProjectID    uint   `json:"project_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	MeetingDate  string `json:"meeting_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Kind         string `json:"kind"`
	Link         string `json:"link"`
	Participants string `json:"participants"`
}

func handleMeetingCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req meetingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		date, err := parseDate(req.MeetingDate)
		if err != nil || date == nil {
			errJSON(c, http.StatusBadRequest, fmt.Errorf("meeting_date is required as YYYY-MM-DD"))
			return
		}
		created, err := meeting.Create(db, meeting.CreateOpts{
			ProjectID:    req.ProjectID,
			Title:        req.Title,
			Description:  req.Description,
			MeetingDate:  *date,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			Kind:         req.Kind,
			Link:         req.Link,
			Participants: req.Participants,
		})
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleMeetingList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := parseDate(c.Query("from"))
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		to, err := parseDate(c.Query("to"))
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		meetings, err := meeting.List(db, meeting.ListFilters{
			ProjectID: queryID(c, "project_id"),
			Status:    c.Query("status"),
			From:      from,
			To:        to,
		})
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, meetings)
	}
}

func handleMeetingGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		got, err := meeting.Get(db, id)
		if err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, got)
	}
}

func handleMeetingMinutes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			Minutes string `json:"minutes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := meeting.RecordMinutes(db, id, req.Minutes); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"held": id})
	}
}

func handleMeetingCancel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := meeting.Cancel(db, id); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cancelled": id})
	}
}

type taskRequest struct {
	ProjectID      uint    `json:"project_id"`
	ScopeNodeID    *uint   `json:"scope_node_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Priority       string  `json:"priority"`
	StartDate      string  `json:"start_date"`
	TargetDate     string  `json:"target_date"`
	EstimatedHours float64 `json:"estimated_hours"`
	Assignee       string  `json:"assignee"`
}

func handleTaskCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req taskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		target, err := parseDate(req.TargetDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		created, err := task.Create(db, task.CreateOpts{
			ProjectID:      req.ProjectID,
			ScopeNodeID:    req.ScopeNodeID,
			Title:          req.Title,
			Description:    req.Description,
			Priority:       req.Priority,
			StartDate:      start,
			TargetDate:     target,
			EstimatedHours: req.EstimatedHours,
			Assignee:       req.Assignee,
		})
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleTaskList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks, err := task.List(db, task.ListFilters{
			ProjectID:   queryID(c, "project_id"),
			ScopeNodeID: queryID(c, "scope_node_id"),
			Status:      c.Query("status"),
			Priority:    c.Query("priority"),
			Assignee:    c.Query("assignee"),
		})
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func handleTaskUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := task.Update(db, id, updates); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": id})
	}
}

func handleTaskHours(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			Hours float64 `json:"hours"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := task.LogHours(db, id, req.Hours); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"logged": req.Hours})
	}
}

func handleTaskDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := task.Delete(db, id); err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

type phaseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	TargetDate  string `json:"target_date"`
}

func handlePhaseCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req phaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		target, err := parseDate(req.TargetDate)
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		phase, err := schedule.AddPhase(db, schedule.PhaseOpts{
			ProjectID:   id,
			Name:        req.Name,
			Description: req.Description,
			StartDate:   start,
			TargetDate:  target,
		})
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, phase)
	}
}

func handlePhaseList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		phases, err := schedule.Phases(db, id)
		if err != nil {
			errJSON(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, phases)
	}
}

func handleItemPlace(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			ScopeNodeID uint `json:"scope_node_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		item, err := schedule.PlaceNode(db, id, req.ScopeNodeID)
		if err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func handleItemStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := schedule.SetItemStatus(db, id, req.Status); err != nil {
			errJSON(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": req.Status})
	}
}

func handleItemRemove(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			errJSON(c, http.StatusBadRequest, err)
			return
		}
		if err := schedule.RemoveItem(db, id); err != nil {
			errJSON(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": id})
	}
}
