package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/synctech/synctech/internal/config"
	syncdb "github.com/synctech/synctech/internal/db"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := syncdb.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := syncdb.SeedScopeTypes(db, config.DefaultScopeTypes()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewRouter(db), db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", w.Code)
	}
}

func TestClientEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/clients", map[string]interface{}{
		"PersonType":  "PJ",
		"CompanyName": "Acme Ltda",
		"CNPJ":        "12.345.678/0001-90",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/clients = %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID uint `json:"ID"`
	}
	decode(t, w, &created)

	w = doJSON(t, router, http.MethodPost, "/api/clients", map[string]interface{}{
		"PersonType": "PF",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid client = %d, want 422", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/clients/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET client = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/clients/999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET missing client = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/clients/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Errorf("DELETE client = %d", w.Code)
	}
}

func TestScopeTypesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/scope-types", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/scope-types = %d", w.Code)
	}
	var types []struct {
		Name string `json:"Name"`
	}
	decode(t, w, &types)
	if len(types) != 8 {
		t.Fatalf("catalog has %d types, want 8", len(types))
	}
	if types[0].Name != "Frontend" || types[1].Name != "Backend" {
		t.Errorf("catalog order = %s, %s", types[0].Name, types[1].Name)
	}
}

// setupProject creates a client and project through the API and returns the
// project id.
func setupProject(t *testing.T, router *gin.Engine) uint {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/clients", map[string]interface{}{
		"PersonType":  "PJ",
		"CompanyName": "Acme Ltda",
		"CNPJ":        "1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create client = %d: %s", w.Code, w.Body.String())
	}
	var c struct {
		ID uint `json:"ID"`
	}
	decode(t, w, &c)

	w = doJSON(t, router, http.MethodPost, "/api/projects", map[string]interface{}{
		"client_id": c.ID,
		"name":      "Portal",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create project = %d: %s", w.Code, w.Body.String())
	}
	var p struct {
		ID uint `json:"ID"`
	}
	decode(t, w, &p)
	return p.ID
}

func TestScopeTreeFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	projectID := setupProject(t, router)

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/projects/%d/scopes", projectID), map[string]interface{}{
		"name": "MVP",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create container = %d: %s", w.Code, w.Body.String())
	}
	var container struct {
		ID uint `json:"ID"`
	}
	decode(t, w, &container)

	tree := map[string]interface{}{
		"nodes": []map[string]interface{}{
			{
				"type_id": 1,
				"children": []map[string]interface{}{
					{
						"name":            "Login screen",
						"estimated_hours": 8,
						"start_date":      "2026-01-10",
						"target_date":     "2026-02-01",
					},
					{
						"name":            "Signup screen",
						"estimated_hours": 12,
					},
				},
			},
		},
	}
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/scopes/%d/tree", container.ID), tree)
	if w.Code != http.StatusOK {
		t.Fatalf("save tree = %d: %s", w.Code, w.Body.String())
	}

	var saved struct {
		TotalHours float64 `json:"total_hours"`
		Nodes      []struct {
			ID         uint    `json:"id"`
			Name       string  `json:"name"`
			TotalHours float64 `json:"total_hours"`
			Children   []struct {
				ID   uint   `json:"id"`
				Name string `json:"name"`
			} `json:"children"`
		} `json:"nodes"`
	}
	decode(t, w, &saved)
	if saved.TotalHours != 20 {
		t.Errorf("total_hours = %v, want 20", saved.TotalHours)
	}
	if len(saved.Nodes) != 1 || saved.Nodes[0].Name != "Frontend" {
		t.Fatalf("nodes = %+v", saved.Nodes)
	}
	if saved.Nodes[0].ID == 0 {
		t.Errorf("saved root has no database id")
	}
	if len(saved.Nodes[0].Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(saved.Nodes[0].Children))
	}

	// Duplicate names at one level come back as a validation error.
	dup := map[string]interface{}{
		"nodes": []map[string]interface{}{
			{
				"type_id": 2,
				"children": []map[string]interface{}{
					{"name": "API"},
					{"name": "api"},
				},
			},
		},
	}
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/scopes/%d/tree", container.ID), dup)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate names = %d, want 422: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/scopes/%d/tree", container.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get tree = %d", w.Code)
	}
	var loaded struct {
		TotalHours float64 `json:"total_hours"`
		Earliest   string  `json:"earliest_start"`
		Latest     string  `json:"latest_target"`
	}
	decode(t, w, &loaded)
	if loaded.TotalHours != 20 {
		t.Errorf("loaded total_hours = %v, want 20", loaded.TotalHours)
	}
	if loaded.Earliest != "2026-01-10" || loaded.Latest != "2026-02-01" {
		t.Errorf("date range = %s..%s", loaded.Earliest, loaded.Latest)
	}

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/scope-nodes/%d", saved.Nodes[0].Children[1].ID), map[string]interface{}{
		"name":            "Signup flow",
		"estimated_hours": 12,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update node = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/scope-nodes/%d", saved.Nodes[0].Children[1].ID), map[string]interface{}{
		"name": "login screen",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("rename onto sibling = %d, want 422: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/scope-nodes/%d", saved.Nodes[0].Children[0].ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete node = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/scopes/%d/tree", container.ID), nil)
	decode(t, w, &loaded)
	if loaded.TotalHours != 12 {
		t.Errorf("total after delete = %v, want 12", loaded.TotalHours)
	}
}

func TestBudgetToContractFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	projectID := setupProject(t, router)
	_ = projectID

	var c struct {
		ID uint `json:"ID"`
	}
	w := doJSON(t, router, http.MethodPost, "/api/clients", map[string]interface{}{
		"PersonType":  "PJ",
		"CompanyName": "Globex SA",
		"CNPJ":        "2",
	})
	decode(t, w, &c)

	w = doJSON(t, router, http.MethodPost, "/api/budgets", map[string]interface{}{
		"client_id":   c.ID,
		"total_value": 3000,
		"discount":    300,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create budget = %d: %s", w.Code, w.Body.String())
	}
	var b struct {
		ID         uint    `json:"ID"`
		FinalValue float64 `json:"FinalValue"`
	}
	decode(t, w, &b)
	if b.FinalValue != 2700 {
		t.Errorf("FinalValue = %v, want 2700", b.FinalValue)
	}

	for _, status := range []string{"sent", "approved"} {
		w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/budgets/%d/status", b.ID), map[string]string{"status": status})
		if w.Code != http.StatusOK {
			t.Fatalf("status %s = %d: %s", status, w.Code, w.Body.String())
		}
	}

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/budgets/%d/contract", b.ID), map[string]interface{}{
		"installments": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("promote budget = %d: %s", w.Code, w.Body.String())
	}
	var ct struct {
		ID            uint    `json:"ID"`
		ContractValue float64 `json:"ContractValue"`
	}
	decode(t, w, &ct)
	if ct.ContractValue != 2700 {
		t.Errorf("ContractValue = %v, want 2700", ct.ContractValue)
	}

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/contracts/%d/installments", ct.ID), map[string]string{
		"first_due": "2026-06-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("installments = %d: %s", w.Code, w.Body.String())
	}
	var entries []struct {
		Amount float64 `json:"Amount"`
	}
	decode(t, w, &entries)
	if len(entries) != 3 {
		t.Fatalf("generated %d entries, want 3", len(entries))
	}

	w = doJSON(t, router, http.MethodGet, "/api/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard = %d", w.Code)
	}
}
