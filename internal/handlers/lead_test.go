package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/nats-backoffice/internal/models"
	"github.com/diewo77/nats-backoffice/internal/services"
	"go.uber.org/zap"
)

func newLeadHandler(t *testing.T) (*LeadHandler, *services.LeadService) {
	db := setupTestDB(t)
	svc := services.NewLeadService(db)
	return NewLeadHandler(svc, zap.NewNop(), false), svc
}

func TestContact(t *testing.T) {
	h, svc := newLeadHandler(t)

	w := httptest.NewRecorder()
	h.Contact(w, jsonRequest(http.MethodPost, "/contact", `{"name":"Jane","email":"jane@x.com","phone":"0700000000","service":"cctv","priority":"high"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		LeadID  string `json:"leadId"`
	}
	decode(t, w, &out)
	if !out.Success || out.LeadID == "" || out.Message != "Contact form submitted successfully" {
		t.Fatalf("unexpected body %+v", out)
	}

	lead, err := svc.GetLead(withOperator(httptest.NewRequest(http.MethodGet, "/", nil)).Context(), out.LeadID)
	if err != nil {
		t.Fatalf("get lead: %v", err)
	}
	if lead.Priority != models.PriorityMedium || lead.Source != models.SourceWebsite {
		t.Fatalf("defaults not forced: %+v", lead)
	}
}

func TestContact_MissingFields(t *testing.T) {
	h, _ := newLeadHandler(t)
	w := httptest.NewRecorder()
	h.Contact(w, jsonRequest(http.MethodPost, "/contact", `{"name":"Jane"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	var out struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	decode(t, w, &out)
	if out.Error != "Missing required fields: email, phone, service" || out.Details["phone"] != "required" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Contact(w, jsonRequest(http.MethodPost, "/contact", `{not json`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json got %d", w.Code)
	}
}

func TestLeadCRUD(t *testing.T) {
	h, _ := newLeadHandler(t)

	w := httptest.NewRecorder()
	h.Create(w, withOperator(jsonRequest(http.MethodPost, "/leads", `{"name":"Bob","email":"bob@x.com","phone":"1","service":"solar","priority":"high","source":"website"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Lead models.Lead `json:"lead"`
	}
	decode(t, w, &created)
	if created.Lead.Source != models.SourceCRM || created.Lead.Priority != models.PriorityHigh {
		t.Fatalf("unexpected lead %+v", created.Lead)
	}
	id := created.Lead.ID

	w = httptest.NewRecorder()
	h.List(w, withOperator(httptest.NewRequest(http.MethodGet, "/leads?status=new&priority=high", nil)))
	var listed struct {
		Leads []models.Lead `json:"leads"`
	}
	decode(t, w, &listed)
	if w.Code != http.StatusOK || len(listed.Leads) != 1 {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.List(w, withOperator(httptest.NewRequest(http.MethodGet, "/leads?status=bogus", nil)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid filter: expected 400 got %d", w.Code)
	}

	req := withOperator(jsonRequest(http.MethodPatch, "/leads/"+id, `{"status":"contacted","name":"","message":"called"}`))
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	h.Update(w, req)
	var updated struct {
		Lead models.Lead `json:"lead"`
	}
	decode(t, w, &updated)
	if w.Code != http.StatusOK || updated.Lead.Status != models.LeadStatusContacted || updated.Lead.Name != "Bob" || updated.Lead.Message != "called" {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	req = withOperator(httptest.NewRequest(http.MethodGet, "/leads/"+id, nil))
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	h.Get(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200 got %d", w.Code)
	}

	req = withOperator(httptest.NewRequest(http.MethodDelete, "/leads/"+id, nil))
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"success":true}` {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		req = withOperator(jsonRequest(method, "/leads/"+id, `{"name":"x"}`))
		req.SetPathValue("id", id)
		w = httptest.NewRecorder()
		switch method {
		case http.MethodGet:
			h.Get(w, req)
		case http.MethodPatch:
			h.Update(w, req)
		default:
			h.Delete(w, req)
		}
		if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Lead not found") {
			t.Fatalf("%s after delete: %d %s", method, w.Code, w.Body.String())
		}
	}
}

func TestLeadList_Unauthorized(t *testing.T) {
	h, _ := newLeadHandler(t)
	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/leads", nil))
	if w.Code != http.StatusUnauthorized || w.Body.String() != `{"error":"Unauthorized"}` {
		t.Fatalf("expected 401 got %d %s", w.Code, w.Body.String())
	}
}

func TestStoreErrorHiddenOutsideDev(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, _ := db.DB()
	svc := services.NewLeadService(db)

	prod := NewLeadHandler(svc, zap.NewNop(), false)
	dev := NewLeadHandler(svc, zap.NewNop(), true)
	_ = sqlDB.Close()

	body := `{"name":"Jane","email":"jane@x.com","phone":"1","service":"cctv"}`
	w := httptest.NewRecorder()
	prod.Contact(w, jsonRequest(http.MethodPost, "/contact", body))
	if w.Code != http.StatusInternalServerError || w.Body.String() != `{"error":"Failed to submit form"}` {
		t.Fatalf("prod: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	dev.Contact(w, jsonRequest(http.MethodPost, "/contact", body))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), `"details"`) {
		t.Fatalf("dev: %d %s", w.Code, w.Body.String())
	}
}
