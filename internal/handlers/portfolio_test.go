package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/nats-backoffice/internal/models"
	"github.com/diewo77/nats-backoffice/internal/services"
	"go.uber.org/zap"
)

func newPortfolioHandler(t *testing.T) *PortfolioHandler {
	return NewPortfolioHandler(services.NewPortfolioService(setupTestDB(t)), zap.NewNop(), false)
}

type portfolioBody struct {
	Portfolio models.Portfolio `json:"portfolio"`
}

func TestPortfolioCreateListUpdateDelete(t *testing.T) {
	h := newPortfolioHandler(t)

	w := httptest.NewRecorder()
	h.Create(w, withOperator(jsonRequest(http.MethodPost, "/portfolio", `{"title":"Gate","category":"gate","description":"Sliding","image":"/uploads/portfolio/1_g.png","featured":true,"order":2}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created portfolioBody
	decode(t, w, &created)
	id := created.Portfolio.ID

	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/portfolio?category=gate&featured=true", nil))
	var listed struct {
		Portfolio []models.Portfolio `json:"portfolio"`
	}
	decode(t, w, &listed)
	if w.Code != http.StatusOK || len(listed.Portfolio) != 1 {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/portfolio?category=cctv", nil))
	decode(t, w, &listed)
	if len(listed.Portfolio) != 0 {
		t.Fatalf("expected no cctv items, got %d", len(listed.Portfolio))
	}

	req := withOperator(jsonRequest(http.MethodPut, "/portfolio/"+id, `{"featured":false,"order":0,"title":""}`))
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	h.Update(w, req)
	var updated portfolioBody
	decode(t, w, &updated)
	if w.Code != http.StatusOK || updated.Portfolio.Featured || updated.Portfolio.Order != 0 || updated.Portfolio.Title != "Gate" {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/portfolio/"+id, nil)
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	h.Get(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("public get: %d", w.Code)
	}

	req = withOperator(httptest.NewRequest(http.MethodDelete, "/portfolio/"+id, nil))
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK || w.Body.String() != `{"message":"Portfolio item deleted successfully"}` {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/portfolio/"+id, nil)
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	h.Get(w, req)
	if w.Code != http.StatusNotFound || w.Body.String() != `{"error":"Portfolio item not found"}` {
		t.Fatalf("get after delete: %d %s", w.Code, w.Body.String())
	}
}

func TestPortfolioCreate_MissingFields(t *testing.T) {
	h := newPortfolioHandler(t)
	w := httptest.NewRecorder()
	h.Create(w, withOperator(jsonRequest(http.MethodPost, "/portfolio", `{"title":"Gate"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	var out struct {
		Error string `json:"error"`
	}
	decode(t, w, &out)
	if out.Error != "Missing required fields: category, description, image" {
		t.Fatalf("unexpected error %q", out.Error)
	}
}

func TestPortfolioCreate_Unauthorized(t *testing.T) {
	h := newPortfolioHandler(t)
	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/portfolio", `{"title":"Gate","category":"gate","description":"d","image":"/i.png"}`))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}
