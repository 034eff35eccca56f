package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/nats-backoffice/httpx"
	"github.com/diewo77/nats-backoffice/internal/services"
	"go.uber.org/zap"
)

type PortfolioHandler struct {
	portfolio *services.PortfolioService
	errs      errorWriter
}

func NewPortfolioHandler(portfolio *services.PortfolioService, log *zap.Logger, dev bool) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio, errs: newErrorWriter(log, dev)}
}

// List supports ?category=<cat|all> and ?featured=true.
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.PortfolioFilter{
		Category:     strings.TrimSpace(q.Get("category")),
		FeaturedOnly: q.Get("featured") == "true",
	}
	items, err := h.portfolio.ListPortfolio(r.Context(), f)
	if err != nil {
		h.errs.write(w, r, err, "Failed to fetch portfolio")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"portfolio": items})
}

func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.portfolio.GetPortfolio(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errs.write(w, r, err, "Failed to fetch portfolio item")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"portfolio": item})
}

func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.PortfolioInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		invalidJSON(w)
		return
	}
	item, err := h.portfolio.CreatePortfolio(r.Context(), in)
	if err != nil {
		h.errs.write(w, r, err, "Failed to create portfolio item")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"portfolio": item})
}

func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p services.PortfolioPatch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		invalidJSON(w)
		return
	}
	item, err := h.portfolio.UpdatePortfolio(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.errs.write(w, r, err, "Failed to update portfolio item")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"portfolio": item})
}

func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolio.DeletePortfolio(r.Context(), r.PathValue("id")); err != nil {
		h.errs.write(w, r, err, "Failed to delete portfolio item")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Portfolio item deleted successfully"})
}
