package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/nats-backoffice/httpx"
	"github.com/diewo77/nats-backoffice/internal/services"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leads *services.LeadService
	errs  errorWriter
}

func NewLeadHandler(leads *services.LeadService, log *zap.Logger, dev bool) *LeadHandler {
	return &LeadHandler{leads: leads, errs: newErrorWriter(log, dev)}
}

// Contact is the public contact form endpoint.
func (h *LeadHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var in services.LeadInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		invalidJSON(w)
		return
	}
	lead, err := h.leads.CreatePublicLead(r.Context(), in)
	if err != nil {
		h.errs.write(w, r, err, "Failed to submit form")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Contact form submitted successfully",
		"leadId":  lead.ID,
	})
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.LeadFilter{
		Status:   strings.TrimSpace(q.Get("status")),
		Priority: strings.TrimSpace(q.Get("priority")),
	}
	leads, err := h.leads.ListLeads(r.Context(), f)
	if err != nil {
		h.errs.write(w, r, err, "Failed to fetch leads")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.LeadInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		invalidJSON(w)
		return
	}
	lead, err := h.leads.CreateOperatorLead(r.Context(), in)
	if err != nil {
		h.errs.write(w, r, err, "Failed to create lead")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"lead": lead})
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leads.GetLead(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errs.write(w, r, err, "Failed to fetch lead")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p services.LeadPatch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		invalidJSON(w)
		return
	}
	lead, err := h.leads.UpdateLead(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.errs.write(w, r, err, "Failed to update lead")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.leads.DeleteLead(r.Context(), r.PathValue("id")); err != nil {
		h.errs.write(w, r, err, "Failed to delete lead")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
