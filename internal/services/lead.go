package services

import (
	"context"
	"errors"

	"github.com/diewo77/nats-backoffice/internal/models"
	"github.com/diewo77/nats-backoffice/internal/patch"
	"github.com/diewo77/nats-backoffice/validation"
	"gorm.io/gorm"
)

// Number of annotations embedded per lead in list views.
const (
	listActivityLimit = 5
	listNoteLimit     = 3
)

type LeadService struct {
	db *gorm.DB
}

func NewLeadService(db *gorm.DB) *LeadService {
	return &LeadService{db: db}
}

// LeadInput is the payload of both creation paths. Priority is ignored for
// public submissions.
type LeadInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Service  string `json:"service"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// LeadFilter narrows ListLeads. Empty fields match everything.
type LeadFilter struct {
	Status   string
	Priority string
}

// LeadPatch is a partial update. Empty strings are ignored for every field
// except Message (cleared) and AssignedToID (unassigned).
type LeadPatch struct {
	Status       patch.Field[string] `json:"status"`
	Priority     patch.Field[string] `json:"priority"`
	Name         patch.Field[string] `json:"name"`
	Email        patch.Field[string] `json:"email"`
	Phone        patch.Field[string] `json:"phone"`
	Service      patch.Field[string] `json:"service"`
	Message      patch.Field[string] `json:"message"`
	AssignedToID patch.Field[string] `json:"assignedToId"`
}

func (in LeadInput) validate() error {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("email", in.Email, v)
	validation.Required("phone", in.Phone, v)
	validation.Required("service", in.Service, v)
	if !v.Empty() {
		return missingFields(v, "name", "email", "phone", "service")
	}
	return nil
}

// CreatePublicLead records a contact-form submission. Status, priority and
// source are forced whatever the caller sent.
func (s *LeadService) CreatePublicLead(ctx context.Context, in LeadInput) (*models.Lead, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	lead := models.Lead{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Service:  in.Service,
		Message:  in.Message,
		Status:   models.LeadStatusNew,
		Priority: models.PriorityMedium,
		Source:   models.SourceWebsite,
	}
	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, storeErr("create lead", err)
	}
	return &lead, nil
}

// CreateOperatorLead records a lead typed in by an operator (source crm).
func (s *LeadService) CreateOperatorLead(ctx context.Context, in LeadInput) (*models.Lead, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	v := validation.Violations{}
	validation.OneOf("priority", priority, models.LeadPriorities, v)
	if !v.Empty() {
		return nil, newValidationError("Invalid field values", v)
	}
	lead := models.Lead{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Service:  in.Service,
		Message:  in.Message,
		Status:   models.LeadStatusNew,
		Priority: priority,
		Source:   models.SourceCRM,
	}
	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, storeErr("create lead", err)
	}
	return &lead, nil
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// ListLeads returns matching leads, newest first, each with its assignee and
// its most recent activities and notes.
func (s *LeadService) ListLeads(ctx context.Context, f LeadFilter) ([]models.Lead, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.OneOf("status", f.Status, models.LeadStatuses, v)
	validation.OneOf("priority", f.Priority, models.LeadPriorities, v)
	if !v.Empty() {
		return nil, newValidationError("Invalid filter", v)
	}

	q := s.db.WithContext(ctx).
		Preload("AssignedTo").
		Preload("Activities", newestFirst).
		Preload("Notes", newestFirst)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	var leads []models.Lead
	if err := newestFirst(q).Find(&leads).Error; err != nil {
		return nil, storeErr("list leads", err)
	}
	// Preload limits apply to the whole batch, so trim per lead here.
	for i := range leads {
		if len(leads[i].Activities) > listActivityLimit {
			leads[i].Activities = leads[i].Activities[:listActivityLimit]
		}
		if len(leads[i].Notes) > listNoteLimit {
			leads[i].Notes = leads[i].Notes[:listNoteLimit]
		}
	}
	return leads, nil
}

// GetLead returns one lead with its full history.
func (s *LeadService) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	var lead models.Lead
	err := s.db.WithContext(ctx).
		Preload("AssignedTo").
		Preload("Activities", newestFirst).
		Preload("Activities.User").
		Preload("Notes", newestFirst).
		Preload("Notes.User").
		First(&lead, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Lead")
	}
	if err != nil {
		return nil, storeErr("get lead", err)
	}
	return &lead, nil
}

// UpdateLead applies p to the lead. An empty patch writes nothing.
func (s *LeadService) UpdateLead(ctx context.Context, id string, p LeadPatch) (*models.Lead, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var lead models.Lead
	if err := db.First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Lead")
		}
		return nil, storeErr("get lead", err)
	}

	updates := map[string]any{}
	v := validation.Violations{}
	setString := func(column string, f patch.Field[string]) {
		if patch.NonEmpty(f) {
			updates[column] = f.Value
		}
	}
	if patch.NonEmpty(p.Status) {
		validation.OneOf("status", p.Status.Value, models.LeadStatuses, v)
	}
	if patch.NonEmpty(p.Priority) {
		validation.OneOf("priority", p.Priority.Value, models.LeadPriorities, v)
	}
	setString("status", p.Status)
	setString("priority", p.Priority)
	setString("name", p.Name)
	setString("email", p.Email)
	setString("phone", p.Phone)
	setString("service", p.Service)
	if p.Message.Set {
		updates["message"] = p.Message.Value
	}
	if p.AssignedToID.Set {
		if patch.NonEmpty(p.AssignedToID) {
			var count int64
			if err := db.Model(&models.User{}).Where("id = ?", p.AssignedToID.Value).Count(&count).Error; err != nil {
				return nil, storeErr("lookup assignee", err)
			}
			if count == 0 {
				v["assignedToId"] = "unknown_user"
			}
			updates["assigned_to_id"] = p.AssignedToID.Value
		} else {
			updates["assigned_to_id"] = nil
		}
	}
	if !v.Empty() {
		return nil, newValidationError("Invalid field values", v)
	}

	if len(updates) > 0 {
		if err := db.Model(&lead).Updates(updates).Error; err != nil {
			return nil, storeErr("update lead", err)
		}
	}
	var out models.Lead
	if err := db.Preload("AssignedTo").First(&out, "id = ?", id).Error; err != nil {
		return nil, storeErr("reload lead", err)
	}
	return &out, nil
}

// DeleteLead removes the lead and its activities and notes in one transaction.
func (s *LeadService) DeleteLead(ctx context.Context, id string) error {
	if _, err := requireSession(ctx); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.Select("id").First(&lead, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadNote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Lead{}, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Lead")
	}
	return storeErr("delete lead", err)
}
