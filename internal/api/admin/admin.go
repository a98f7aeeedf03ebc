// Package admin exposes the tenant and department configuration API. It is
// bearer-token protected and writes straight through to Postgres; the
// resolver cache is invalidated on every change so routing picks up new
// configuration within the cache TTL.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gastino/internal/common/logger"
	"gastino/internal/common/validation"
	"gastino/internal/models"
)

// TenantStore is the persistence surface the admin API needs.
type TenantStore interface {
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	TenantByID(ctx context.Context, id string) (*models.Tenant, error)
	CreateTenant(ctx context.Context, t *models.Tenant) error
	UpdateTenant(ctx context.Context, t *models.Tenant) error
	ListDepartments(ctx context.Context, tenantID string) ([]models.Department, error)
	CreateDepartment(ctx context.Context, d *models.Department) error
	UpdateDepartment(ctx context.Context, d *models.Department) error
}

// CacheInvalidator drops a tenant's cached snapshot after a change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, channelID string) error
}

type Handler struct {
	store  TenantStore
	cache  CacheInvalidator
	token  string
	logger logger.Logger
}

func NewHandler(store TenantStore, cache CacheInvalidator, token string, log logger.Logger) *Handler {
	return &Handler{
		store:  store,
		cache:  cache,
		token:  token,
		logger: log,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/tenants", h.listTenants)
		r.Post("/tenants", h.createTenant)
		r.Put("/tenants/{tenantID}", h.updateTenant)
		r.Get("/tenants/{tenantID}/departments", h.listDepartments)
		r.Post("/tenants/{tenantID}/departments", h.createDepartment)
		r.Put("/tenants/{tenantID}/departments/{departmentID}", h.updateDepartment)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if h.token == "" || header != "Bearer "+h.token {
			writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) listTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.store.ListTenants(r.Context())
	if err != nil {
		h.serverError(w, "failed to list tenants", err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (h *Handler) createTenant(w http.ResponseWriter, r *http.Request) {
	var t models.Tenant
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateTenant(&t); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	t.ID = uuid.New().String()
	t.Active = true
	t.CreatedAt = time.Now().UTC()
	if err := h.store.CreateTenant(r.Context(), &t); err != nil {
		h.serverError(w, "failed to create tenant", err)
		return
	}

	h.invalidate(r, t.ChannelID)
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) updateTenant(w http.ResponseWriter, r *http.Request) {
	existing, err := h.store.TenantByID(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}

	var t models.Tenant
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt
	if msg := validateTenant(&t); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if err := h.store.UpdateTenant(r.Context(), &t); err != nil {
		h.serverError(w, "failed to update tenant", err)
		return
	}

	// The channel id may have changed; drop both cache entries.
	h.invalidate(r, existing.ChannelID)
	if t.ChannelID != existing.ChannelID {
		h.invalidate(r, t.ChannelID)
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.store.ListDepartments(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		h.serverError(w, "failed to list departments", err)
		return
	}
	writeJSON(w, http.StatusOK, departments)
}

func (h *Handler) createDepartment(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.store.TenantByID(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}

	var d models.Department
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d.ID = uuid.New().String()
	d.TenantID = tenant.ID
	d.Active = true
	if msg := validateDepartment(&d); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if msg := h.checkEscalationUnique(r, tenant.ID, &d); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if err := h.store.CreateDepartment(r.Context(), &d); err != nil {
		h.serverError(w, "failed to create department", err)
		return
	}

	h.invalidate(r, tenant.ChannelID)
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) updateDepartment(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.store.TenantByID(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}

	var d models.Department
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d.ID = chi.URLParam(r, "departmentID")
	d.TenantID = tenant.ID
	if msg := validateDepartment(&d); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if msg := h.checkEscalationUnique(r, tenant.ID, &d); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if err := h.store.UpdateDepartment(r.Context(), &d); err != nil {
		h.serverError(w, "failed to update department", err)
		return
	}

	h.invalidate(r, tenant.ChannelID)
	writeJSON(w, http.StatusOK, d)
}

func validateTenant(t *models.Tenant) string {
	if strings.TrimSpace(t.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(t.ChannelID) == "" {
		return "channel_id is required"
	}
	if len(t.Languages) == 0 {
		return "at least one language is required"
	}
	for _, lang := range t.Languages {
		if !validation.ValidateLanguageCode(lang) {
			return "invalid language code: " + lang
		}
	}
	if t.Timezone != "" {
		if _, err := time.LoadLocation(t.Timezone); err != nil {
			return "invalid timezone: " + t.Timezone
		}
	}
	return ""
}

func validateDepartment(d *models.Department) string {
	if strings.TrimSpace(d.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(d.GroupChannelID) == "" {
		return "group_channel_id is required"
	}
	return ""
}

// checkEscalationUnique enforces at most one active escalation department per
// tenant.
func (h *Handler) checkEscalationUnique(r *http.Request, tenantID string, d *models.Department) string {
	if !d.IsEscalation || !d.Active {
		return ""
	}
	existing, err := h.store.ListDepartments(r.Context(), tenantID)
	if err != nil {
		return ""
	}
	for _, other := range existing {
		if other.ID != d.ID && other.IsEscalation && other.Active {
			return "tenant already has an escalation department: " + other.Name
		}
	}
	return ""
}

func (h *Handler) invalidate(r *http.Request, channelID string) {
	if err := h.cache.Invalidate(r.Context(), channelID); err != nil {
		h.logger.Warn("failed to invalidate tenant cache", map[string]interface{}{
			"channel_id": channelID,
			"error":      err.Error(),
		})
	}
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, map[string]interface{}{"error": err.Error()})
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
