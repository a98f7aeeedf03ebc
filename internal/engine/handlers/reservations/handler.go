// Package reservations accumulates reservation entities across turns and
// writes the reservation once all required fields are captured.
package reservations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"gastino/internal/alert"
	apperrors "gastino/internal/common/errors"
	"gastino/internal/common/logger"
	"gastino/internal/engine/respond"
	"gastino/internal/models"
)

// ErrNothingToConfirm is returned by Confirm when the guest has no open
// reservation draft. The caller treats the message as a general question.
var ErrNothingToConfirm = errors.New("no open reservation draft to confirm")

// ReservationStore persists completed reservations.
type ReservationStore interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
}

// Notifier delivers staff notifications to a group channel.
type Notifier interface {
	SendText(ctx context.Context, to, text string) error
}

type Input struct {
	Snapshot *models.TenantSnapshot
	Guest    *models.Guest
	State    *models.ConversationState // mutated in place, persisted by the caller
	Intent   *models.Intent
	Now      time.Time
}

type Handler struct {
	store    ReservationStore
	notifier Notifier
	alerter  alert.Alerter
	logger   logger.Logger
}

func NewHandler(store ReservationStore, notifier Notifier, alerter alert.Alerter, log logger.Logger) *Handler {
	return &Handler{
		store:    store,
		notifier: notifier,
		alerter:  alerter,
		logger:   log,
	}
}

// Request merges the extracted entities into the reservation draft and either
// asks for what is still missing or finalizes the reservation.
func (h *Handler) Request(ctx context.Context, input *Input) (respond.Result, error) {
	draft := input.State.Reservation
	if draft == nil {
		draft = &models.ReservationDraft{}
		input.State.Reservation = draft
	}
	h.merge(draft, input)

	if !draft.Complete() {
		return respond.Result{Kind: respond.KindAskReservationInfo, Missing: draft.MissingFields()}, nil
	}
	return h.finalize(ctx, input, draft)
}

// Confirm finalizes an existing draft. Without a draft there is nothing to
// confirm and the message is handed back for general handling.
func (h *Handler) Confirm(ctx context.Context, input *Input) (respond.Result, error) {
	draft := input.State.Reservation
	if draft == nil {
		return respond.Result{}, ErrNothingToConfirm
	}
	h.merge(draft, input)

	if !draft.Complete() {
		return respond.Result{Kind: respond.KindAskReservationInfo, Missing: draft.MissingFields()}, nil
	}
	return h.finalize(ctx, input, draft)
}

// merge folds intent entities into the draft. The provider tends to fill in
// today's date when the guest named none; a captured non-today date must not
// be overwritten by it.
func (h *Handler) merge(draft *models.ReservationDraft, input *Input) {
	today := input.Now.In(input.Snapshot.Tenant.Location()).Format("2006-01-02")

	if d := input.Intent.ReservationDate; d != "" {
		if !(d == today && draft.Date != "" && draft.Date != today) {
			draft.Date = d
		}
	}
	if input.Intent.ReservationTime != "" {
		draft.Time = input.Intent.ReservationTime
	}
	if input.Intent.PartySize > 0 {
		draft.PartySize = input.Intent.PartySize
	}
	if input.Intent.GuestName != "" {
		draft.GuestName = input.Intent.GuestName
	}
	if draft.GuestName == "" && input.Guest != nil {
		draft.GuestName = input.Guest.Name
	}
}

// finalize persists the reservation, notifies staff, and clears the draft.
// Persist-before-notify holds as it does for orders.
func (h *Handler) finalize(ctx context.Context, input *Input, draft *models.ReservationDraft) (respond.Result, error) {
	status := models.ReservationStatusPending
	if h.withinHours(input.Snapshot, draft) {
		status = models.ReservationStatusConfirmed
	}

	reservation := &models.Reservation{
		ID:        uuid.New().String(),
		TenantID:  input.Snapshot.Tenant.ID,
		GuestID:   input.Guest.ID,
		Date:      draft.Date,
		Time:      draft.Time,
		PartySize: draft.PartySize,
		GuestName: draft.GuestName,
		Notes:     draft.Notes,
		Status:    status,
		CreatedAt: input.Now,
	}

	if err := h.store.CreateReservation(ctx, reservation); err != nil {
		h.logger.Error("failed to persist reservation", map[string]interface{}{
			"tenant_id": reservation.TenantID,
			"guest_id":  reservation.GuestID,
			"error":     err.Error(),
		})
		return respond.Result{Kind: respond.KindApology}, apperrors.NewReservationPersistFailedError(err)
	}

	h.notify(ctx, input.Snapshot, reservation, input.Guest)

	input.State.Reservation = nil

	kind := respond.KindReservationPending
	if status == models.ReservationStatusConfirmed {
		kind = respond.KindReservationConfirmed
	}
	h.logger.Info("reservation created", map[string]interface{}{
		"tenant_id":      reservation.TenantID,
		"reservation_id": reservation.ID,
		"status":         string(status),
	})
	return respond.Result{Kind: kind, Reservation: cloneDraft(draft)}, nil
}

// withinHours checks the requested slot against the target department's
// declared hours. Without declared hours there is nothing to validate and
// staff confirms manually.
func (h *Handler) withinHours(snap *models.TenantSnapshot, draft *models.ReservationDraft) bool {
	dept := h.target(snap)
	if dept == nil || len(dept.Hours) == 0 {
		return false
	}
	slot, err := time.ParseInLocation("2006-01-02 15:04", draft.Date+" "+draft.Time, snap.Tenant.Location())
	if err != nil {
		return false
	}
	return dept.IsOpenAt(slot)
}

var reservationNames = []string{"reception", "rezeption", "reservierung", "reservation", "restaurant", "ristorante", "sala", "front"}

// target picks the department that handles reservations: a department with a
// reservation-ish name, else the escalation department, else the first by
// tenant order.
func (h *Handler) target(snap *models.TenantSnapshot) *models.Department {
	var first *models.Department
	for i := range snap.Departments {
		d := &snap.Departments[i]
		if !d.Active {
			continue
		}
		if nameMatches(d, reservationNames) {
			return d
		}
		if first == nil && !d.IsEscalation {
			first = d
		}
	}
	if esc := snap.EscalationDepartment(); esc != nil {
		return esc
	}
	return first
}

func nameMatches(d *models.Department, names []string) bool {
	label := strings.ToLower(d.Name + " " + d.DisplayName)
	for _, n := range names {
		if strings.Contains(label, n) {
			return true
		}
	}
	return false
}

func (h *Handler) notify(ctx context.Context, snap *models.TenantSnapshot, r *models.Reservation, guest *models.Guest) {
	dept := h.target(snap)
	if dept == nil {
		h.alerter.Raise(ctx, "reservation without target department",
			"a reservation was persisted but the tenant has no department to notify",
			map[string]interface{}{
				"tenant_id":      r.TenantID,
				"reservation_id": r.ID,
			})
		return
	}

	text := respond.FormatStaffReservation(r, guest)
	if err := h.notifier.SendText(ctx, dept.GroupChannelID, text); err != nil {
		h.logger.Error("failed to notify staff of reservation", map[string]interface{}{
			"reservation_id": r.ID,
			"department_id":  dept.ID,
			"error":          err.Error(),
		})
		h.alerter.Raise(ctx, "reservation notification failed",
			"a persisted reservation could not be delivered to the staff group",
			map[string]interface{}{
				"reservation_id": r.ID,
				"tenant_id":      r.TenantID,
				"department_id":  dept.ID,
			})
	}
}

func cloneDraft(d *models.ReservationDraft) *models.ReservationDraft {
	c := *d
	return &c
}
