// Package orders accumulates guest order drafts across turns and routes
// submitted orders to department staff groups.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gastino/internal/alert"
	apperrors "gastino/internal/common/errors"
	"gastino/internal/common/logger"
	"gastino/internal/engine/respond"
	"gastino/internal/models"
)

// ErrNothingToSubmit is returned by Submit when the guest has no open order
// draft. The caller is expected to treat the message as a general question
// instead.
var ErrNothingToSubmit = errors.New("no open order draft to submit")

// ErrNoTargetDepartment is returned by Submit when the draft has items but
// the tenant runs no active department that could take an order. The caller
// must hand the message to a human instead of dropping the order.
var ErrNoTargetDepartment = errors.New("no department can take the order")

// OrderStore persists submitted orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
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
	store    OrderStore
	notifier Notifier
	alerter  alert.Alerter
	logger   logger.Logger
}

func NewHandler(store OrderStore, notifier Notifier, alerter alert.Alerter, log logger.Logger) *Handler {
	return &Handler{
		store:    store,
		notifier: notifier,
		alerter:  alerter,
		logger:   log,
	}
}

// AddItems appends the extracted items to the guest's order draft, in receipt
// order, and echoes the draft back. A turn without items asks what the guest
// would like.
func (h *Handler) AddItems(ctx context.Context, input *Input) (respond.Result, error) {
	draft := input.State.Order
	if draft == nil {
		draft = &models.OrderDraft{}
		input.State.Order = draft
	}

	draft.Items = append(draft.Items, input.Intent.Items...)
	draft.UpdatedAt = input.Now
	if dept := matchHint(input.Snapshot, input.Intent.DepartmentHint); dept != nil {
		draft.DepartmentID = dept.ID
	}

	if len(draft.Items) == 0 {
		return respond.Result{Kind: respond.KindAskOrderItems}, nil
	}

	h.logger.Debug("order draft updated", map[string]interface{}{
		"tenant_id": input.Snapshot.Tenant.ID,
		"guest_id":  input.Guest.ID,
		"items":     len(draft.Items),
	})
	return respond.Result{Kind: respond.KindOrderDraft, Items: draft.Items}, nil
}

// Submit turns the open draft into one persisted order per target department
// and notifies each department's staff group. Orders are persisted before any
// notification goes out; a failed notification never loses an order.
func (h *Handler) Submit(ctx context.Context, input *Input) (respond.Result, error) {
	draft := input.State.Order
	if len(input.Intent.Items) > 0 {
		// "...and a coke, that's all" carries items and the submit in one turn.
		if draft == nil {
			draft = &models.OrderDraft{}
			input.State.Order = draft
		}
		draft.Items = append(draft.Items, input.Intent.Items...)
	}
	if draft == nil || len(draft.Items) == 0 {
		return respond.Result{}, ErrNothingToSubmit
	}

	buckets := h.split(input.Snapshot, draft)
	if len(buckets) == 0 {
		return respond.Result{}, ErrNoTargetDepartment
	}

	loc := input.Snapshot.Tenant.Location()
	var submitted []respond.SubmittedOrder
	for _, bucket := range buckets {
		target, queued := resolveOpen(input.Snapshot, bucket.dept, input.Now, loc)

		order := &models.Order{
			ID:              uuid.New().String(),
			TenantID:        input.Snapshot.Tenant.ID,
			GuestID:         input.Guest.ID,
			DepartmentID:    target.ID,
			Items:           bucket.items,
			RoomNumber:      firstNonEmpty(input.Intent.RoomNumber, input.Guest.RoomNumber),
			TableNumber:     firstNonEmpty(input.Intent.TableNumber, input.Guest.TableNumber),
			Status:          models.OrderStatusPending,
			QueuedUntilOpen: queued,
			CreatedAt:       input.Now,
		}

		if err := h.store.CreateOrder(ctx, order); err != nil {
			h.logger.Error("failed to persist order", map[string]interface{}{
				"tenant_id":     order.TenantID,
				"department_id": order.DepartmentID,
				"error":         err.Error(),
			})
			return respond.Result{Kind: respond.KindApology}, apperrors.NewOrderPersistFailedError(err)
		}

		h.notify(ctx, order, target, input.Guest)

		submitted = append(submitted, respond.SubmittedOrder{
			DeptLabel: target.Label(),
			Items:     bucket.items,
			Queued:    queued,
		})
	}

	input.State.Order = nil

	h.logger.Info("order submitted", map[string]interface{}{
		"tenant_id": input.Snapshot.Tenant.ID,
		"guest_id":  input.Guest.ID,
		"orders":    len(submitted),
	})
	return respond.Result{Kind: respond.KindOrderSubmitted, Orders: submitted}, nil
}

type bucket struct {
	dept  *models.Department
	items []models.OrderItem
}

// split assigns draft items to departments. A draft pinned to one department
// (via an earlier hint) goes there wholesale; otherwise food and drinks are
// separated when the tenant runs both a kitchen and a bar.
func (h *Handler) split(snap *models.TenantSnapshot, draft *models.OrderDraft) []bucket {
	if d := snap.DepartmentByID(draft.DepartmentID); d != nil && d.Active && !d.IsEscalation {
		return []bucket{{dept: d, items: draft.Items}}
	}

	kitchen := findByNames(snap, kitchenNames)
	bar := findByNames(snap, barNames)

	if kitchen != nil && bar != nil {
		var food, drinks []models.OrderItem
		for _, it := range draft.Items {
			if isDrink(it.Name) {
				drinks = append(drinks, it)
			} else {
				food = append(food, it)
			}
		}
		var out []bucket
		if len(food) > 0 {
			out = append(out, bucket{dept: kitchen, items: food})
		}
		if len(drinks) > 0 {
			out = append(out, bucket{dept: bar, items: drinks})
		}
		return out
	}

	target := kitchen
	if target == nil {
		target = bar
	}
	if target == nil {
		target = firstByPosition(snap)
	}
	if target == nil {
		return nil
	}
	return []bucket{{dept: target, items: draft.Items}}
}

// notify sends the staff group message for one persisted order. Failures are
// alerted but never surfaced to the guest; the order already exists.
func (h *Handler) notify(ctx context.Context, order *models.Order, dept *models.Department, guest *models.Guest) {
	text := respond.FormatStaffOrder(order, dept.Label(), guest)
	if err := h.notifier.SendText(ctx, dept.GroupChannelID, text); err != nil {
		h.logger.Error("failed to notify department of order", map[string]interface{}{
			"order_id":      order.ID,
			"department_id": dept.ID,
			"error":         err.Error(),
		})
		h.alerter.Raise(ctx, "order notification failed",
			"a persisted order could not be delivered to the department staff group",
			map[string]interface{}{
				"order_id":      order.ID,
				"tenant_id":     order.TenantID,
				"department_id": dept.ID,
			})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
