// Package router orchestrates one inbound message end to end: tenant
// resolution, conversation state, classification, handler dispatch, response
// rendering and delivery. Routing state is per message, never persisted.
package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"gastino/internal/alert"
	"gastino/internal/archive"
	apperrors "gastino/internal/common/errors"
	"gastino/internal/common/logger"
	"gastino/internal/common/observability"
	"gastino/internal/engine/classifier"
	"gastino/internal/engine/handlers/autoreply"
	"gastino/internal/engine/handlers/escalation"
	"gastino/internal/engine/handlers/orders"
	"gastino/internal/engine/handlers/reservations"
	"gastino/internal/engine/respond"
	"gastino/internal/models"
	"gastino/internal/transport/channel"
)

type Config struct {
	MessageTimeout time.Duration
	HistoryLimit   int
	ConfirmEmoji   string
}

// TenantResolver maps a tenant channel id to the tenant snapshot.
type TenantResolver interface {
	Resolve(ctx context.Context, channelID string) (*models.TenantSnapshot, error)
}

// GuestStore manages guest records.
type GuestStore interface {
	GetOrCreateGuest(ctx context.Context, tenantID, channelID, profileName string) (*models.Guest, error)
	GuestByID(ctx context.Context, id string) (*models.Guest, error)
	UpdateGuestLanguage(ctx context.Context, guestID, language string) error
	UpdateGuestLocation(ctx context.Context, guestID, roomNumber, tableNumber string) error
}

// MessageStore persists the conversation log.
type MessageStore interface {
	SaveMessage(ctx context.Context, m *models.MessageRecord) error
	History(ctx context.Context, tenantID, guestID string, limit int) ([]models.MessageRecord, error)
}

// OrderConfirmer marks pending orders confirmed from staff group messages.
type OrderConfirmer interface {
	ConfirmLatestPending(ctx context.Context, tenantID, departmentID string) (*models.Order, error)
}

// StateStore holds per-conversation working memory.
type StateStore interface {
	Get(ctx context.Context, tenantID, guestID, defaultLanguage string) (*models.ConversationState, error)
	Put(ctx context.Context, st *models.ConversationState) error
}

// IntentClassifier produces the structured intent for one message. It must
// always return a usable intent; the error only explains a fallback.
type IntentClassifier interface {
	Classify(ctx context.Context, in classifier.Input) (*models.Intent, error)
}

type AutoReplyHandler interface {
	Execute(ctx context.Context, in *autoreply.Input) (respond.Result, error)
}

type OrderHandler interface {
	AddItems(ctx context.Context, in *orders.Input) (respond.Result, error)
	Submit(ctx context.Context, in *orders.Input) (respond.Result, error)
}

type ReservationHandler interface {
	Request(ctx context.Context, in *reservations.Input) (respond.Result, error)
	Confirm(ctx context.Context, in *reservations.Input) (respond.Result, error)
}

type EscalationHandler interface {
	Execute(ctx context.Context, in *escalation.Input) (respond.Result, error)
}

// Handlers bundles the four intent handlers.
type Handlers struct {
	AutoReply    AutoReplyHandler
	Orders       OrderHandler
	Reservations ReservationHandler
	Escalation   EscalationHandler
}

type Router struct {
	cfg        Config
	resolver   TenantResolver
	guests     GuestStore
	messages   MessageStore
	orders     OrderConfirmer
	states     StateStore
	classifier IntentClassifier
	handlers   Handlers
	generator  *respond.Generator
	sender     channel.Sender
	archiver   archive.Archiver
	alerter    alert.Alerter
	metrics    *observability.Observability
	logger     logger.Logger
}

func New(
	cfg Config,
	resolver TenantResolver,
	guests GuestStore,
	messages MessageStore,
	orderConfirmer OrderConfirmer,
	states StateStore,
	intents IntentClassifier,
	handlers Handlers,
	sender channel.Sender,
	archiver archive.Archiver,
	alerter alert.Alerter,
	metrics *observability.Observability,
	log logger.Logger,
) *Router {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if archiver == nil {
		archiver = archive.Nop{}
	}
	return &Router{
		cfg:        cfg,
		resolver:   resolver,
		guests:     guests,
		messages:   messages,
		orders:     orderConfirmer,
		states:     states,
		classifier: intents,
		handlers:   handlers,
		generator:  respond.NewGenerator(),
		sender:     sender,
		archiver:   archiver,
		alerter:    alerter,
		metrics:    metrics,
		logger:     log,
	}
}

// Process routes one inbound message. It never returns an error: every
// failure mode ends in a guest reply, a drop, or an alert, and must not take
// the worker down.
func (r *Router) Process(ctx context.Context, msg *models.InboundMessage) {
	start := time.Now()
	if r.cfg.MessageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.MessageTimeout)
		defer cancel()
	}

	snap, err := r.resolver.Resolve(ctx, msg.ChannelID)
	if err != nil {
		// Unknown tenant: drop without a guest reply, alert the operators.
		r.logger.Warn("dropping message for unresolvable tenant", map[string]interface{}{
			"channel_id": msg.ChannelID,
			"error":      err.Error(),
		})
		r.alerter.Raise(ctx, "message dropped: unresolvable tenant",
			"an inbound message arrived on a channel that maps to no active tenant",
			map[string]interface{}{
				"channel_id": msg.ChannelID,
				"from":       msg.From,
			})
		r.record(ctx, "", "dropped", start)
		return
	}

	if msg.GroupID != "" {
		r.processStaff(ctx, snap, msg, start)
		return
	}

	r.processGuest(ctx, snap, msg, start)
}

// processStaff handles messages from department group chats. The only
// recognized staff action is the confirmation emoji, which acknowledges the
// department's latest pending order toward the guest.
func (r *Router) processStaff(ctx context.Context, snap *models.TenantSnapshot, msg *models.InboundMessage, start time.Time) {
	if r.cfg.ConfirmEmoji == "" || !strings.Contains(msg.Text, r.cfg.ConfirmEmoji) {
		r.record(ctx, "", "staff_ignored", start)
		return
	}

	var dept *models.Department
	for i := range snap.Departments {
		if snap.Departments[i].GroupChannelID == msg.GroupID {
			dept = &snap.Departments[i]
			break
		}
	}
	if dept == nil {
		r.record(ctx, "", "staff_ignored", start)
		return
	}

	order, err := r.orders.ConfirmLatestPending(ctx, snap.Tenant.ID, dept.ID)
	if err != nil || order == nil {
		fields := map[string]interface{}{
			"tenant_id":     snap.Tenant.ID,
			"department_id": dept.ID,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		r.logger.Warn("staff confirmation matched no pending order", fields)
		r.record(ctx, "", "staff_ignored", start)
		return
	}

	guest, err := r.guests.GuestByID(ctx, order.GuestID)
	if err != nil {
		r.logger.Error("confirmed order references unknown guest", map[string]interface{}{
			"order_id": order.ID,
			"guest_id": order.GuestID,
			"error":    err.Error(),
		})
		r.record(ctx, "", "staff_confirmed", start)
		return
	}

	st, _ := r.states.Get(ctx, snap.Tenant.ID, guest.ID, snap.Tenant.DefaultLanguage())
	lang := snap.Tenant.DefaultLanguage()
	if st != nil && st.Language != "" {
		lang = st.Language
	}

	text := r.generator.Render(respond.Result{Kind: respond.KindOrderInPreparation}, lang, &snap.Tenant)
	r.deliver(ctx, snap, guest, text, string(models.IntentOrderSubmit))
	r.record(ctx, "staff_confirm", "staff_confirmed", start)
}

func (r *Router) processGuest(ctx context.Context, snap *models.TenantSnapshot, msg *models.InboundMessage, start time.Time) {
	guest, err := r.guests.GetOrCreateGuest(ctx, snap.Tenant.ID, msg.From, msg.ProfileName)
	if err != nil {
		r.logger.Error("failed to load guest record", map[string]interface{}{
			"tenant_id": snap.Tenant.ID,
			"from":      msg.From,
			"error":     err.Error(),
		})
		r.alerter.Raise(ctx, "message dropped: guest lookup failed",
			"the guest record could not be read or created, the message was dropped",
			map[string]interface{}{
				"tenant_id": snap.Tenant.ID,
				"from":      msg.From,
			})
		r.record(ctx, "", "failed", start)
		return
	}

	st, err := r.states.Get(ctx, snap.Tenant.ID, guest.ID, snap.Tenant.DefaultLanguage())
	if err != nil || st == nil {
		if err != nil {
			r.logger.Warn("state read failed, starting from a fresh state", map[string]interface{}{
				"tenant_id": snap.Tenant.ID,
				"guest_id":  guest.ID,
				"error":     err.Error(),
			})
		}
		st = &models.ConversationState{
			TenantID: snap.Tenant.ID,
			GuestID:  guest.ID,
			Language: snap.Tenant.DefaultLanguage(),
		}
	}

	history, err := r.messages.History(ctx, snap.Tenant.ID, guest.ID, r.cfg.HistoryLimit)
	if err != nil {
		r.logger.Warn("failed to load conversation history", map[string]interface{}{
			"tenant_id": snap.Tenant.ID,
			"guest_id":  guest.ID,
			"error":     err.Error(),
		})
	}

	now := msg.ReceivedAt
	if now.IsZero() {
		now = time.Now()
	}

	intent, cErr := r.classifier.Classify(ctx, classifier.Input{
		Snapshot: snap,
		Guest:    guest,
		State:    st,
		History:  history,
		Text:     msg.Text,
		Now:      now,
	})
	if cErr != nil {
		r.logger.Warn("classification fell back", map[string]interface{}{
			"tenant_id": snap.Tenant.ID,
			"guest_id":  guest.ID,
			"category":  string(intent.Category),
			"error":     cErr.Error(),
		})
	}

	r.saveMessage(ctx, &models.MessageRecord{
		ID:        uuid.New().String(),
		TenantID:  snap.Tenant.ID,
		GuestID:   guest.ID,
		Direction: models.DirectionInbound,
		Sender:    models.SenderGuest,
		Content:   msg.Text,
		Intent:    string(intent.Category),
		CreatedAt: now,
	})

	r.applyProfileUpdates(ctx, guest, st, intent)

	result, outcome := r.dispatch(ctx, snap, guest, st, intent, history, msg.Text, now)

	st.LastActivity = now
	putCtx, putCancel := r.deliveryContext(ctx)
	defer putCancel()
	if err := r.states.Put(putCtx, st); err != nil {
		r.logger.Error("failed to persist conversation state", map[string]interface{}{
			"tenant_id": snap.Tenant.ID,
			"guest_id":  guest.ID,
			"error":     err.Error(),
		})
	}

	text := r.generator.Render(result, st.Language, &snap.Tenant)
	if !r.deliver(ctx, snap, guest, text, string(intent.Category)) && outcome == "ok" {
		outcome = "delivery_failed"
	}

	r.record(ctx, string(intent.Category), outcome, start)
}

// dispatch applies the routing table. ORDER_SUBMIT and RESERVATION_CONFIRM
// demote to general handling when there is no draft to act on; a submit with
// items but no department to take them escalates instead, an order is never
// dropped as Q&A. UNKNOWN and a blown message budget both end at the
// escalation handler so a human always backs up a broken AI path.
func (r *Router) dispatch(ctx context.Context, snap *models.TenantSnapshot, guest *models.Guest, st *models.ConversationState, intent *models.Intent, history []models.MessageRecord, text string, now time.Time) (respond.Result, string) {
	orderInput := &orders.Input{Snapshot: snap, Guest: guest, State: st, Intent: intent, Now: now}
	reservationInput := &reservations.Input{Snapshot: snap, Guest: guest, State: st, Intent: intent, Now: now}

	var (
		result respond.Result
		err    error
	)

	switch intent.Category {
	case models.IntentGeneralQuestion:
		result, err = r.autoReply(ctx, snap, guest, st, history, text)

	case models.IntentOrderItem:
		result, err = r.handlers.Orders.AddItems(ctx, orderInput)

	case models.IntentOrderSubmit:
		result, err = r.handlers.Orders.Submit(ctx, orderInput)
		if errors.Is(err, orders.ErrNothingToSubmit) {
			result, err = r.autoReply(ctx, snap, guest, st, history, text)
		} else if errors.Is(err, orders.ErrNoTargetDepartment) {
			result, err = r.escalate(ctx, snap, guest, text)
		}

	case models.IntentReservationRequest:
		result, err = r.handlers.Reservations.Request(ctx, reservationInput)

	case models.IntentReservationConfirm:
		result, err = r.handlers.Reservations.Confirm(ctx, reservationInput)
		if errors.Is(err, reservations.ErrNothingToConfirm) {
			result, err = r.autoReply(ctx, snap, guest, st, history, text)
		}

	default:
		result, err = r.escalate(ctx, snap, guest, text)
	}

	if err != nil {
		if result.Kind == "" {
			result = respond.Result{Kind: respond.KindApology}
		}
		return result, "handler_error"
	}
	return result, "ok"
}

func (r *Router) autoReply(ctx context.Context, snap *models.TenantSnapshot, guest *models.Guest, st *models.ConversationState, history []models.MessageRecord, text string) (respond.Result, error) {
	return r.handlers.AutoReply.Execute(ctx, &autoreply.Input{
		Snapshot: snap,
		Guest:    guest,
		History:  history,
		Text:     text,
		Language: st.Language,
	})
}

func (r *Router) escalate(ctx context.Context, snap *models.TenantSnapshot, guest *models.Guest, text string) (respond.Result, error) {
	// Escalation still runs after a blown message budget; it gets a short
	// detached deadline so the guest is not left unanswered.
	escCtx, cancel := r.deliveryContext(ctx)
	defer cancel()
	return r.handlers.Escalation.Execute(escCtx, &escalation.Input{
		Snapshot: snap,
		Guest:    guest,
		Text:     text,
	})
}

// applyProfileUpdates pins the detected language and adopts room/table
// numbers the guest mentioned, best effort.
func (r *Router) applyProfileUpdates(ctx context.Context, guest *models.Guest, st *models.ConversationState, intent *models.Intent) {
	if intent.Language != "" && intent.Language != st.Language {
		st.Language = intent.Language
		if err := r.guests.UpdateGuestLanguage(ctx, guest.ID, intent.Language); err != nil {
			r.logger.Warn("failed to persist guest language", map[string]interface{}{
				"guest_id": guest.ID,
				"error":    err.Error(),
			})
		}
		guest.Language = intent.Language
	}

	if intent.RoomNumber != "" || intent.TableNumber != "" {
		if err := r.guests.UpdateGuestLocation(ctx, guest.ID, intent.RoomNumber, intent.TableNumber); err != nil {
			r.logger.Warn("failed to persist guest location", map[string]interface{}{
				"guest_id": guest.ID,
				"error":    err.Error(),
			})
		}
		if intent.RoomNumber != "" {
			guest.RoomNumber = intent.RoomNumber
		}
		if intent.TableNumber != "" {
			guest.TableNumber = intent.TableNumber
		}
	}
}

// deliver sends the rendered reply to the guest and logs it. Reports whether
// delivery succeeded.
func (r *Router) deliver(ctx context.Context, snap *models.TenantSnapshot, guest *models.Guest, text, intentTag string) bool {
	if text == "" {
		return true
	}
	sendCtx, cancel := r.deliveryContext(ctx)
	defer cancel()

	ok := true
	if err := r.sender.SendText(sendCtx, guest.ChannelID, text); err != nil {
		delivery := apperrors.NewGuestDeliveryFailedError(guest.ChannelID, err)
		r.logger.Error("failed to deliver guest reply", map[string]interface{}{
			"tenant_id": snap.Tenant.ID,
			"guest_id":  guest.ID,
			"error":     delivery.Error(),
		})
		r.alerter.Raise(sendCtx, "guest reply delivery failed",
			"a rendered reply could not be delivered to the guest",
			map[string]interface{}{
				"tenant_id": snap.Tenant.ID,
				"guest_id":  guest.ID,
			})
		ok = false
	}

	r.saveMessage(sendCtx, &models.MessageRecord{
		ID:        uuid.New().String(),
		TenantID:  snap.Tenant.ID,
		GuestID:   guest.ID,
		Direction: models.DirectionOutbound,
		Sender:    models.SenderAssistant,
		Content:   text,
		Intent:    intentTag,
		CreatedAt: time.Now(),
	})
	return ok
}

func (r *Router) saveMessage(ctx context.Context, rec *models.MessageRecord) {
	if err := r.messages.SaveMessage(ctx, rec); err != nil {
		r.logger.Error("failed to log message", map[string]interface{}{
			"tenant_id": rec.TenantID,
			"guest_id":  rec.GuestID,
			"direction": string(rec.Direction),
			"error":     err.Error(),
		})
		return
	}
	r.archiver.Index(ctx, rec)
}

// deliveryContext returns ctx while the message budget is alive, otherwise a
// short detached deadline so the closing steps still run.
func (r *Router) deliveryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx.Err() == nil {
		return ctx, func() {}
	}
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (r *Router) record(ctx context.Context, intent, outcome string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordMessageRouted(ctx, intent, outcome)
	r.metrics.RecordMessageDuration(ctx, time.Since(start), outcome)
}
