// Package escalation forwards guest messages that need human attention to
// the tenant's escalation department, word for word.
package escalation

import (
	"context"

	"gastino/internal/alert"
	"gastino/internal/common/logger"
	"gastino/internal/engine/respond"
	"gastino/internal/models"
)

// Notifier delivers staff notifications to a group channel.
type Notifier interface {
	SendText(ctx context.Context, to, text string) error
}

type Input struct {
	Snapshot *models.TenantSnapshot
	Guest    *models.Guest
	Text     string
}

type Handler struct {
	notifier Notifier
	alerter  alert.Alerter
	logger   logger.Logger
}

func NewHandler(notifier Notifier, alerter alert.Alerter, log logger.Logger) *Handler {
	return &Handler{
		notifier: notifier,
		alerter:  alerter,
		logger:   log,
	}
}

// Execute forwards the guest's message to the escalation group. The guest
// always gets the acknowledgement, even when the staff notification fails;
// failures are alerted so an operator can follow up.
func (h *Handler) Execute(ctx context.Context, input *Input) (respond.Result, error) {
	ack := respond.Result{Kind: respond.KindEscalationAck}

	dept := input.Snapshot.EscalationDepartment()
	if dept == nil {
		h.alerter.Raise(ctx, "escalation without target department",
			"a guest message needed human attention but the tenant has no escalation department",
			map[string]interface{}{
				"tenant_id": input.Snapshot.Tenant.ID,
				"guest_id":  input.Guest.ID,
				"message":   input.Text,
			})
		return ack, nil
	}

	text := respond.FormatStaffEscalation(input.Guest, input.Text)
	if err := h.notifier.SendText(ctx, dept.GroupChannelID, text); err != nil {
		h.logger.Error("failed to forward escalation to staff group", map[string]interface{}{
			"tenant_id":     input.Snapshot.Tenant.ID,
			"department_id": dept.ID,
			"error":         err.Error(),
		})
		h.alerter.Raise(ctx, "escalation delivery failed",
			"a guest message needing human attention could not be delivered to the staff group",
			map[string]interface{}{
				"tenant_id":     input.Snapshot.Tenant.ID,
				"guest_id":      input.Guest.ID,
				"department_id": dept.ID,
				"message":       input.Text,
			})
		return ack, nil
	}

	h.logger.Info("escalation forwarded to staff group", map[string]interface{}{
		"tenant_id":     input.Snapshot.Tenant.ID,
		"department_id": dept.ID,
	})
	return ack, nil
}
