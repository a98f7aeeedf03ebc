// Package alert raises operator notifications for conditions that need
// human attention: unknown tenants, staff delivery failures, persistence
// errors. Alerts are best effort and never fail the message that raised them.
package alert

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gastino/internal/common/aws"
	"gastino/internal/common/config"
	"gastino/internal/common/logger"
	"gastino/internal/common/observability"
)

// Alerter raises one operator alert. Implementations must not block the
// caller beyond the context deadline and must swallow their own errors.
type Alerter interface {
	Raise(ctx context.Context, subject, detail string, fields map[string]interface{})
}

// Manager fans an alert out to the configured channels (SNS topic, email).
type Manager struct {
	cfg     config.AlertsConfig
	sns     *aws.SNSClient
	ses     *aws.SESClient
	metrics *observability.Observability
	logger  logger.Logger
}

func NewManager(cfg config.AlertsConfig, sns *aws.SNSClient, ses *aws.SESClient, metrics *observability.Observability, log logger.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		sns:     sns,
		ses:     ses,
		metrics: metrics,
		logger:  log,
	}
}

func (m *Manager) Raise(ctx context.Context, subject, detail string, fields map[string]interface{}) {
	m.logger.Error("operational alert", mergeFields(fields, map[string]interface{}{
		"subject": subject,
		"detail":  detail,
	}))
	if m.metrics != nil {
		m.metrics.RecordAlert(ctx, subject)
	}
	if !m.cfg.Enabled {
		return
	}

	body := formatBody(detail, fields)

	if m.sns != nil && m.cfg.SNSTopicARN != "" {
		if err := m.sns.PublishToTopic(ctx, m.cfg.SNSTopicARN, subject, body); err != nil {
			m.logger.Warn("failed to publish alert to SNS", map[string]interface{}{
				"subject": subject,
				"error":   err.Error(),
			})
		}
	}

	if m.ses != nil && m.cfg.Email.Enabled {
		if err := m.ses.SendPlainEmail(ctx, m.cfg.Email.FromEmail, m.cfg.Email.ToEmail, subject, body); err != nil {
			m.logger.Warn("failed to send alert email", map[string]interface{}{
				"subject": subject,
				"error":   err.Error(),
			})
		}
	}
}

func formatBody(detail string, fields map[string]interface{}) string {
	var b strings.Builder
	b.WriteString(detail)
	b.WriteString("\n\nTime: " + time.Now().UTC().Format(time.RFC3339))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %v", k, fields[k])
	}
	return b.String()
}

func mergeFields(a, b map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Nop discards all alerts. Used in tests and when alerting is disabled.
type Nop struct{}

func (Nop) Raise(context.Context, string, string, map[string]interface{}) {}

// Recorder captures raised alerts for assertions in tests.
type Recorder struct {
	Subjects []string
	Details  []string
}

func (r *Recorder) Raise(_ context.Context, subject, detail string, _ map[string]interface{}) {
	r.Subjects = append(r.Subjects, subject)
	r.Details = append(r.Details, detail)
}
