package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

var tracer = otel.Tracer("promotion-service/nats")

const (
	SubjectBoostActivated  = "promotion.boost.activated"
	SubjectBoostBumped     = "promotion.boost.bumped"
	SubjectBoostExpired    = "promotion.boost.expired"
	SubjectPresenceChanged = "promotion.presence.changed"
	SubjectPresenceExpired = "promotion.presence.expired"
	SubjectReportFiled     = "report.filed"
	SubjectReportResolved  = "report.resolved"
	SubjectBoostPurchased  = "billing.boost.purchased"
)

// TransitionEvent is the payload of every promotion.* message.
type TransitionEvent struct {
	ListingID      string     `json:"listing_id"`
	Kind           string     `json:"kind"`
	At             time.Time  `json:"at"`
	Plan           string     `json:"plan,omitempty"`
	BumpsRemaining int        `json:"bumps_remaining"`
	NextBumpAt     *time.Time `json:"next_bump_at,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
}

// ReportEvent is the payload of report.filed and report.resolved.
type ReportEvent struct {
	ReportID   string     `json:"report_id"`
	TargetType string     `json:"target_type"`
	TargetID   string     `json:"target_id"`
	Reason     string     `json:"reason"`
	Severity   string     `json:"severity"`
	Status     string     `json:"status"`
	Resolution string     `json:"resolution,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// subjectFor maps a transition kind to its subject. Presence on/off share one subject.
func subjectFor(kind domain.TransitionKind) (string, error) {
	switch kind {
	case domain.TransitionBoostActivated:
		return SubjectBoostActivated, nil
	case domain.TransitionBoostBumped:
		return SubjectBoostBumped, nil
	case domain.TransitionBoostExpired:
		return SubjectBoostExpired, nil
	case domain.TransitionPresenceOn, domain.TransitionPresenceOff:
		return SubjectPresenceChanged, nil
	case domain.TransitionPresenceExpired:
		return SubjectPresenceExpired, nil
	}
	return "", fmt.Errorf("no subject for transition kind %q", kind)
}

func newTransitionEvent(t domain.Transition) TransitionEvent {
	return TransitionEvent{
		ListingID:      t.ListingID,
		Kind:           string(t.Kind),
		At:             t.At,
		Plan:           string(t.Plan),
		BumpsRemaining: t.BumpsRemaining,
		NextBumpAt:     t.NextBumpAt,
		ExpiresAt:      t.ExpiresAt,
	}
}

func newReportEvent(r *domain.Report) ReportEvent {
	return ReportEvent{
		ReportID:   r.ID,
		TargetType: string(r.TargetType),
		TargetID:   r.TargetID,
		Reason:     string(r.Reason),
		Severity:   string(r.Severity),
		Status:     string(r.Status),
		Resolution: string(r.Resolution),
		ResolvedBy: r.ResolvedBy,
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
	}
}

// Publisher implements usecase.EventPublisher over a plain NATS connection.
type Publisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

// Connect dials NATS with the service's logging handlers attached.
func Connect(url string, log *logger.Logger, appName string) (*nats.Conn, error) {
	log.Info("NATS: connecting...", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS client", appName)),
		nats.Timeout(10 * time.Second),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		log.Error("NATS: failed to connect", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATS: successfully connected", zap.String("url", conn.ConnectedUrl()))
	return conn, nil
}

func NewPublisher(conn *nats.Conn, log *logger.Logger) *Publisher {
	return &Publisher{conn: conn, logger: log.Named("NATSPublisher")}
}

func (p *Publisher) PublishTransition(ctx context.Context, t domain.Transition) error {
	subject, err := subjectFor(t.Kind)
	if err != nil {
		return err
	}
	return p.Publish(ctx, subject, newTransitionEvent(t))
}

func (p *Publisher) PublishReportFiled(ctx context.Context, r *domain.Report) error {
	return p.Publish(ctx, SubjectReportFiled, newReportEvent(r))
}

func (p *Publisher) PublishReportResolved(ctx context.Context, r *domain.Report) error {
	return p.Publish(ctx, SubjectReportResolved, newReportEvent(r))
}

// Publish sends data as JSON with the caller's trace context in the headers.
func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("NATS.Publish.%s", subject))
	defer span.End()
	span.SetAttributes(attribute.String("messaging.destination", subject))

	jsonData, err := json.Marshal(data)
	if err != nil {
		p.logger.Error("NATS Publisher: failed to marshal data to JSON", zap.String("subject", subject), zap.Error(err))
		span.RecordError(err)
		return fmt.Errorf("failed to marshal data for subject %s: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = jsonData
	otel.GetTextMapPropagator().Inject(ctx, NATSHeaderCarrier(msg.Header))

	if err := p.conn.PublishMsg(msg); err != nil {
		p.logger.Error("NATS Publisher: failed to publish message", zap.String("subject", subject), zap.Error(err))
		span.RecordError(err)
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	p.logger.Debug("NATS Publisher: message published", zap.String("subject", subject), zap.Int("data_size_bytes", len(jsonData)))
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	p.logger.Info("NATS Publisher: closing connection...")
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Drain(); err != nil {
			p.logger.Error("NATS Publisher: failed to drain connection", zap.Error(err))
		}
		p.conn.Close()
	}
}

// NATSHeaderCarrier adapts nats.Header to the OpenTelemetry TextMapCarrier.
type NATSHeaderCarrier nats.Header

func (c NATSHeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c NATSHeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c NATSHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
