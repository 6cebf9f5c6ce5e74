package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

const purchaseQueueGroup = "promotion-service"

// PurchaseHandler consumes decoded boost purchases.
type PurchaseHandler interface {
	PurchaseBoost(ctx context.Context, req promotion.PurchaseRequest) (promotion.PromotionStatus, error)
}

// PurchaseSubscriber feeds billing.boost.purchased messages into the promotion use case.
type PurchaseSubscriber struct {
	conn    *nats.Conn
	handler PurchaseHandler
	logger  *logger.Logger
	sub     *nats.Subscription
}

func NewPurchaseSubscriber(conn *nats.Conn, handler PurchaseHandler, log *logger.Logger) *PurchaseSubscriber {
	return &PurchaseSubscriber{conn: conn, handler: handler, logger: log.Named("PurchaseSubscriber")}
}

// Start joins the service queue group so each purchase is applied by one replica.
func (s *PurchaseSubscriber) Start() error {
	sub, err := s.conn.QueueSubscribe(SubjectBoostPurchased, purchaseQueueGroup, s.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SubjectBoostPurchased, err)
	}
	s.sub = sub
	s.logger.Info("Subscribed to boost purchases", zap.String("subject", SubjectBoostPurchased), zap.String("queue", purchaseQueueGroup))
	return nil
}

func (s *PurchaseSubscriber) Stop() {
	if s.sub == nil {
		return
	}
	if err := s.sub.Drain(); err != nil {
		s.logger.Warn("Failed to drain purchase subscription", zap.Error(err))
	}
}

func (s *PurchaseSubscriber) handle(msg *nats.Msg) {
	ctx := context.Background()
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, NATSHeaderCarrier(msg.Header))
	}
	ctx, span := tracer.Start(ctx, "NATS.Consume."+msg.Subject)
	defer span.End()

	var req promotion.PurchaseRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		span.RecordError(err)
		s.logger.Error("Discarding malformed purchase message", zap.Error(err))
		return
	}

	status, err := s.handler.PurchaseBoost(ctx, req)
	if err != nil {
		span.RecordError(err)
		// Malformed purchases are not redelivered by core NATS; they are only logged.
		level := s.logger.Error
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrInvalidWindow) ||
			errors.Is(err, domain.ErrInvalidTimestamp) || errors.Is(err, domain.ErrNotFound) {
			level = s.logger.Warn
		}
		level("Boost purchase rejected", zap.String("listing_id", req.ListingID), zap.String("plan", req.Plan), zap.Error(err))
		return
	}
	s.logger.Info("Boost purchase applied",
		zap.String("listing_id", req.ListingID),
		zap.String("tier", string(status.Tier)),
		zap.Int("days_remaining", status.DaysRemaining))
}
