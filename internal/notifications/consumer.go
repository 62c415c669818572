package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/lucasfarrell/wavecrest-backend/pkg/db/models"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	"github.com/lucasfarrell/wavecrest-backend/pkg/logger"
	"github.com/lucasfarrell/wavecrest-backend/pkg/outbox"
	"github.com/lucasfarrell/wavecrest-backend/pkg/outbox/idempotency"
	"github.com/lucasfarrell/wavecrest-backend/pkg/outbox/payloads"
	"github.com/lucasfarrell/wavecrest-backend/pkg/outbox/registry"
)

const guideNotificationConsumer = "guide-notifications"

type consumerRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindAssignments(ctx context.Context, ids []uuid.UUID) ([]models.TripAssignment, error)
}

// Consumer watches domain events and fans them out as in-app guide
// notifications.
type Consumer struct {
	repo         consumerRepository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	decoders     *registry.DecoderRegistry
	logg         *logger.Logger
}

// NewConsumer builds a guide notification consumer.
func NewConsumer(repo consumerRepository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		decoders:     newDomainDecoderRegistry(),
		logg:         logg,
	}, nil
}

func newDomainDecoderRegistry() *registry.DecoderRegistry {
	reg := registry.NewDecoderRegistry()
	reg.Register(enums.EventAssignmentCreated, 1, func(payload json.RawMessage) (interface{}, error) {
		var v payloads.AssignmentCreatedEvent
		err := json.Unmarshal(payload, &v)
		return v, err
	})
	reg.Register(enums.EventAssignmentConfirmed, 1, func(payload json.RawMessage) (interface{}, error) {
		var v payloads.AssignmentDecisionEvent
		err := json.Unmarshal(payload, &v)
		return v, err
	})
	reg.Register(enums.EventAssignmentRejected, 1, func(payload json.RawMessage) (interface{}, error) {
		var v payloads.AssignmentDecisionEvent
		err := json.Unmarshal(payload, &v)
		return v, err
	})
	reg.Register(enums.EventAssignmentExpired, 1, func(payload json.RawMessage) (interface{}, error) {
		var v payloads.AssignmentExpiredEvent
		err := json.Unmarshal(payload, &v)
		return v, err
	})
	reg.Register(enums.EventSwapRequested, 1, func(payload json.RawMessage) (interface{}, error) {
		var v payloads.SwapRequestedEvent
		err := json.Unmarshal(payload, &v)
		return v, err
	})
	return reg
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg.Attributes["event_type"], msg.ID, msg.Data)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, eventTypeAttr, messageID string, data []byte) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventTypeAttr,
	})

	eventType, err := enums.ParseOutboxEventType(eventTypeAttr)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	decoded, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		// No decoder registered means the event is not ours to handle.
		c.logg.Info(logCtx, "no handler for event")
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, guideNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, decoded, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, guideNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, decoded interface{}, logCtx context.Context) error {
	switch payload := decoded.(type) {
	case payloads.AssignmentCreatedEvent:
		return c.notifyOffers(ctx, payload, logCtx)
	case payloads.AssignmentDecisionEvent:
		return c.notifyDecision(ctx, eventType, payload, logCtx)
	case payloads.AssignmentExpiredEvent:
		return c.notifyExpired(ctx, payload, logCtx)
	case payloads.SwapRequestedEvent:
		return c.notifySwapTarget(ctx, payload, logCtx)
	default:
		c.logg.Info(logCtx, "event not handled")
		return nil
	}
}

func (c *Consumer) notifyOffers(ctx context.Context, payload payloads.AssignmentCreatedEvent, logCtx context.Context) error {
	rows, err := c.repo.FindAssignments(ctx, payload.AssignmentIDs)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("/trips/%s/assignments", payload.TripID)
	for _, row := range rows {
		notification := &models.Notification{
			GuideID: row.GuideID,
			Type:    enums.NotificationTypeAssignmentOffer,
			Title:   "New trip assignment",
			Message: fmt.Sprintf("You have been offered the %s slot on an upcoming trip. Confirm before %s.",
				row.Role, payload.Deadline.Format("Jan 2 15:04 MST")),
			Link: stringPtr(link),
		}
		if err := c.repo.Create(ctx, notification); err != nil {
			return err
		}
	}
	c.logg.Info(logCtx, "guides notified of new offers")
	return nil
}

func (c *Consumer) notifyDecision(ctx context.Context, eventType enums.OutboxEventType, payload payloads.AssignmentDecisionEvent, logCtx context.Context) error {
	if payload.GuideID == uuid.Nil {
		return fmt.Errorf("guide id missing")
	}
	link := fmt.Sprintf("/trips/%s/assignments", payload.TripID)
	title := "Assignment confirmed"
	message := fmt.Sprintf("Your %s assignment is confirmed.", payload.Role)
	if eventType == enums.EventAssignmentRejected {
		title = "Assignment declined"
		message = fmt.Sprintf("Your %s assignment was declined.", payload.Role)
		if payload.Reason != "" {
			message = fmt.Sprintf("Your %s assignment was declined: %s", payload.Role, payload.Reason)
		}
	}
	notification := &models.Notification{
		GuideID: payload.GuideID,
		Type:    enums.NotificationTypeAssignmentUpdate,
		Title:   title,
		Message: message,
		Link:    stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "guide notified of decision")
	return nil
}

func (c *Consumer) notifyExpired(ctx context.Context, payload payloads.AssignmentExpiredEvent, logCtx context.Context) error {
	if payload.GuideID == uuid.Nil {
		return fmt.Errorf("guide id missing")
	}
	notification := &models.Notification{
		GuideID: payload.GuideID,
		Type:    enums.NotificationTypeAssignmentUpdate,
		Title:   "Assignment expired",
		Message: "A trip assignment offer lapsed before you responded.",
		Link:    stringPtr(fmt.Sprintf("/trips/%s/assignments", payload.TripID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "guide notified of expiry")
	return nil
}

func (c *Consumer) notifySwapTarget(ctx context.Context, payload payloads.SwapRequestedEvent, logCtx context.Context) error {
	if payload.ToGuideID == uuid.Nil {
		return fmt.Errorf("target guide id missing")
	}
	message := "A colleague asked you to take over their trip slot."
	if payload.Reason != "" {
		message = fmt.Sprintf("A colleague asked you to take over their trip slot: %s", payload.Reason)
	}
	notification := &models.Notification{
		GuideID: payload.ToGuideID,
		Type:    enums.NotificationTypeSwapRequest,
		Title:   "Shift swap requested",
		Message: message,
		Link:    stringPtr(fmt.Sprintf("/swaps/%s", payload.SwapRequestID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "swap target notified")
	return nil
}

func stringPtr(value string) *string {
	return &value
}
