package event

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalasangam/search-service/internal/domain"
	"github.com/kalasangam/search-service/internal/service"
	pkgkafka "github.com/kalasangam/search-service/pkg/kafka"
)

// Kafka topics for the catalog domain events this service consumes.
var (
	TopicArtistCreated   = pkgkafka.Topic("artist", "created")
	TopicArtistUpdated   = pkgkafka.Topic("artist", "updated")
	TopicArtistDeleted   = pkgkafka.Topic("artist", "deleted")
	TopicWorkshopCreated = pkgkafka.Topic("workshop", "created")
	TopicWorkshopUpdated = pkgkafka.Topic("workshop", "updated")
	TopicWorkshopDeleted = pkgkafka.Topic("workshop", "deleted")
)

// Topics returns all topics the search service subscribes to.
func Topics() []string {
	return []string{
		TopicArtistCreated,
		TopicArtistUpdated,
		TopicArtistDeleted,
		TopicWorkshopCreated,
		TopicWorkshopUpdated,
		TopicWorkshopDeleted,
	}
}

// deletedData is the payload of a deleted event.
type deletedData struct {
	ID string `json:"id"`
}

// Consumer handles catalog events and keeps the search index current.
type Consumer struct {
	searchService *service.SearchService
	logger        *slog.Logger
}

// NewConsumer creates a new event consumer for the search service.
func NewConsumer(searchService *service.SearchService, logger *slog.Logger) *Consumer {
	return &Consumer{
		searchService: searchService,
		logger:        logger,
	}
}

// Handle processes a Kafka event based on its type. Created and updated
// events both re-index the full document; producers always publish complete
// snapshots, not diffs.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicArtistCreated, TopicArtistUpdated:
		return c.handleUpsert(ctx, event, domain.ScopeArtist)
	case TopicWorkshopCreated, TopicWorkshopUpdated:
		return c.handleUpsert(ctx, event, domain.ScopeWorkshop)
	case TopicArtistDeleted, TopicWorkshopDeleted:
		return c.handleDelete(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleUpsert indexes the document carried by a created or updated event.
func (c *Consumer) handleUpsert(ctx context.Context, event *pkgkafka.Event, scope string) error {
	var input service.IndexDocumentInput
	if err := event.UnmarshalData(&input); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}
	input.Type = scope

	if err := c.searchService.IndexDocument(ctx, &input); err != nil {
		return fmt.Errorf("index document from %s: %w", shortType(event.EventType), err)
	}

	c.logger.InfoContext(ctx, "indexed document from event",
		slog.String("document_id", input.ID),
		slog.String("event_type", event.EventType),
	)

	return nil
}

// handleDelete removes the document named by a deleted event.
func (c *Consumer) handleDelete(ctx context.Context, event *pkgkafka.Event) error {
	var data deletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	if err := c.searchService.DeleteDocument(ctx, data.ID); err != nil {
		return fmt.Errorf("delete document from %s: %w", shortType(event.EventType), err)
	}

	c.logger.InfoContext(ctx, "deleted document from event",
		slog.String("document_id", data.ID),
		slog.String("event_type", event.EventType),
	)

	return nil
}

// shortType strips the topic prefix for error messages.
func shortType(eventType string) string {
	return strings.TrimPrefix(eventType, pkgkafka.TopicPrefix+".")
}
