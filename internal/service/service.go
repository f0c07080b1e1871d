// Package service implements business rules for the item resource
// on top of the store.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/avbelov/items-api/internal/model"
	"github.com/avbelov/items-api/internal/store"
)

// NotFoundError reports that an operation targeted an identifier
// absent from the store.
type NotFoundError struct {
	ID int64
}

// Error renders the missing identifier in the message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item not found with id: %d", e.ID)
}

// DeletePolicy controls how Delete treats a missing identifier.
type DeletePolicy string

const (
	// DeleteStrict signals NotFoundError when the identifier is absent.
	DeleteStrict DeletePolicy = "strict"
	// DeleteSilent treats deletion of a missing identifier as a no-op.
	DeleteSilent DeletePolicy = "silent"
)

// Publisher delivers item change events to interested subscribers.
type Publisher interface {
	Publish(event model.ItemEvent)
}

// Service applies presence checks and failure semantics on top of the
// store. It is the single place where store absence becomes an
// explicit NotFoundError; callers above never reason about absence
// informally.
type Service struct {
	store        store.Store
	publisher    Publisher
	logger       *zap.Logger
	deletePolicy DeletePolicy
}

// New creates a Service. The publisher may be nil when no event
// stream is wired.
func New(s store.Store, pub Publisher, logger *zap.Logger, policy DeletePolicy) *Service {
	if policy == "" {
		policy = DeleteStrict
	}

	return &Service{
		store:        s,
		publisher:    pub,
		logger:       logger,
		deletePolicy: policy,
	}
}

// Create persists a new item. The candidate is assumed to have passed
// structural validation at the boundary.
func (s *Service) Create(ctx context.Context, input *model.ItemInput) (*model.Item, error) {
	item, err := s.store.Create(ctx, &model.Item{Name: input.Name})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.logger.Debug("item created", zap.Int64("id", item.ID))
	s.publish(model.EventItemCreated, *item)

	return item, nil
}

// Get retrieves an item or signals NotFoundError.
func (s *Service) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, found, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	if !found {
		return nil, &NotFoundError{ID: id}
	}

	return item, nil
}

// Update applies the patch to an existing item, preserving its
// identifier, or signals NotFoundError when the identifier is absent.
func (s *Service) Update(ctx context.Context, id int64, input *model.ItemInput) (*model.Item, error) {
	item, found, err := s.store.Update(ctx, id, &model.Item{Name: input.Name})
	if err != nil {
		return nil, fmt.Errorf("update item %d: %w", id, err)
	}
	if !found {
		return nil, &NotFoundError{ID: id}
	}

	s.logger.Debug("item updated", zap.Int64("id", item.ID))
	s.publish(model.EventItemUpdated, *item)

	return item, nil
}

// Delete removes an item. Under the strict policy a missing
// identifier signals NotFoundError; under the silent policy it is a
// no-op success.
func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if !removed {
		if s.deletePolicy == DeleteSilent {
			s.logger.Debug("delete of missing item ignored", zap.Int64("id", id))
			return nil
		}
		return &NotFoundError{ID: id}
	}

	s.logger.Debug("item deleted", zap.Int64("id", id))
	s.publish(model.EventItemDeleted, model.Item{ID: id})

	return nil
}

// List returns all items in creation order.
func (s *Service) List(ctx context.Context) ([]model.Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

func (s *Service) publish(eventType string, item model.Item) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(model.NewItemEvent(eventType, item))
}
