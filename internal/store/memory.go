package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/avbelov/items-api/internal/model"
)

var itemsStored = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "items_stored_total",
		Help: "Number of items currently held in the store",
	},
)

// MemoryStore implements Store with in-memory storage.
// Identifiers come from a monotonically increasing counter and are
// never reused, even after deletions.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[int64]model.Item
	nextID int64
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[int64]model.Item),
	}
}

// List returns all items in creation order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list items: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}

	// IDs are assigned monotonically, so ID order is creation order.
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})

	return items, nil
}

// Get retrieves an item by its ID.
func (s *MemoryStore) Get(ctx context.Context, id int64) (*model.Item, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("get item: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, false, nil
	}

	return &item, true, nil
}

// Create persists a new item under a freshly assigned ID.
func (s *MemoryStore) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create item: %w", ctx.Err())
	default:
	}

	if item == nil {
		return nil, fmt.Errorf("create item: item cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Now().UTC()
	newItem := model.Item{
		ID:        s.nextID,
		Name:      item.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.items[newItem.ID] = newItem
	itemsStored.Set(float64(len(s.items)))

	return &newItem, nil
}

// Update replaces the mutable fields of an existing item.
func (s *MemoryStore) Update(ctx context.Context, id int64, item *model.Item) (*model.Item, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("update item: %w", ctx.Err())
	default:
	}

	if item == nil {
		return nil, false, fmt.Errorf("update item: item cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.items[id]
	if !exists {
		return nil, false, nil
	}

	updatedItem := model.Item{
		ID:        id,
		Name:      item.Name,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}

	s.items[id] = updatedItem

	return &updatedItem, true, nil
}

// Delete removes an item by its ID.
func (s *MemoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("delete item: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return false, nil
	}

	delete(s.items, id)
	itemsStored.Set(float64(len(s.items)))

	return true, nil
}
