// Package model defines data structures used throughout the application.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Validation reasons reported per field.
const (
	ReasonNameRequired = "Name is required"
	ReasonNameTooLong  = "Name cannot exceed 255 characters"
)

// MaxNameLength limits the item name length.
const MaxNameLength = 255

// Item represents a managed resource in the system.
// The ID is assigned by the store and never changes after creation.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemInput is the request payload for creating or updating an item.
// Any caller-supplied ID is ignored; identifiers are store-assigned.
type ItemInput struct {
	Name string `json:"name"`
}

// Validate checks the input structurally and returns a ValidationError
// naming every offending field, or nil if the input is well-formed.
func (in *ItemInput) Validate() error {
	fields := make(map[string]string)

	trimmed := strings.TrimSpace(in.Name)
	switch {
	case trimmed == "":
		fields["name"] = ReasonNameRequired
	case len(in.Name) > MaxNameLength:
		fields["name"] = ReasonNameTooLong
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}

// ValidationError reports malformed input as a field name to
// human-readable reason mapping.
type ValidationError struct {
	Fields map[string]string
}

// Error returns the field reasons joined in field-name order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Item event types sent to stream subscribers.
const (
	EventItemCreated = "item_created"
	EventItemUpdated = "item_updated"
	EventItemDeleted = "item_deleted"
)

// ItemEvent describes a change to the item collection.
type ItemEvent struct {
	Type      string    `json:"type"`
	Item      Item      `json:"item"`
	Timestamp time.Time `json:"timestamp"`
}

// NewItemEvent creates an event for the given change type and item.
func NewItemEvent(eventType string, item Item) ItemEvent {
	return ItemEvent{
		Type:      eventType,
		Item:      item,
		Timestamp: time.Now().UTC(),
	}
}
