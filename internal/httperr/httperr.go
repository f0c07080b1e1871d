// Package httperr translates domain failures into the external error
// representation. The mapping is stateless: the same failure kind
// always yields the same status class and payload shape.
package httperr

import (
	"errors"
	"net/http"
	"time"

	"github.com/avbelov/items-api/internal/model"
	"github.com/avbelov/items-api/internal/service"
)

// Payload is the structured error body returned to clients. Errors
// carries the field to reason mapping and is present only for
// validation failures.
type Payload struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Translate maps a failure to an HTTP status and error payload.
// Validation failures become 400 with the field map, absent resources
// become 404 with the rendered message, and anything else becomes 500
// with internal detail withheld.
func Translate(err error) (int, Payload) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return newPayload(http.StatusBadRequest, "Validation failed", validationErr.Fields)
	}

	var notFoundErr *service.NotFoundError
	if errors.As(err, &notFoundErr) {
		return newPayload(http.StatusNotFound, notFoundErr.Error(), nil)
	}

	return newPayload(http.StatusInternalServerError, "internal server error", nil)
}

// NewPayload builds a payload for a status and message directly,
// bypassing failure classification. Used at the boundary for errors
// that never take the form of a domain failure, such as undecodable
// request bodies.
func NewPayload(status int, message string) Payload {
	_, p := newPayload(status, message, nil)
	return p
}

func newPayload(status int, message string, fields map[string]string) (int, Payload) {
	return status, Payload{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Errors:    fields,
	}
}
