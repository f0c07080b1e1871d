package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/avbelov/items-api/internal/httperr"
	"github.com/avbelov/items-api/internal/model"
)

// Version is the application version.
const Version = "1.0.0"

// ItemService is the service surface the handler dispatches to.
// Implemented by service.Service.
type ItemService interface {
	Create(ctx context.Context, input *model.ItemInput) (*model.Item, error)
	Get(ctx context.Context, id int64) (*model.Item, error)
	Update(ctx context.Context, id int64, input *model.ItemInput) (*model.Item, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Item, error)
}

// RESTHandler handles REST API requests for items. It decodes and
// structurally validates payloads, dispatches to the service, and
// renders results; business decisions stay in the service.
type RESTHandler struct {
	service ItemService
	logger  *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(svc ItemService, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	router.HandleFunc("/items", h.CreateItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{id}", h.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/items/{id}", h.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/items/{id}", h.DeleteItem).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// ListItems handles GET /items requests.
func (h *RESTHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.renderError(w, err, "list items")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /items/{id} requests.
func (h *RESTHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, err, "get item")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

// CreateItem handles POST /items requests.
func (h *RESTHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	item, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.renderError(w, err, "create item")
		return
	}

	h.writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /items/{id} requests.
func (h *RESTHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	item, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.renderError(w, err, "update item")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /items/{id} requests.
func (h *RESTHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.renderError(w, err, "delete item")
		return
	}

	h.writeJSON(w, http.StatusNoContent, nil)
}

// decodeInput decodes and validates the request body. Validation
// failures are rendered here so that malformed input never reaches
// the service.
func (h *RESTHandler) decodeInput(w http.ResponseWriter, r *http.Request) (*model.ItemInput, bool) {
	var input model.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest,
			httperr.NewPayload(http.StatusBadRequest, "invalid request body"))
		return nil, false
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		status, payload := httperr.Translate(err)
		h.writeJSON(w, status, payload)
		return nil, false
	}

	return &input, true
}

// itemID parses the {id} path variable.
func (h *RESTHandler) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.Warn("invalid item ID", zap.String("id", raw))
		h.writeJSON(w, http.StatusBadRequest,
			httperr.NewPayload(http.StatusBadRequest, "invalid item ID"))
		return 0, false
	}

	return id, true
}

// renderError hands a service failure to the translator and writes
// its output. Unclassified failures are logged here since the
// rendered payload withholds the detail.
func (h *RESTHandler) renderError(w http.ResponseWriter, err error, operation string) {
	status, payload := httperr.Translate(err)

	if status == http.StatusInternalServerError {
		h.logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
	}

	h.writeJSON(w, status, payload)
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
