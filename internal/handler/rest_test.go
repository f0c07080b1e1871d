package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/avbelov/items-api/internal/httperr"
	"github.com/avbelov/items-api/internal/model"
	"github.com/avbelov/items-api/internal/service"
)

// mockService implements ItemService for testing
type mockService struct {
	items     map[int64]model.Item
	nextID    int64
	listErr   error
	createErr error
}

func newMockService() *mockService {
	return &mockService{
		items: make(map[int64]model.Item),
	}
}

func (m *mockService) Create(_ context.Context, input *model.ItemInput) (*model.Item, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	item := model.Item{ID: m.nextID, Name: input.Name}
	m.items[item.ID] = item
	return &item, nil
}

func (m *mockService) Get(_ context.Context, id int64) (*model.Item, error) {
	item, exists := m.items[id]
	if !exists {
		return nil, &service.NotFoundError{ID: id}
	}
	return &item, nil
}

func (m *mockService) Update(_ context.Context, id int64, input *model.ItemInput) (*model.Item, error) {
	item, exists := m.items[id]
	if !exists {
		return nil, &service.NotFoundError{ID: id}
	}
	item.Name = input.Name
	m.items[id] = item
	return &item, nil
}

func (m *mockService) Delete(_ context.Context, id int64) error {
	if _, exists := m.items[id]; !exists {
		return &service.NotFoundError{ID: id}
	}
	delete(m.items, id)
	return nil
}

func (m *mockService) List(_ context.Context) ([]model.Item, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	items := make([]model.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	return items, nil
}

func newTestRouter(svc ItemService) *mux.Router {
	router := mux.NewRouter()
	NewRESTHandler(svc, zap.NewNop()).RegisterRoutes(router)
	return router
}

func decodePayload(t *testing.T, rec *httptest.ResponseRecorder) httperr.Payload {
	t.Helper()
	var payload httperr.Payload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding error payload: %v", err)
	}
	return payload
}

func TestRESTHandler_HealthCheck(t *testing.T) {
	// Arrange
	router := newTestRouter(newMockService())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("Status = %s, want healthy", response.Status)
	}
}

func TestRESTHandler_CreateItem(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantReason string
	}{
		{
			name:       "valid item",
			body:       `{"name":"Smart Watch"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "blank name",
			body:       `{"name":""}`,
			wantStatus: http.StatusBadRequest,
			wantReason: model.ReasonNameRequired,
		},
		{
			name:       "missing name field",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantReason: model.ReasonNameRequired,
		},
		{
			name:       "malformed JSON",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc := newMockService()
			router := newTestRouter(svc)
			req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rec, req)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusCreated {
				var item model.Item
				if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if item.ID <= 0 {
					t.Errorf("ID = %d, want positive", item.ID)
				}
				return
			}

			// Validation failures never reach the service
			if len(svc.items) != 0 {
				t.Errorf("service holds %d items, want 0", len(svc.items))
			}

			if tt.wantReason != "" {
				payload := decodePayload(t, rec)
				if payload.Errors["name"] != tt.wantReason {
					t.Errorf("Errors[name] = %q, want %q", payload.Errors["name"], tt.wantReason)
				}
			}
		})
	}
}

func TestRESTHandler_GetItem(t *testing.T) {
	// Arrange
	svc := newMockService()
	created, _ := svc.Create(context.Background(), &model.ItemInput{Name: "Smart Watch"})
	router := newTestRouter(svc)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{
			name:       "existing item",
			path:       "/items/1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing item",
			path:       "/items/999",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non-numeric id",
			path:       "/items/abc",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rec, req)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				var item model.Item
				if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if item.Name != created.Name {
					t.Errorf("Name = %s, want %s", item.Name, created.Name)
				}
			}
		})
	}
}

func TestRESTHandler_GetItem_NotFoundPayload(t *testing.T) {
	// Arrange
	router := newTestRouter(newMockService())
	req := httptest.NewRequest(http.MethodGet, "/items/999", nil)
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	payload := decodePayload(t, rec)
	if payload.Status != http.StatusNotFound {
		t.Errorf("payload.Status = %d, want %d", payload.Status, http.StatusNotFound)
	}
	if payload.Error != "Not Found" {
		t.Errorf("payload.Error = %q, want Not Found", payload.Error)
	}
	if payload.Message != "item not found with id: 999" {
		t.Errorf("payload.Message = %q, want missing id rendered", payload.Message)
	}
	if payload.Errors != nil {
		t.Errorf("payload.Errors = %v, want omitted", payload.Errors)
	}
}

func TestRESTHandler_UpdateItem(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "existing item",
			path:       "/items/1",
			body:       `{"name":"Renamed"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing item",
			path:       "/items/999",
			body:       `{"name":"Renamed"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "blank name",
			path:       "/items/1",
			body:       `{"name":"  "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed JSON",
			path:       "/items/1",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc := newMockService()
			if _, err := svc.Create(context.Background(), &model.ItemInput{Name: "Original"}); err != nil {
				t.Fatalf("seeding item: %v", err)
			}
			router := newTestRouter(svc)
			req := httptest.NewRequest(http.MethodPut, tt.path, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rec, req)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				var item model.Item
				if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if item.ID != 1 {
					t.Errorf("ID = %d, want 1 (identifier preserved)", item.ID)
				}
				if item.Name != "Renamed" {
					t.Errorf("Name = %s, want Renamed", item.Name)
				}
			}
		})
	}
}

func TestRESTHandler_DeleteItem(t *testing.T) {
	// Arrange
	svc := newMockService()
	if _, err := svc.Create(context.Background(), &model.ItemInput{Name: "Doomed"}); err != nil {
		t.Fatalf("seeding item: %v", err)
	}
	router := newTestRouter(svc)

	// Act: first delete
	req := httptest.NewRequest(http.MethodDelete, "/items/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Assert
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}

	// Act: second delete
	req = httptest.NewRequest(http.MethodDelete, "/items/1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Assert
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d on second delete", rec.Code, http.StatusNotFound)
	}
}

func TestRESTHandler_ListItems(t *testing.T) {
	// Arrange
	svc := newMockService()
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var items []model.Item
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %v, want empty list", items)
	}
}

func TestRESTHandler_ListItems_ServiceFailure(t *testing.T) {
	// Arrange
	svc := newMockService()
	svc.listErr = errors.New("backend unavailable")
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	payload := decodePayload(t, rec)
	if payload.Message != "internal server error" {
		t.Errorf("payload.Message = %q, internal detail must be withheld", payload.Message)
	}
}
