package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sitelore/backend/internal/api/handlers"
	"github.com/sitelore/backend/internal/domain/entities"
	apperrors "github.com/sitelore/backend/pkg/errors"
)

type mockInteractionRecorder struct {
	mock.Mock
}

func (m *mockInteractionRecorder) CreateUser(ctx context.Context, user *entities.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInteractionRecorder) RecordEvent(ctx context.Context, event *entities.InteractionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestCreateUser_Success(t *testing.T) {
	recorder := new(mockInteractionRecorder)
	recorder.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
		return u.Name == "ada"
	})).Return(int64(7), nil)

	handler := handlers.NewInteractionHandler(recorder)
	req := httptest.NewRequest("POST", "/db/users", strings.NewReader(`{"name":"ada"}`))
	w := httptest.NewRecorder()
	handler.CreateUser(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, float64(7), body["id"])
	recorder.AssertExpectations(t)
}

func TestCreateUser_InvalidBody(t *testing.T) {
	handler := handlers.NewInteractionHandler(new(mockInteractionRecorder))

	req := httptest.NewRequest("POST", "/db/users", strings.NewReader(`{`))
	w := httptest.NewRecorder()
	handler.CreateUser(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateEvent_Success(t *testing.T) {
	recorder := new(mockInteractionRecorder)
	recorder.On("RecordEvent", mock.Anything, mock.MatchedBy(func(e *entities.InteractionEvent) bool {
		return e.UserID == 1 && e.SiteID == 10 && e.EventType == entities.EventTypeDwell &&
			e.DwellSeconds != nil && *e.DwellSeconds == 42.5
	})).Return(nil)

	handler := handlers.NewInteractionHandler(recorder)
	req := httptest.NewRequest("POST", "/db/events",
		strings.NewReader(`{"user_id":1,"site_id":10,"event_type":"dwell","dwell_seconds":42.5}`))
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	recorder.AssertExpectations(t)
}

func TestCreateEvent_ValidationErrorMapsTo400(t *testing.T) {
	recorder := new(mockInteractionRecorder)
	recorder.On("RecordEvent", mock.Anything, mock.Anything).
		Return(apperrors.NewValidationError("dwell events require dwell_seconds"))

	handler := handlers.NewInteractionHandler(recorder)
	req := httptest.NewRequest("POST", "/db/events",
		strings.NewReader(`{"user_id":1,"site_id":10,"event_type":"dwell"}`))
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body["error"], "dwell_seconds")
}

func TestCreateEvent_UnknownUserMapsTo404(t *testing.T) {
	recorder := new(mockInteractionRecorder)
	recorder.On("RecordEvent", mock.Anything, mock.Anything).
		Return(apperrors.NewNotFoundError("user not found"))

	handler := handlers.NewInteractionHandler(recorder)
	req := httptest.NewRequest("POST", "/db/events",
		strings.NewReader(`{"user_id":99,"site_id":10,"event_type":"view"}`))
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
