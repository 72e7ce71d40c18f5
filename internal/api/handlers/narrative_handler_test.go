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
	apperrors "github.com/sitelore/backend/pkg/errors"
)

type mockNarrativeGenerator struct {
	mock.Mock
}

func (m *mockNarrativeGenerator) Generate(ctx context.Context, siteIDs []int64) (string, error) {
	args := m.Called(ctx, siteIDs)
	return args.String(0), args.Error(1)
}

func TestNarrative_Success(t *testing.T) {
	gen := new(mockNarrativeGenerator)
	gen.On("Generate", mock.Anything, []int64{1, 2}).Return("From the abbey walk east to the old bridge.", nil)

	handler := handlers.NewNarrativeHandler(gen)
	req := httptest.NewRequest("POST", "/api/narrative", strings.NewReader(`{"site_ids":[1,2]}`))
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body["narrative"], "abbey")
	gen.AssertExpectations(t)
}

func TestNarrative_EmptyIDsRejected(t *testing.T) {
	gen := new(mockNarrativeGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return("", apperrors.NewValidationError("site_ids must not be empty"))

	handler := handlers.NewNarrativeHandler(gen)
	req := httptest.NewRequest("POST", "/api/narrative", strings.NewReader(`{"site_ids":[]}`))
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNarrative_InvalidBody(t *testing.T) {
	handler := handlers.NewNarrativeHandler(new(mockNarrativeGenerator))

	req := httptest.NewRequest("POST", "/api/narrative", strings.NewReader(`not json`))
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
