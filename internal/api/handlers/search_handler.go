package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/internal/domain/repositories"
	"github.com/sitelore/backend/pkg/errors"
)

// SearchProvider is the slice of the search service the handler needs.
type SearchProvider interface {
	SearchText(ctx context.Context, query string, geoFilter *repositories.GeoFilter, k int) (*entities.SearchResult, error)
	SearchGeo(ctx context.Context, geoFilter repositories.GeoFilter, k int) (*entities.SearchResult, error)
	SearchPersonalized(ctx context.Context, userID int64, query string, geoFilter *repositories.GeoFilter, k int) (*entities.SearchResult, error)
}

// SearchHandler handles the search endpoints.
type SearchHandler struct {
	search SearchProvider
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search SearchProvider) *SearchHandler {
	return &SearchHandler{search: search}
}

// SearchText handles GET /api/search?q=...&lat=...&lon=...&radius_meters=...&k=...
func (h *SearchHandler) SearchText(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	geoFilter, err := parseOptionalGeoFilter(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	k := parseLimit(r, 0)

	result, err := h.search.SearchText(r.Context(), query, geoFilter, k)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// SearchGeo handles GET /api/search/geo?lat=...&lon=...&radius_meters=...&q=...&k=...
// With a q parameter the semantic query runs constrained to the radius,
// otherwise sites are ranked by proximity alone.
func (h *SearchHandler) SearchGeo(w http.ResponseWriter, r *http.Request) {
	geoFilter, err := parseOptionalGeoFilter(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if geoFilter == nil {
		respondWithError(w, http.StatusBadRequest, "lat and lon parameters are required")
		return
	}
	k := parseLimit(r, 0)

	if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
		result, err := h.search.SearchText(r.Context(), query, geoFilter, k)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.search.SearchGeo(r.Context(), *geoFilter, k)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// SearchPersonalized handles GET /api/search/user?user_id=...&q=...&lat=...&lon=...&radius_meters=...&k=...
func (h *SearchHandler) SearchPersonalized(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		respondWithError(w, http.StatusBadRequest, "user_id parameter must be a positive integer")
		return
	}

	geoFilter, err := parseOptionalGeoFilter(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	k := parseLimit(r, 0)

	result, err := h.search.SearchPersonalized(r.Context(), userID, query, geoFilter, k)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// defaultRadiusMeters applies when a geo filter omits radius_meters.
const defaultRadiusMeters = 5000

// parseOptionalGeoFilter reads lat/lon/radius_meters. Both coordinates absent
// means no filter; one without the other is an error. radius_meters is
// optional and defaults to 5000.
func parseOptionalGeoFilter(r *http.Request) (*repositories.GeoFilter, error) {
	latStr := strings.TrimSpace(r.URL.Query().Get("lat"))
	lonStr := strings.TrimSpace(r.URL.Query().Get("lon"))
	radiusStr := strings.TrimSpace(r.URL.Query().Get("radius_meters"))

	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, errors.NewValidationError("lat and lon must be provided together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.NewValidationError("invalid lat parameter")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, errors.NewValidationError("invalid lon parameter")
	}
	radius := float64(defaultRadiusMeters)
	if radiusStr != "" {
		radius, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			return nil, errors.NewValidationError("invalid radius_meters parameter")
		}
	}

	return &repositories.GeoFilter{Latitude: lat, Longitude: lon, RadiusMeters: radius}, nil
}

func parseLimit(r *http.Request, fallback int) int {
	kStr := strings.TrimSpace(r.URL.Query().Get("k"))
	if kStr == "" {
		return fallback
	}
	k, err := strconv.Atoi(kStr)
	if err != nil || k < 0 {
		return fallback
	}
	return k
}
