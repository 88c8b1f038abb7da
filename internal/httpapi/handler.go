// Package httpapi implements the HTTP handlers for the geo service.
//
// Routes:
//
//	GET  /nearby-jobs             → active jobs within a radius, nearest first
//	GET  /nearby-candidates       → active candidates within a radius
//	GET  /job-recommendations     → ranked jobs for the x-user-id caller
//	POST /update-entity-location  → persist lat/lng on a job or candidate
//	GET  /map-clusters            → map markers inside a bounding box
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jobboard/geo-service/internal/geo"
	"jobboard/geo-service/internal/model"
	"jobboard/geo-service/internal/proximity"
	"jobboard/geo-service/internal/recommend"
)

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	prox          *proximity.Service
	rec           *recommend.Service
	defaultRadius float64
	defaultTopK   int
}

// NewHandler returns a configured Handler.
func NewHandler(prox *proximity.Service, rec *recommend.Service, defaultRadiusKm float64, defaultTopK int) *Handler {
	return &Handler{prox: prox, rec: rec, defaultRadius: defaultRadiusKm, defaultTopK: defaultTopK}
}

// RegisterRoutes mounts all geo-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/nearby-jobs", h.nearbyJobs)
	mux.HandleFunc("/nearby-candidates", h.nearbyCandidates)
	mux.HandleFunc("/job-recommendations", h.jobRecommendations)
	mux.HandleFunc("/update-entity-location", h.updateEntityLocation)
	mux.HandleFunc("/map-clusters", h.mapClusters)
}

// ─── Individual handlers ─────────────────────────────────────────────────────

func (h *Handler) nearbyJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	origin, radius, err := h.searchArea(q)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := proximity.JobFilter{
		Title:    q.Get("title"),
		Category: q.Get("category"),
		Type:     q.Get("type"),
	}

	jobs, err := h.prox.NearbyJobs(r.Context(), origin, radius, f)
	if err != nil {
		writeDomainError(w, "nearbyJobs", err)
		return
	}
	jsonOK(w, jobs)
}

func (h *Handler) nearbyCandidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	origin, radius, err := h.searchArea(q)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := proximity.CandidateFilter{
		Skills:     splitList(q["skills"]),
		Name:       q.Get("name"),
		Experience: q.Get("experience"),
	}
	if s := q.Get("minRating"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			jsonError(w, fmt.Sprintf("minRating must be a number, got %q", s), http.StatusBadRequest)
			return
		}
		f.MinRating = v
	}

	cands, err := h.prox.NearbyCandidates(r.Context(), origin, radius, f)
	if err != nil {
		writeDomainError(w, "nearbyCandidates", err)
		return
	}
	jsonOK(w, cands)
}

func (h *Handler) jobRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	topK := h.defaultTopK
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			jsonError(w, fmt.Sprintf("limit must be a positive integer, got %q", s), http.StatusBadRequest)
			return
		}
		topK = v
	}

	recs, err := h.rec.RecommendForUser(r.Context(), userID, topK)
	if err != nil {
		writeDomainError(w, "jobRecommendations", err)
		return
	}
	jsonOK(w, recs)
}

func (h *Handler) updateEntityLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		ID   string           `json:"id"`
		Lat  flexFloat        `json:"lat"`
		Lng  flexFloat        `json:"lng"`
		Kind model.EntityKind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !body.Lat.set || !body.Lng.set {
		jsonError(w, "lat and lng are required", http.StatusBadRequest)
		return
	}

	var (
		out any
		err error
	)
	switch body.Kind {
	case "", model.KindJob:
		out, err = h.prox.UpdateJobLocation(r.Context(), body.ID, body.Lat.v, body.Lng.v)
	case model.KindCandidate:
		out, err = h.prox.UpdateCandidateLocation(r.Context(), body.ID, body.Lat.v, body.Lng.v)
	default:
		jsonError(w, fmt.Sprintf("kind must be %q or %q", model.KindJob, model.KindCandidate), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeDomainError(w, "updateEntityLocation", err)
		return
	}
	jsonOK(w, out)
}

func (h *Handler) mapClusters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	var b geo.Bounds
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"minLat", &b.MinLat}, {"minLng", &b.MinLng},
		{"maxLat", &b.MaxLat}, {"maxLng", &b.MaxLng},
	} {
		v, err := requiredFloat(q.Get(p.name), p.name)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		*p.dst = v
	}
	zoom := 10
	if s := q.Get("zoom"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			jsonError(w, fmt.Sprintf("zoom must be an integer, got %q", s), http.StatusBadRequest)
			return
		}
		zoom = v
	}

	markers, err := h.prox.Clusters(r.Context(), b, zoom)
	if err != nil {
		writeDomainError(w, "mapClusters", err)
		return
	}
	jsonOK(w, markers)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// searchArea parses lat, lng and the optional maxDistanceKm.
func (h *Handler) searchArea(q map[string][]string) (geo.Coordinate, float64, error) {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	lat, err := requiredFloat(get("lat"), "lat")
	if err != nil {
		return geo.Coordinate{}, 0, err
	}
	lng, err := requiredFloat(get("lng"), "lng")
	if err != nil {
		return geo.Coordinate{}, 0, err
	}
	radius := h.defaultRadius
	if s := get("maxDistanceKm"); s != "" {
		if radius, err = strconv.ParseFloat(s, 64); err != nil {
			return geo.Coordinate{}, 0, fmt.Errorf("maxDistanceKm must be a number, got %q", s)
		}
	}
	return geo.Coordinate{Latitude: lat, Longitude: lng}, radius, nil
}

func requiredFloat(s, name string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, s)
	}
	return v, nil
}

// splitList accepts both repeated and comma-separated values.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// flexFloat decodes a JSON number or a numeric string.
type flexFloat struct {
	v   float64
	set bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.v, f.set = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected a number, got %s", b)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", s)
	}
	f.v, f.set = n, true
	return nil
}

// writeDomainError maps service errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	var ve *proximity.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, proximity.ErrNotFound), errors.Is(err, recommend.ErrUserNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("[geo-service] %s error: %v", op, err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
