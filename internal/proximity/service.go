// Package proximity implements distance-based discovery of jobs and
// candidates on top of the entity store.
//
// Every search reads one snapshot of the collection, keeps active entities
// that pass the caller's filters, resolves a coordinate for each (explicit
// latitude/longitude first, geocoded location text second, dropped
// otherwise) and returns the ones inside the radius ordered by distance.
package proximity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"jobboard/geo-service/internal/events"
	"jobboard/geo-service/internal/geo"
	"jobboard/geo-service/internal/model"
	"jobboard/geo-service/internal/store"
)

// Service encapsulates proximity search and the location write path.
// It has no dependency on net/http.
type Service struct {
	store     store.Store
	geocoder  *geo.Geocoder
	publisher events.Publisher
}

// NewService returns a configured Service. A nil publisher discards events.
func NewService(st store.Store, gc *geo.Geocoder, pub events.Publisher) *Service {
	if gc == nil {
		gc = geo.NewGeocoder()
	}
	if pub == nil {
		pub = events.Discard{}
	}
	return &Service{store: st, geocoder: gc, publisher: pub}
}

// ─── Search ──────────────────────────────────────────────────────────────────

// NearbyJobs returns active jobs within maxKm of origin, nearest first.
func (s *Service) NearbyJobs(ctx context.Context, origin geo.Coordinate, maxKm float64, f JobFilter) ([]model.NearbyJob, error) {
	if err := validateQuery(origin, maxKm); err != nil {
		return nil, err
	}
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	type hit struct {
		res model.NearbyJob
		raw float64
	}
	hits := make([]hit, 0)
	for i := range jobs {
		j := &jobs[i]
		if !IsActive(j.Status) || !f.Match(j) {
			continue
		}
		c, ok := s.resolve(j.Coordinates, j.LocationText())
		if !ok {
			continue
		}
		d := geo.DistanceKm(origin, c)
		if d > maxKm {
			continue
		}
		hits = append(hits, hit{
			res: model.NearbyJob{Job: *j, DistanceKm: geo.RoundKm(d), Coordinates: c},
			raw: d,
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].raw != hits[b].raw {
			return hits[a].raw < hits[b].raw
		}
		return hits[a].res.Job.ID < hits[b].res.Job.ID
	})

	out := make([]model.NearbyJob, len(hits))
	for i, h := range hits {
		out[i] = h.res
	}
	return out, nil
}

// NearbyCandidates returns active candidate profiles within maxKm of
// origin, nearest first.
func (s *Service) NearbyCandidates(ctx context.Context, origin geo.Coordinate, maxKm float64, f CandidateFilter) ([]model.NearbyCandidate, error) {
	if err := validateQuery(origin, maxKm); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	type hit struct {
		res model.NearbyCandidate
		raw float64
	}
	hits := make([]hit, 0)
	for i := range users {
		u := &users[i]
		if !IsCandidate(u) || !f.Match(u) {
			continue
		}
		c, ok := s.resolve(u.Coordinates, u.LocationText())
		if !ok {
			continue
		}
		d := geo.DistanceKm(origin, c)
		if d > maxKm {
			continue
		}
		hits = append(hits, hit{
			res: model.NearbyCandidate{Candidate: *u, DistanceKm: geo.RoundKm(d), Coordinates: c},
			raw: d,
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].raw != hits[b].raw {
			return hits[a].raw < hits[b].raw
		}
		return hits[a].res.Candidate.ID < hits[b].res.Candidate.ID
	})

	out := make([]model.NearbyCandidate, len(hits))
	for i, h := range hits {
		out[i] = h.res
	}
	return out, nil
}

// resolve picks the explicit coordinate when present, else geocodes text.
// Entities with neither are reported as unresolvable.
func (s *Service) resolve(explicit func() (geo.Coordinate, bool), text string) (geo.Coordinate, bool) {
	if c, ok := explicit(); ok {
		return c, true
	}
	if text == "" {
		return geo.Coordinate{}, false
	}
	return s.geocoder.Geocode(text).Coordinate, true
}

func validateQuery(origin geo.Coordinate, maxKm float64) error {
	if !origin.Valid() {
		return &ValidationError{Msg: fmt.Sprintf("origin %v is outside the valid coordinate range", origin)}
	}
	if math.IsNaN(maxKm) || maxKm < 0 {
		return &ValidationError{Msg: "maxDistanceKm must be a non-negative number"}
	}
	return nil
}

// ─── Location write path ─────────────────────────────────────────────────────

// UpdateJobLocation stores lat/lng on job id and returns the updated job.
func (s *Service) UpdateJobLocation(ctx context.Context, id string, lat, lng float64) (*model.Job, error) {
	c, err := validateUpdate(id, lat, lng)
	if err != nil {
		return nil, err
	}
	j, err := s.store.UpdateJobLocation(ctx, id, c)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.publishLocation(ctx, model.KindJob, id, c)
	return j, nil
}

// UpdateCandidateLocation stores lat/lng on user id and returns the
// updated profile.
func (s *Service) UpdateCandidateLocation(ctx context.Context, id string, lat, lng float64) (*model.User, error) {
	c, err := validateUpdate(id, lat, lng)
	if err != nil {
		return nil, err
	}
	u, err := s.store.UpdateUserLocation(ctx, id, c)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.publishLocation(ctx, model.KindCandidate, id, c)
	return u, nil
}

func (s *Service) publishLocation(ctx context.Context, kind model.EntityKind, id string, c geo.Coordinate) {
	ev := events.NewLocationUpdated(string(kind), id, c.Latitude, c.Longitude)
	if err := s.publisher.Publish(ctx, events.ChannelLocationUpdated, ev); err != nil {
		slog.Warn("publish EVENT_LOCATION_UPDATED failed", "kind", kind, "id", id, "err", err)
	}
}

func validateUpdate(id string, lat, lng float64) (geo.Coordinate, error) {
	if id == "" {
		return geo.Coordinate{}, &ValidationError{Msg: "id is required"}
	}
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return geo.Coordinate{}, &ValidationError{Msg: "lat and lng must be finite numbers"}
	}
	c := geo.Coordinate{Latitude: lat, Longitude: lng}
	if !c.Valid() {
		return geo.Coordinate{}, &ValidationError{Msg: fmt.Sprintf("coordinate %v is outside the valid range", c)}
	}
	return c, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("update location: %w", err)
}
