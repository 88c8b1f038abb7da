package proximity

import (
	"context"
	"fmt"
	"log/slog"
)

// BackfillReport counts what one backfill pass did.
type BackfillReport struct {
	JobsUpdated       int `json:"jobsUpdated"`
	CandidatesUpdated int `json:"candidatesUpdated"`
	Unresolved        int `json:"unresolved"`
	Failed            int `json:"failed"`
}

// Backfill persists geocoded coordinates for active entities that have
// location text but no explicit coordinate. Text that only resolves to the
// default coordinate is counted as unresolved and left untouched. Each write
// goes through the regular update path, so a failure on one entity is
// logged and the pass continues.
func (s *Service) Backfill(ctx context.Context) (BackfillReport, error) {
	var rep BackfillReport

	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return rep, fmt.Errorf("list jobs: %w", err)
	}
	for i := range jobs {
		j := &jobs[i]
		if !IsActive(j.Status) {
			continue
		}
		if _, ok := j.Coordinates(); ok || j.LocationText() == "" {
			continue
		}
		res := s.geocoder.Geocode(j.LocationText())
		if !res.Matched {
			rep.Unresolved++
			continue
		}
		if _, err := s.UpdateJobLocation(ctx, j.ID, res.Coordinate.Latitude, res.Coordinate.Longitude); err != nil {
			slog.Warn("backfill job location failed", "id", j.ID, "err", err)
			rep.Failed++
			continue
		}
		rep.JobsUpdated++
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return rep, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		u := &users[i]
		if !IsCandidate(u) {
			continue
		}
		if _, ok := u.Coordinates(); ok || u.LocationText() == "" {
			continue
		}
		res := s.geocoder.Geocode(u.LocationText())
		if !res.Matched {
			rep.Unresolved++
			continue
		}
		if _, err := s.UpdateCandidateLocation(ctx, u.ID, res.Coordinate.Latitude, res.Coordinate.Longitude); err != nil {
			slog.Warn("backfill candidate location failed", "id", u.ID, "err", err)
			rep.Failed++
			continue
		}
		rep.CandidatesUpdated++
	}

	return rep, nil
}
