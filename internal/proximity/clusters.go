package proximity

import (
	"context"
	"fmt"
	"math"
	"sort"

	"jobboard/geo-service/internal/geo"
	"jobboard/geo-service/internal/model"
)

// MaxZoom is the deepest zoom level accepted by Clusters.
const MaxZoom = 20

// Clusters returns map markers for every active job and candidate whose
// resolved coordinate falls inside bounds. Markers are grouped on a grid
// whose cell size halves with each zoom level; the result is flat, ordered
// by cluster key, then kind, then id.
func (s *Service) Clusters(ctx context.Context, bounds geo.Bounds, zoom int) ([]model.MapMarker, error) {
	if !bounds.Valid() {
		return nil, &ValidationError{Msg: "bounds are outside the valid coordinate range"}
	}
	if zoom < 0 || zoom > MaxZoom {
		return nil, &ValidationError{Msg: fmt.Sprintf("zoom must be between 0 and %d", MaxZoom)}
	}

	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	cell := cellSize(zoom)
	markers := make([]model.MapMarker, 0)

	for i := range jobs {
		j := &jobs[i]
		if !IsActive(j.Status) {
			continue
		}
		c, ok := s.resolve(j.Coordinates, j.LocationText())
		if !ok || !bounds.Contains(c) {
			continue
		}
		markers = append(markers, model.MapMarker{
			Kind:        model.KindJob,
			ID:          j.ID,
			Title:       j.Title,
			Subtitle:    j.Company,
			Category:    j.Category,
			Coordinates: c,
			Cluster:     clusterKey(c, cell),
		})
	}

	for i := range users {
		u := &users[i]
		if !IsCandidate(u) {
			continue
		}
		c, ok := s.resolve(u.Coordinates, u.LocationText())
		if !ok || !bounds.Contains(c) {
			continue
		}
		markers = append(markers, model.MapMarker{
			Kind:        model.KindCandidate,
			ID:          u.ID,
			Title:       u.Name,
			Subtitle:    u.Experience,
			Coordinates: c,
			Cluster:     clusterKey(c, cell),
		})
	}

	sizes := make(map[string]int)
	for _, m := range markers {
		sizes[m.Cluster]++
	}
	for i := range markers {
		markers[i].ClusterSize = sizes[markers[i].Cluster]
	}

	sort.Slice(markers, func(a, b int) bool {
		ma, mb := markers[a], markers[b]
		if ma.Cluster != mb.Cluster {
			return ma.Cluster < mb.Cluster
		}
		if ma.Kind != mb.Kind {
			return ma.Kind < mb.Kind
		}
		return ma.ID < mb.ID
	})
	return markers, nil
}

// cellSize is the grid step in degrees: 90° at zoom 0, halved per level.
func cellSize(zoom int) float64 {
	return 90 / math.Pow(2, float64(zoom))
}

func clusterKey(c geo.Coordinate, cell float64) string {
	row := int(math.Floor((c.Latitude + 90) / cell))
	col := int(math.Floor((c.Longitude + 180) / cell))
	return fmt.Sprintf("%d:%d", row, col)
}
