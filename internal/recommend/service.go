package recommend

import (
	"context"
	"errors"
	"fmt"

	"jobboard/geo-service/internal/model"
	"jobboard/geo-service/internal/proximity"
	"jobboard/geo-service/internal/store"
)

// ErrUserNotFound is returned when the subject profile does not exist.
var ErrUserNotFound = errors.New("user not found")

// Service loads the subject and the active job pool from the store and
// ranks them. It has no dependency on net/http.
type Service struct {
	store store.Store
	rec   *Recommender
}

// NewService returns a configured Service. A nil Recommender uses defaults.
func NewService(st store.Store, rec *Recommender) *Service {
	if rec == nil {
		rec = New()
	}
	return &Service{store: st, rec: rec}
}

// RecommendForUser returns up to topK active jobs ranked for userID.
func (s *Service) RecommendForUser(ctx context.Context, userID string, topK int) ([]model.Recommendation, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	pool, err := s.activeJobs(ctx)
	if err != nil {
		return nil, err
	}
	return s.rec.Recommend(ctx, pool, *user, topK)
}

// TrainingExamples labels the active pool for userID: jobs listed in
// engaged are positives, the rest negatives.
func (s *Service) TrainingExamples(ctx context.Context, userID string, engaged []string) ([]Example, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	pool, err := s.activeJobs(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(engaged))
	for _, id := range engaged {
		set[id] = true
	}
	return s.rec.Examples(ctx, pool, *user, set)
}

func (s *Service) user(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Service) activeJobs(ctx context.Context) ([]model.Job, error) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	pool := jobs[:0]
	for _, j := range jobs {
		if proximity.IsActive(j.Status) {
			pool = append(pool, j)
		}
	}
	return pool, nil
}
