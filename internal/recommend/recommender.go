// Package recommend ranks jobs for a user by text and profile similarity.
//
// Each call builds its own term model over the pool plus the subject, turns
// every job into a fixed-width vector (TF-IDF text weights followed by
// recency, location, skills and interests signals) and scores it against
// the subject's vector. Nothing is cached between calls.
package recommend

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"jobboard/geo-service/internal/model"
)

// DefaultTopK is used when the caller asks for a non-positive count.
const DefaultTopK = 6

// Recommender scores job pools against a user profile.
type Recommender struct {
	scorer  Scorer
	now     func() time.Time
	workers int
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithScorer replaces the default SimilarityOnly scorer.
func WithScorer(s Scorer) Option { return func(r *Recommender) { r.scorer = s } }

// WithClock fixes the time used for recency.
func WithClock(now func() time.Time) Option { return func(r *Recommender) { r.now = now } }

// WithWorkers bounds the extraction fan-out.
func WithWorkers(n int) Option { return func(r *Recommender) { r.workers = n } }

// New returns a Recommender.
func New(opts ...Option) *Recommender {
	r := &Recommender{
		scorer:  SimilarityOnly{},
		now:     time.Now,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	return r
}

// Open returns a Recommender for the deployment: similarity only when
// modelPath is empty, otherwise blended with the logistic model stored there.
func Open(modelPath string, opts ...Option) (*Recommender, error) {
	if modelPath == "" {
		return New(opts...), nil
	}
	m, err := LoadLogisticModel(modelPath)
	if err != nil {
		return nil, err
	}
	return New(append([]Option{WithScorer(BlendedWithModel{Model: m})}, opts...)...), nil
}

// scored is one job's outcome; ok is false for skipped jobs.
type scored struct {
	rec    model.Recommendation
	vector []float64
	ok     bool
}

// Recommend returns the topK best jobs of pool for subject, best first.
// Malformed jobs are skipped. The only error is context cancellation.
func (r *Recommender) Recommend(ctx context.Context, pool []model.Job, subject model.User, topK int) ([]model.Recommendation, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	results, _, err := r.score(ctx, pool, &subject)
	if err != nil {
		return nil, err
	}

	out := make([]model.Recommendation, 0, len(results))
	for _, s := range results {
		if s.ok {
			out = append(out, s.rec)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Job.ID < out[b].Job.ID
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

// Examples builds training pairs for a Model from pool: jobs whose id is in
// engaged are labelled 1, the rest 0.
func (r *Recommender) Examples(ctx context.Context, pool []model.Job, subject model.User, engaged map[string]bool) ([]Example, error) {
	results, subjectVec, err := r.score(ctx, pool, &subject)
	if err != nil {
		return nil, err
	}
	out := make([]Example, 0, len(results))
	for _, s := range results {
		if !s.ok {
			continue
		}
		label := 0.0
		if engaged[s.rec.Job.ID] {
			label = 1
		}
		out = append(out, Example{Features: Interaction(s.vector, subjectVec), Label: label})
	}
	return out, nil
}

// score tokenises, vectorises and scores every job of pool. results is
// index-aligned with pool.
func (r *Recommender) score(ctx context.Context, pool []model.Job, subject *model.User) ([]scored, []float64, error) {
	now := r.now()

	docs := make([][]string, len(pool))
	valid := make([]bool, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range pool {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			j := &pool[i]
			if err := checkJob(j); err != nil {
				slog.Warn("skipping job in recommendation pool", "index", i, "id", j.ID, "err", err)
				return nil
			}
			docs[i] = terms(jobText(j))
			valid[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	subjectDoc := terms(subjectText(subject))
	corpus := make([][]string, 0, len(pool)+1)
	for i := range docs {
		if valid[i] {
			corpus = append(corpus, docs[i])
		}
	}
	corpus = append(corpus, subjectDoc)
	tm := newTermModel(corpus)
	subjectVec := append(tm.vector(subjectDoc), subjectAux.slice()...)

	results := make([]scored, len(pool))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range pool {
		if !valid[i] {
			continue
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			j := &pool[i]
			a := auxFeatures(j, subject, now)
			vec := append(tm.vector(docs[i]), a.slice()...)
			sc := r.scorer.Score(vec, subjectVec)
			results[i] = scored{
				rec: model.Recommendation{
					Job:     *j,
					Score:   sc,
					Reasons: explain(j, subject, a, sc, now),
				},
				vector: vec,
				ok:     true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, subjectVec, nil
}

var errMissingID = errors.New("job has no id")

func checkJob(j *model.Job) error {
	if strings.TrimSpace(j.ID) == "" {
		return errMissingID
	}
	return nil
}

func jobText(j *model.Job) string {
	return strings.Join([]string{j.Title, j.Description, j.Requirements, j.LocationText()}, " ")
}

func subjectText(u *model.User) string {
	parts := make([]string, 0, 1+len(u.Skills)+len(u.Interests))
	parts = append(parts, u.Bio)
	parts = append(parts, u.Skills...)
	parts = append(parts, u.Interests...)
	return strings.Join(parts, " ")
}
