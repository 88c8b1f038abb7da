package recommend_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobboard/geo-service/internal/model"
	"jobboard/geo-service/internal/recommend"
	"jobboard/geo-service/internal/store"
)

var now = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func daysAgo(d int) time.Time { return now.Add(-time.Duration(d) * 24 * time.Hour) }

func subject() model.User {
	return model.User{
		ID:        "u1",
		Type:      "candidato",
		Status:    "ativo",
		Skills:    []string{"Go", "Docker", "Kubernetes"},
		Interests: []string{"backend"},
		Bio:       "Desenvolvedor backend com experiência em sistemas distribuídos e microsserviços",
		Address:   "São Paulo",
	}
}

func pool() []model.Job {
	return []model.Job{
		{ID: "vendedor", Title: "Vendedor Externo", Description: "Atendimento a clientes e prospecção", Requirements: "CNH categoria B", Location: "Recife", CreatedAt: daysAgo(40)},
		{ID: "designer", Title: "Designer Gráfico", Description: "Criação de peças publicitárias", Requirements: "Photoshop, Illustrator", Location: "Curitiba", CreatedAt: daysAgo(45)},
		{ID: "backend", Title: "Desenvolvedor Backend", Description: "Microsserviços e sistemas distribuídos", Requirements: "Go, Docker e Kubernetes", Location: "São Paulo, SP", CreatedAt: now},
		{ID: "contador", Title: "Contador Pleno", Description: "Rotinas fiscais e contábeis", Requirements: "CRC ativo", Location: "Natal", CreatedAt: daysAgo(60)},
		{ID: "motorista", Title: "Motorista Entregador", Description: "Entregas na região metropolitana", Requirements: "CNH categoria D", Location: "Manaus", CreatedAt: daysAgo(35)},
	}
}

func TestRecommend_SkillsAndRecencyRankFirst(t *testing.T) {
	r := recommend.New(recommend.WithClock(clock))
	got, err := r.Recommend(context.Background(), pool(), subject(), 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d results, want 5", len(got))
	}
	if got[0].Job.ID != "backend" {
		t.Fatalf("top result = %s, want backend", got[0].Job.ID)
	}
	var skills bool
	for _, reason := range got[0].Reasons {
		if strings.HasPrefix(reason, "Matches your skills") {
			skills = true
			if !strings.Contains(reason, "Kubernetes") {
				t.Errorf("skills reason %q does not list Kubernetes", reason)
			}
		}
	}
	if !skills {
		t.Errorf("top result reasons %v lack a skills reason", got[0].Reasons)
	}
}

func TestRecommend_ScoreBoundsAndReasons(t *testing.T) {
	r := recommend.New(recommend.WithClock(clock))
	got, err := r.Recommend(context.Background(), pool(), subject(), 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for i, rec := range got {
		if rec.Score < 0 || rec.Score > 100 {
			t.Errorf("%s score %v outside [0,100]", rec.Job.ID, rec.Score)
		}
		if len(rec.Reasons) == 0 || len(rec.Reasons) > 5 {
			t.Errorf("%s has %d reasons", rec.Job.ID, len(rec.Reasons))
		}
		if i > 0 && got[i-1].Score < rec.Score {
			t.Errorf("results not sorted by score at %d", i)
		}
	}
}

func TestRecommend_TopKIsBestOfFullPool(t *testing.T) {
	r := recommend.New(recommend.WithClock(clock), recommend.WithWorkers(2))
	ctx := context.Background()

	full, err := r.Recommend(ctx, pool(), subject(), len(pool()))
	if err != nil {
		t.Fatalf("Recommend full: %v", err)
	}
	top, err := r.Recommend(ctx, pool(), subject(), 3)
	if err != nil {
		t.Fatalf("Recommend top3: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("got %d results, want 3", len(top))
	}
	for i := range top {
		if top[i].Job.ID != full[i].Job.ID || top[i].Score != full[i].Score {
			t.Errorf("rank %d: top-k %s(%v), full %s(%v)", i, top[i].Job.ID, top[i].Score, full[i].Job.ID, full[i].Score)
		}
	}
}

func TestRecommend_DefaultTopK(t *testing.T) {
	jobs := pool()
	for i := 0; i < 5; i++ {
		j := jobs[i]
		j.ID += "-copy"
		jobs = append(jobs, j)
	}
	got, _ := recommend.New(recommend.WithClock(clock)).Recommend(context.Background(), jobs, subject(), 0)
	if len(got) != recommend.DefaultTopK {
		t.Errorf("got %d results, want %d", len(got), recommend.DefaultTopK)
	}
}

func TestRecommend_SkipsMalformedJobs(t *testing.T) {
	jobs := append(pool(), model.Job{Title: "Sem identificador", Requirements: "Go Docker Kubernetes", CreatedAt: now})
	got, err := recommend.New(recommend.WithClock(clock)).Recommend(context.Background(), jobs, subject(), 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("got %d results, want the 5 well-formed jobs", len(got))
	}
}

func TestRecommend_EmptyPoolAndProfile(t *testing.T) {
	r := recommend.New(recommend.WithClock(clock))
	got, err := r.Recommend(context.Background(), nil, subject(), 3)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("empty pool: got %#v, %v", got, err)
	}

	got, err = r.Recommend(context.Background(), pool(), model.User{ID: "blank"}, 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, rec := range got {
		if len(rec.Reasons) == 0 {
			t.Errorf("%s has no reasons", rec.Job.ID)
		}
	}
}

func TestRecommend_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := recommend.New().Recommend(ctx, pool(), subject(), 3); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCosine_ZeroMagnitude(t *testing.T) {
	if got := recommend.Cosine([]float64{0, 0}, []float64{1, 2}); got != 0 {
		t.Errorf("Cosine with zero vector = %v, want 0", got)
	}
	if got := recommend.Cosine([]float64{1, 0}, []float64{1, 0}); got != 1 {
		t.Errorf("Cosine of identical vectors = %v, want 1", got)
	}
}

// ── Service ────────────────────────────────────────────────────────────────

func TestService_RecommendForUser(t *testing.T) {
	jobs := pool()
	jobs[0].Status = "fechada"
	for i := 1; i < len(jobs); i++ {
		jobs[i].Status = "aberta"
	}
	st := store.NewMemory(jobs, []model.User{subject()})
	svc := recommend.NewService(st, recommend.New(recommend.WithClock(clock)))

	got, err := svc.RecommendForUser(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("got %d results, want 4 active jobs", len(got))
	}
	for _, rec := range got {
		if rec.Job.ID == "vendedor" {
			t.Error("closed job must not be recommended")
		}
	}

	if _, err := svc.RecommendForUser(context.Background(), "nobody", 3); !errors.Is(err, recommend.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestService_TrainingExamples(t *testing.T) {
	jobs := pool()
	jobs[0].Status = "fechada"
	for i := 1; i < len(jobs); i++ {
		jobs[i].Status = "aberta"
	}
	st := store.NewMemory(jobs, []model.User{subject()})
	svc := recommend.NewService(st, recommend.New(recommend.WithClock(clock)))
	ctx := context.Background()

	examples, err := svc.TrainingExamples(ctx, "u1", []string{"backend", "vendedor"})
	if err != nil {
		t.Fatalf("TrainingExamples: %v", err)
	}
	if len(examples) != 4 {
		t.Fatalf("got %d examples, want 4 active jobs", len(examples))
	}
	positives := 0
	for _, ex := range examples {
		if len(ex.Features) != recommend.Dims {
			t.Errorf("example has %d features, want %d", len(ex.Features), recommend.Dims)
		}
		positives += int(ex.Label)
	}
	if positives != 1 {
		t.Errorf("got %d positives, want 1 (closed jobs are not labelled)", positives)
	}

	if _, err := svc.TrainingExamples(ctx, "", nil); !errors.Is(err, recommend.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
