package recommend_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"jobboard/geo-service/internal/recommend"
)

type fixedModel struct {
	p   float64
	err error
}

func (m fixedModel) Predict([]float64) (float64, error) { return m.p, m.err }

func TestBlendedWithModel(t *testing.T) {
	job := []float64{1, 0, 1}
	subj := []float64{1, 1, 1}
	base := recommend.SimilarityOnly{}.Score(job, subj)

	cases := []struct {
		name  string
		model recommend.Model
		want  float64
	}{
		{"nil model", nil, base},
		{"untrained", recommend.NewLogisticModel(), base},
		{"model error", fixedModel{err: errors.New("boom")}, base},
		{"blend", fixedModel{p: 1}, 0.6*base + 40},
		{"blend zero", fixedModel{p: 0}, 0.6 * base},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := recommend.BlendedWithModel{Model: c.model}.Score(job, subj)
			if math.Abs(got-c.want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got, c.want)
			}
		})
	}
}

func TestLogisticModel_Train(t *testing.T) {
	m := recommend.NewLogisticModel()
	if _, err := m.Predict([]float64{1}); !errors.Is(err, recommend.ErrUntrained) {
		t.Fatalf("expected ErrUntrained, got %v", err)
	}

	examples := []recommend.Example{
		{Features: []float64{1, 0}, Label: 1},
		{Features: []float64{0.9, 0.1}, Label: 1},
		{Features: []float64{0, 1}, Label: 0},
		{Features: []float64{0.1, 0.9}, Label: 0},
	}
	if err := m.Train(examples, 500, 0.5); err != nil {
		t.Fatalf("Train: %v", err)
	}
	hi, _ := m.Predict([]float64{1, 0})
	lo, _ := m.Predict([]float64{0, 1})
	if hi <= 0.5 || lo >= 0.5 {
		t.Errorf("predictions hi=%v lo=%v not separated", hi, lo)
	}
	if _, err := m.Predict([]float64{1}); err == nil {
		t.Error("expected width mismatch error")
	}
}

func TestLogisticModel_TrainRejectsBadInput(t *testing.T) {
	m := recommend.NewLogisticModel()
	if err := m.Train(nil, 10, 0.1); err == nil {
		t.Error("expected error for no examples")
	}
	bad := []recommend.Example{{Features: []float64{1, 2}}, {Features: []float64{1}}}
	if err := m.Train(bad, 10, 0.1); err == nil {
		t.Error("expected error for ragged features")
	}
}

func TestRecommend_WithTrainedModel(t *testing.T) {
	r := recommend.New(recommend.WithClock(clock))
	ctx := context.Background()

	examples, err := r.Examples(ctx, pool(), subject(), map[string]bool{"backend": true})
	if err != nil {
		t.Fatalf("Examples: %v", err)
	}
	if len(examples) != 5 || len(examples[0].Features) != recommend.Dims {
		t.Fatalf("unexpected examples shape: %d x %d", len(examples), len(examples[0].Features))
	}

	m := recommend.NewLogisticModel()
	if err := m.Train(examples, 200, 1); err != nil {
		t.Fatalf("Train: %v", err)
	}
	blended := recommend.New(recommend.WithClock(clock), recommend.WithScorer(recommend.BlendedWithModel{Model: m}))
	got, err := blended.Recommend(ctx, pool(), subject(), 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got[0].Job.ID != "backend" {
		t.Errorf("top result = %s, want backend", got[0].Job.ID)
	}
	for _, rec := range got {
		if rec.Score < 0 || rec.Score > 100 {
			t.Errorf("score %v out of range", rec.Score)
		}
	}
}

func trainedModel(t *testing.T) *recommend.LogisticModel {
	t.Helper()
	examples, err := recommend.New(recommend.WithClock(clock)).
		Examples(context.Background(), pool(), subject(), map[string]bool{"backend": true})
	if err != nil {
		t.Fatalf("Examples: %v", err)
	}
	m := recommend.NewLogisticModel()
	if err := m.Train(examples, 200, 1); err != nil {
		t.Fatalf("Train: %v", err)
	}
	return m
}

func TestLogisticModel_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := recommend.NewLogisticModel().SaveFile(path); !errors.Is(err, recommend.ErrUntrained) {
		t.Fatalf("SaveFile untrained: expected ErrUntrained, got %v", err)
	}

	m := trainedModel(t)
	if err := m.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	loaded, err := recommend.LoadLogisticModel(path)
	if err != nil {
		t.Fatalf("LoadLogisticModel: %v", err)
	}

	features := make([]float64, recommend.Dims)
	for i := range features {
		features[i] = 0.5
	}
	want, _ := m.Predict(features)
	got, err := loaded.Predict(features)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("loaded model predicts %v, want %v", got, want)
	}
}

func TestLoadLogisticModel_Rejects(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"wrong width", `{"weights": [0.1, 0.2], "bias": 0}`},
		{"not json", `weights=1`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(dir, c.name+".json")
			if err := os.WriteFile(path, []byte(c.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := recommend.LoadLogisticModel(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if _, err := recommend.LoadLogisticModel(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	plain, err := recommend.Open("", recommend.WithClock(clock))
	if err != nil {
		t.Fatalf("Open without model: %v", err)
	}
	want, _ := recommend.New(recommend.WithClock(clock)).Recommend(ctx, pool(), subject(), 5)
	got, err := plain.Recommend(ctx, pool(), subject(), 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for i := range want {
		if got[i].Job.ID != want[i].Job.ID || got[i].Score != want[i].Score {
			t.Errorf("rank %d = %s/%v, want %s/%v", i, got[i].Job.ID, got[i].Score, want[i].Job.ID, want[i].Score)
		}
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := trainedModel(t).SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	blended, err := recommend.Open(path, recommend.WithClock(clock))
	if err != nil {
		t.Fatalf("Open with model: %v", err)
	}
	recs, err := blended.Recommend(ctx, pool(), subject(), 1)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if recs[0].Job.ID != "backend" {
		t.Errorf("top result = %s, want backend", recs[0].Job.ID)
	}

	if _, err := recommend.Open(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing model file")
	}
}
