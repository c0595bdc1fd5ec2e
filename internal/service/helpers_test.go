package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"training-coach/internal/store"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func dayOffset(n int) time.Time {
	return monday.AddDate(0, 0, n)
}

type services struct {
	store    *store.Store
	metrics  *Metrics
	load     *LoadService
	wellness *WellnessService
	coaching *CoachingService
}

func newServices(t *testing.T, gen TextGenerator) *services {
	t.Helper()
	st := store.NewTestStore(t)
	m := NewTestMetrics()
	log := zerolog.Nop()
	load := NewLoadService(st, log, m)
	return &services{
		store:    st,
		metrics:  m,
		load:     load,
		wellness: NewWellnessService(st, log, m),
		coaching: NewCoachingService(st, load, gen, log, m),
	}
}

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

var errCoachDown = errors.New("coach down")
