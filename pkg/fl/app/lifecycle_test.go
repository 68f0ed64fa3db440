package app

import (
	"context"
	"errors"
	"testing"

	"github.com/foliohq/folio/pkg/fl/logger"
	"github.com/go-chi/chi/v5"
)

type fakeComponent struct {
	name     string
	startErr error
	trace    *[]string
}

func (c *fakeComponent) Start(ctx context.Context) error {
	*c.trace = append(*c.trace, "start:"+c.name)
	return c.startErr
}

func (c *fakeComponent) Stop(ctx context.Context) error {
	*c.trace = append(*c.trace, "stop:"+c.name)
	return nil
}

type fakeRegistrar struct {
	registered bool
}

func (r *fakeRegistrar) RegisterRoutes(chi.Router) {
	r.registered = true
}

func TestSetupDiscoversCapabilities(t *testing.T) {
	var trace []string
	comp := &fakeComponent{name: "a", trace: &trace}
	reg := &fakeRegistrar{}

	starts, stops, registrars := Setup(context.Background(), chi.NewRouter(), comp, reg)

	if len(starts) != 1 || len(stops) != 1 {
		t.Fatalf("Expected 1 start and 1 stop hook, got %d and %d", len(starts), len(stops))
	}
	if starts[0].Name == "" {
		t.Error("Expected hooks to carry the component name")
	}
	if len(registrars) != 1 {
		t.Fatalf("Expected 1 registrar, got %d", len(registrars))
	}
}

func TestStartRollsBackOnFailure(t *testing.T) {
	var trace []string
	a := &fakeComponent{name: "a", trace: &trace}
	b := &fakeComponent{name: "b", startErr: errors.New("boom"), trace: &trace}
	c := &fakeComponent{name: "c", trace: &trace}

	router := chi.NewRouter()
	starts, stops, registrars := Setup(context.Background(), router, a, b, c)

	err := Start(context.Background(), logger.NewNoop(), starts, stops, registrars, router)
	if err == nil {
		t.Fatal("Expected start to fail")
	}

	want := []string{"start:a", "start:b", "stop:a"}
	if len(trace) != len(want) {
		t.Fatalf("Expected trace %v, got %v", want, trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("Trace step %d: expected %s, got %s", i, want[i], trace[i])
		}
	}
}

func TestStopReversesOrder(t *testing.T) {
	var trace []string
	a := &fakeComponent{name: "a", trace: &trace}
	b := &fakeComponent{name: "b", trace: &trace}

	router := chi.NewRouter()
	starts, stops, registrars := Setup(context.Background(), router, a, b)

	if err := Start(context.Background(), logger.NewNoop(), starts, stops, registrars, router); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	Stop(context.Background(), logger.NewNoop(), stops)

	want := []string{"start:a", "start:b", "stop:b", "stop:a"}
	if len(trace) != len(want) {
		t.Fatalf("Expected trace %v, got %v", want, trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("Trace step %d: expected %s, got %s", i, want[i], trace[i])
		}
	}
}
