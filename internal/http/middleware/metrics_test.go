package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type recordingObserver struct {
	route  string
	method string
	status string
	calls  int
}

func (r *recordingObserver) ObserveRequest(route, method, status string, _ float64) {
	r.route, r.method, r.status = route, method, status
	r.calls++
}

func TestMetricsObservesRoutePattern(t *testing.T) {
	obs := &recordingObserver{}

	r := chi.NewRouter()
	r.Use(Metrics(obs))
	r.Get("/citas/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/citas/42", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if obs.calls != 1 {
		t.Fatalf("expected 1 observation, got %d", obs.calls)
	}
	if obs.route != "/citas/{id}" {
		t.Errorf("expected route pattern, got %q", obs.route)
	}
	if obs.method != http.MethodGet || obs.status != "200" {
		t.Errorf("unexpected labels: method=%q status=%q", obs.method, obs.status)
	}
}

func TestMetricsNilObserverPassesThrough(t *testing.T) {
	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected passthrough, got %d", rr.Code)
	}
}
