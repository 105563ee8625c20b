package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEvaluationsCounter(t *testing.T) {
	c := Evaluations.WithLabelValues("grid", "test")
	before := testutil.ToFloat64(c)
	c.Add(3)

	if got := testutil.ToFloat64(c) - before; got != 3 {
		t.Errorf("Expected counter delta 3, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	Runs.WithLabelValues("grid", "ok").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}

	if !strings.Contains(string(body), "lightmix_runs_total") {
		t.Error("Expected lightmix_runs_total in metrics output")
	}
}
