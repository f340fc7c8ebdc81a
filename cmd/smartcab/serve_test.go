package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smartcab-rl/internal/buffer"
	"smartcab-rl/internal/trial"
)

func newTestMonitor(t *testing.T) *monitor {
	t.Helper()
	history, err := buffer.NewHistory(5000, "fifo")
	if err != nil {
		t.Fatal(err)
	}
	r := trial.NewRunner(4)
	r.Trials = 5
	r.Strategy.Name = "random"
	return newMonitor(*r, history)
}

func TestMonitorEndpoints(t *testing.T) {
	mon := newTestMonitor(t)
	mon.run(context.Background(), 2)
	srv := httptest.NewServer(mon.handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	var stats struct {
		Running   bool            `json:"running"`
		Latest    trial.Summary   `json:"latest"`
		Completed []trial.Summary `json:"completed"`
		LogLength int             `json:"log_length"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if stats.Running || len(stats.Completed) != 2 || stats.Latest.Trials != 5 {
		t.Fatalf("stats = %+v", stats)
	}
	penalties := stats.Completed[0].Penalties + stats.Completed[1].Penalties
	if stats.LogLength != penalties || penalties == 0 {
		t.Fatalf("log holds %d steps, simulations counted %d penalties", stats.LogLength, penalties)
	}

	resp, err = http.Get(srv.URL + "/report")
	if err != nil {
		t.Fatal(err)
	}
	var report buffer.PenaltyReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if report.Total != penalties {
		t.Fatalf("report total = %d, want %d", report.Total, penalties)
	}
	if len(report.Runs) != 2 {
		t.Fatalf("report has %d runs, want 2", len(report.Runs))
	}
	for i, run := range report.Runs {
		if run.RunID != stats.Completed[i].RunID || run.Penalties != stats.Completed[i].Penalties {
			t.Fatalf("run %d: report %+v, summary %+v", i, run, stats.Completed[i])
		}
	}

	resp, err = http.Get(srv.URL + "/penalties?batch_size=3")
	if err != nil {
		t.Fatal(err)
	}
	var batch buffer.DequeueResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(batch.Steps) != 3 || mon.history.Size() != penalties-3 {
		t.Fatalf("dequeued %d steps, %d left", len(batch.Steps), mon.history.Size())
	}
	for _, s := range batch.Steps {
		if !s.Penalty() {
			t.Fatalf("dequeued an unpenalised step: %+v", s)
		}
	}
}

func TestMonitorConfig(t *testing.T) {
	mon := newTestMonitor(t)
	srv := httptest.NewServer(mon.handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/config", "application/json", strings.NewReader(`{"log_policy":"freshness"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || mon.history.Policy() != "freshness" {
		t.Fatalf("status %d policy %q", resp.StatusCode, mon.history.Policy())
	}

	resp, err = http.Post(srv.URL+"/config", "application/json", strings.NewReader(`{"log_policy":"random"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad policy status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/penalties")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("empty log status = %d, want 204", resp.StatusCode)
	}
}

func TestParseValues(t *testing.T) {
	got, err := parseValues("1, 0.5,0.01")
	if err != nil || len(got) != 3 || got[1] != 0.5 {
		t.Fatalf("parseValues = %v, %v", got, err)
	}
	if got, err := parseValues(""); err != nil || got != nil {
		t.Fatalf("empty parseValues = %v, %v", got, err)
	}
	if _, err := parseValues("1,x"); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}

func TestRootHasCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "sweep", "serve"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %q not found: %v", name, err)
		}
	}
}
