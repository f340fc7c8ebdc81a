package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"smartcab-rl/internal/agent"
	"smartcab-rl/internal/buffer"
	"smartcab-rl/internal/trial"
)

const (
	defaultPort       = "9001"
	defaultLogCap     = 2048
	defaultLogPolicy  = "fifo"
	shutdownGraceTime = 5 * time.Second
)

// monitor holds what the HTTP handlers report while simulations run.
type monitor struct {
	mu        sync.Mutex
	runner    trial.Runner
	latest    trial.Summary
	completed []trial.Summary
	running   bool
	err       error

	history *buffer.History
}

func newMonitor(r trial.Runner, history *buffer.History) *monitor {
	r.History = history
	return &monitor{runner: r, history: history}
}

func (m *monitor) observe(s trial.Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = s
}

// run executes sims simulations and records their results.
func (m *monitor) run(ctx context.Context, sims int) {
	m.mu.Lock()
	m.running = true
	r := m.runner
	m.mu.Unlock()

	r.Observe = m.observe
	for i := 0; i < sims; i++ {
		sim := r
		sim.Seed = r.Seed + int64(i)
		s, err := sim.Run(ctx)

		m.mu.Lock()
		if err != nil {
			m.err = err
			m.running = false
			m.mu.Unlock()
			log.Printf("simulation %d stopped: %v", i, err)
			return
		}
		m.completed = append(m.completed, s)
		m.mu.Unlock()
		log.Printf("simulation %s finished: reached %d/%d, %d penalties", s.RunID, s.DestinationsReached, s.Trials, s.Penalties)
	}

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (m *monitor) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		m.mu.Lock()
		payload := map[string]any{
			"running":     m.running,
			"latest":      m.latest,
			"completed":   append([]trial.Summary(nil), m.completed...),
			"log_length":  m.history.Size(),
			"log_evicted": m.history.Evicted(),
		}
		if m.err != nil {
			payload["error"] = m.err.Error()
		}
		m.mu.Unlock()
		writeJSON(w, payload)
	})
	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			m.mu.Lock()
			payload := map[string]any{
				"trials":       m.runner.Trials,
				"seed":         m.runner.Seed,
				"encoder":      m.runner.Encoder,
				"strategy":     m.runner.Strategy,
				"world":        m.runner.World,
				"log_policy":   m.history.Policy(),
				"log_capacity": m.history.Capacity(),
			}
			m.mu.Unlock()
			writeJSON(w, payload)
		case http.MethodPost:
			var payload map[string]any
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if value, ok := payload["log_policy"]; ok {
				policyValue, ok := value.(string)
				if !ok {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				if err := m.history.SetPolicy(policyValue); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/penalties", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		batchSize := 0
		if value := r.URL.Query().Get("batch_size"); value != "" {
			if parsed, err := strconv.Atoi(value); err == nil {
				batchSize = parsed
			}
		}
		if batchSize <= 0 {
			batchSize = 1
		}

		response := buffer.DequeueResponse{Steps: make([]agent.Step, 0, batchSize)}
		for i := 0; i < batchSize; i++ {
			item, err := m.history.Dequeue()
			if err != nil {
				break
			}
			response.Steps = append(response.Steps, item.Step)
		}
		if len(response.Steps) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, response)
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, buffer.Report(m.history.Items()))
	})
	return mux
}

func newServeCmd() *cobra.Command {
	var (
		flags     simFlags
		port      string
		logCap    int
		logPolicy string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run simulations in the background and report progress over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := buffer.NewHistory(logCap, logPolicy)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mon := newMonitor(flags.runner(), history)
			go mon.run(ctx, flags.sims)

			server := &http.Server{
				Addr:              ":" + port,
				Handler:           mon.handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGraceTime)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			log.Printf("smartcab listening on :%s (strategy=%s sims=%d trials=%d)", port, flags.strategy.Name, flags.sims, flags.trials)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&port, "port", getenv("PORT", defaultPort), "HTTP port")
	cmd.Flags().IntVar(&logCap, "log-capacity", getenvInt("SMARTCAB_LOG_CAPACITY", defaultLogCap), "penalty log capacity")
	cmd.Flags().StringVar(&logPolicy, "log-policy", getenv("SMARTCAB_LOG_POLICY", defaultLogPolicy), "penalty log read order: fifo or freshness")
	return cmd
}
