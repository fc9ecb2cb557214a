package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	agent "github.com/hrygo/plotbuddy/ai/agents"
	"github.com/hrygo/plotbuddy/ai/core/llm"
	"github.com/hrygo/plotbuddy/ai/format"
	"github.com/hrygo/plotbuddy/ai/metrics"
	"github.com/hrygo/plotbuddy/ai/routing"
	"github.com/hrygo/plotbuddy/internal/profile"
	"github.com/hrygo/plotbuddy/store"
	"github.com/hrygo/plotbuddy/store/db"
)

// app holds everything a command needs to talk to the assistant.
type app struct {
	profile      *profile.Profile
	store        *store.Store
	llm          llm.Service
	orchestrator *agent.Orchestrator
	formatter    format.Formatter
	exporter     *metrics.PrometheusExporter
	out          io.Writer
}

func newApp(ctx context.Context, instanceProfile *profile.Profile) (*app, error) {
	formatter, err := format.NewFormatter(instanceProfile.Format)
	if err != nil {
		return nil, err
	}

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		printDatabaseError(err, instanceProfile)
		return nil, err
	}
	storeInstance := store.New(dbDriver, store.DefaultConfig())
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	a := &app{
		profile:   instanceProfile,
		store:     storeInstance,
		formatter: formatter,
		out:       os.Stdout,
	}
	if instanceProfile.MetricsAddr != "" {
		a.exporter = metrics.NewPrometheusExporter(metrics.DefaultConfig())
	}

	a.llm, err = newLLMService(instanceProfile, a.exporter)
	if err != nil {
		_ = storeInstance.Close()
		return nil, err
	}

	routerCfg := routing.DefaultConfig()
	if instanceProfile.RulesFile != "" {
		table, err := routing.LoadRuleTable(instanceProfile.RulesFile)
		if err != nil {
			_ = storeInstance.Close()
			return nil, err
		}
		routerCfg.Rules = table
	}

	opts := agent.Options{LLM: a.llm}
	if a.exporter != nil {
		opts.Metrics = a.exporter
	}
	a.orchestrator = agent.NewOrchestrator(routing.NewService(routerCfg), storeInstance, opts)
	return a, nil
}

// newLLMService returns nil when no provider is configured; the assistant
// then answers from templates and static text.
func newLLMService(p *profile.Profile, exporter *metrics.PrometheusExporter) (llm.Service, error) {
	svc, err := llm.NewService(&llm.Config{
		Provider: p.LLMProvider,
		Model:    p.LLMModel,
		APIKey:   p.LLMAPIKey,
		BaseURL:  p.LLMBaseURL,
		Timeout:  p.LLMTimeout,
	})
	if errors.Is(err, llm.ErrNotConfigured) {
		slog.Info("LLM disabled, using built-in replies", "provider", p.LLMProvider)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	svc = llm.NewGuardedService(svc, llm.GuardConfig{
		RequestsPerSecond: p.LLMRateLimit,
		Burst:             p.LLMBurst,
		CallTimeout:       time.Duration(p.LLMTimeout) * time.Second,
	})
	if exporter != nil {
		svc = llm.NewInstrumentedService(svc, exporter)
	}
	slog.Debug("LLM enabled", "provider", p.LLMProvider, "model", p.LLMModel)
	return svc, nil
}

// run executes fn alongside the metrics listener, when one is configured.
// The listener stops once fn returns.
func (a *app) run(ctx context.Context, fn func(ctx context.Context) error) error {
	defer a.store.Close()

	if a.exporter == nil {
		return fn(ctx)
	}

	srv := &http.Server{
		Addr:              a.profile.MetricsAddr,
		Handler:           a.exporter.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics listener: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		return fn(gctx)
	})
	return g.Wait()
}

// warmup opens the model connection in the background so the first reply
// does not pay for it.
func (a *app) warmup(ctx context.Context) {
	if a.llm == nil {
		return
	}
	go a.llm.Warmup(ctx)
}

// faq answers a question about the service and prints the reply.
func (a *app) faq(ctx context.Context, question string) (*agent.Response, error) {
	resp, err := agent.NewFAQAgent(a.llm).Answer(ctx, &agent.Request{UserID: userID(), Input: question})
	if err != nil {
		return nil, err
	}
	if err := a.print(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// send runs one request through the orchestrator and prints the reply.
func (a *app) send(ctx context.Context, req *agent.Request) (*agent.Response, error) {
	resp, err := a.orchestrator.Process(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := a.print(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (a *app) print(resp *agent.Response) error {
	out, err := a.formatter.Format(&format.FormatRequest{
		Content: resp.Text(),
		Story:   resp.Success && resp.Agent == agent.AgentStory,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, strings.TrimRight(out.Formatted, "\n"))
	return nil
}

// withApp loads the profile, builds the app and runs fn under a signal
// aware context.
func withApp(fn func(ctx context.Context, a *app) error) error {
	instanceProfile, err := loadProfile()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, instanceProfile)
	if err != nil {
		return err
	}
	return a.run(ctx, func(ctx context.Context) error {
		return fn(ctx, a)
	})
}

// printDatabaseError provides user-friendly error messages for database connection issues
func printDatabaseError(err error, p *profile.Profile) {
	fmt.Fprintln(os.Stderr, "\nDatabase connection failed")

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		fmt.Fprintln(os.Stderr, "  PostgreSQL is not reachable. Check that it is running and the DSN host is correct.")
		fmt.Fprintln(os.Stderr, "  Or keep everything local with: plotbuddy --driver=sqlite")
	case strings.Contains(errMsg, "SSL is not enabled") || strings.Contains(errMsg, "sslmode"):
		fmt.Fprintln(os.Stderr, "  PostgreSQL SSL configuration mismatch. Add ?sslmode=disable to your DSN.")
	case strings.Contains(errMsg, "password authentication failed"):
		fmt.Fprintln(os.Stderr, "  PostgreSQL authentication failed. Check the credentials in the DSN or .env file.")
	case strings.Contains(errMsg, "unable to open database file") || strings.Contains(errMsg, "permission denied"):
		fmt.Fprintf(os.Stderr, "  Cannot open %s. Check the --data directory permissions.\n", p.DSN)
	default:
		fmt.Fprintln(os.Stderr, "  Error:", errMsg)
	}
}
