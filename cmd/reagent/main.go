// Command reagent is an interactive ReAct agent on an OpenAI-compatible
// endpoint.
//
// Configuration comes from an optional YAML file and the environment:
//
//	MODEL=gpt-4o-mini API_KEY=... BASE_URL=https://api.openai.com/v1 reagent
//	reagent -config reagent.yaml -ask "What time is it in Tokyo?"
//	reagent -agent reflect -ask "Write a function listing all primes up to n."
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/config"
	"github.com/helloagents/reagent/hooks"
	"github.com/helloagents/reagent/loggers"
	"github.com/helloagents/reagent/memory"
	"github.com/helloagents/reagent/metrics"
	"github.com/helloagents/reagent/models"
	"github.com/helloagents/reagent/planandsolve"
	"github.com/helloagents/reagent/react"
	"github.com/helloagents/reagent/reflection"
	"github.com/helloagents/reagent/toolchain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	ask         string
	metricsAddr string
	agent       string
}

const (
	agentReAct   = "react"
	agentPlan    = "plan"
	agentReflect = "reflect"
)

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("reagent", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.ask, "ask", "", "answer one question and exit")
	fs.StringVar(&opts.metricsAddr, "metrics", "", "serve Prometheus metrics on this address, e.g. :9090")
	fs.StringVar(&opts.agent, "agent", agentReAct, "agent to run: react, plan or reflect")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run() error {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := hooks.NewRegistry()
	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		registry.Register(metrics.NewCollector("reagent", reg))
		go serveMetrics(opts.metricsAddr, reg, logger)
	}

	runner, mem, err := buildRunner(opts.agent, cfg, logger, registry, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	if opts.ask != "" {
		return answer(context.Background(), runner, os.Stdout, opts.ask)
	}
	return repl(runner, mem)
}

// runFunc runs one question. Agent specific detail, such as a plan, is
// written to w.
type runFunc func(ctx context.Context, w io.Writer, input string) (*reagent.Result, error)

// buildRunner wires the agent named by kind. mem is nil unless kind is react
// and memory is enabled.
func buildRunner(
	kind string,
	cfg *config.Config,
	logger *zap.Logger,
	registry *hooks.Registry,
	stdout io.Writer,
	stderr io.Writer,
) (runFunc, *memory.Window, error) {
	if cfg.Log.Transcript {
		registry.Register(loggers.NewYAMLHookWithWriter(stderr))
	}

	switch kind {
	case agentReAct:
		agent, mem, err := buildAgent(cfg, logger, stdout)
		if err != nil {
			return nil, nil, err
		}
		agent.WithHooks(registry)
		return reactRunner(agent), mem, nil

	case agentPlan:
		model, err := newLimitedModel(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		agent := planandsolve.NewAgent(model).
			WithMaxSteps(cfg.Agent.MaxSteps).
			WithInstructions(cfg.Agent.Instructions).
			WithHooks(registry).
			WithLogger(logger)
		if cfg.Agent.Stream {
			agent.WithStreaming(nil).WithStreamSink(stdout)
		}
		return planRunner(agent), nil, nil

	case agentReflect:
		model, err := newLimitedModel(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		agent := reflection.NewAgent(model).
			WithMaxIterations(cfg.Agent.MaxSteps).
			WithInstructions(cfg.Agent.Instructions).
			WithHooks(registry).
			WithLogger(logger)
		if cfg.Agent.Stream {
			agent.WithStreaming(nil).WithStreamSink(stdout)
		}
		return reflectRunner(agent), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown agent %q, want %s, %s or %s", kind, agentReAct, agentPlan, agentReflect)
}

// buildAgent wires the ReAct agent's model, tools and memory. mem is nil
// when memory is disabled.
func buildAgent(
	cfg *config.Config,
	logger *zap.Logger,
	stdout io.Writer,
) (*react.Agent, *memory.Window, error) {
	model, err := newLimitedModel(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	catalog := toolchain.NewCatalog().MustRegister(newCurrentTimeTool(time.Now))

	agent := react.NewAgent(model).
		WithCatalog(catalog).
		WithMaxSteps(cfg.Agent.MaxSteps).
		WithInstructions(cfg.Agent.Instructions).
		WithLogger(logger)

	if cfg.Agent.Stream {
		agent.WithStreaming(nil).WithStreamSink(stdout)
	}

	var mem *memory.Window
	if cfg.Agent.Memory > 0 {
		mem = memory.NewWindow(cfg.Agent.Memory)
		agent.WithMemory(mem)
	}
	return agent, mem, nil
}

func reactRunner(agent *react.Agent) runFunc {
	return func(ctx context.Context, _ io.Writer, input string) (*reagent.Result, error) {
		return agent.Run(ctx, input)
	}
}

func planRunner(agent *planandsolve.Agent) runFunc {
	return func(ctx context.Context, w io.Writer, input string) (*reagent.Result, error) {
		res, err := agent.Run(ctx, input)
		for _, s := range res.Steps {
			fmt.Fprintf(w, "%s%d. %s%s\n   %s\n", colorDim, s.Index, s.Step, colorReset, s.Output)
		}
		return res.Result, err
	}
}

func reflectRunner(agent *reflection.Agent) runFunc {
	return func(ctx context.Context, w io.Writer, input string) (*reagent.Result, error) {
		res, err := agent.Run(ctx, input)
		if err == nil && !res.Converged {
			fmt.Fprintf(w, "%sLatest draft after %d rounds:%s\n%s\n", colorDim, res.Iterations, colorReset, res.Output)
		}
		return res.Result, err
	}
}

func newLimitedModel(cfg *config.Config, logger *zap.Logger) (reagent.Model, error) {
	lcg, err := newModel(cfg, logger)
	if err != nil {
		return nil, err
	}
	return models.RateLimited(lcg, models.NewLimiter(cfg.Model.RPS)), nil
}

func newModel(cfg *config.Config, logger *zap.Logger) (*models.LCG, error) {
	lcg, err := models.NewOpenAI(models.OpenAIConfig{
		Model:       cfg.Model.Name,
		APIKey:      cfg.Model.APIKey,
		BaseURL:     cfg.Model.BaseURL,
		Timeout:     cfg.Model.Timeout,
		Temperature: cfg.Model.Temperature,
	})
	if err != nil {
		return nil, err
	}
	return lcg.WithLogger(logger), nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}

// answer runs one question and prints the outcome.
func answer(ctx context.Context, run runFunc, w io.Writer, question string) error {
	result, err := run(ctx, w, question)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case reagent.OutcomeFinished:
		fmt.Fprintf(w, "\n%s%sAnswer:%s %s\n", colorBold, colorGreen, colorReset, result.Answer)
	case reagent.OutcomeStepsExhausted:
		fmt.Fprintf(w, "\n%sNo answer after %d steps.%s\n", colorYellow, result.Iterations, colorReset)
	}
	return nil
}

func repl(run runFunc, mem *memory.Window) error {
	rl, err := readline.New(colorCyan + "reagent> " + colorReset)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("%sAsk a question. /reset clears memory, q quits.%s\n\n", colorDim, colorReset)

	for {
		input, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Printf("\n%sGoodbye!%s\n", colorGreen, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "q", "Q", "exit":
			fmt.Printf("%sGoodbye!%s\n", colorGreen, colorReset)
			return nil
		case "/reset":
			if mem != nil {
				mem.Reset()
			}
			fmt.Printf("%sMemory cleared.%s\n\n", colorDim, colorReset)
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case <-sigCh:
				fmt.Printf("\n%sReceived interrupt, cancelling...%s\n", colorYellow, colorReset)
				cancel()
			case <-ctx.Done():
			}
		}()

		if err := answer(ctx, run, os.Stdout, input); err != nil {
			fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		}

		signal.Stop(sigCh)
		cancel()
		fmt.Printf("%s%s%s\n\n", colorDim, strings.Repeat("-", 60), colorReset)
	}
}
