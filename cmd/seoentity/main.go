package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	language "cloud.google.com/go/language/apiv1"
	"github.com/alecthomas/kong"
	"github.com/seoentity/seoentity"
	"github.com/seoentity/seoentity/gemini"
	"github.com/seoentity/seoentity/goquery"
	seohttp "github.com/seoentity/seoentity/http"
	"github.com/seoentity/seoentity/naturallanguage"
	"github.com/seoentity/seoentity/pipeline"
	"github.com/seoentity/seoentity/prometheus"
	"github.com/seoentity/seoentity/readability"
	"github.com/seoentity/seoentity/rod"
	seoslog "github.com/seoentity/seoentity/slog"
	"github.com/seoentity/seoentity/sqlite"
	"github.com/seoentity/seoentity/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// ConfigPath is an optional JSON file of flag defaults.
	ConfigPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing. When set they replace the
	// configured backend and fetcher.
	Analyzer seoentity.Analyzer
	Fetcher  seoentity.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		ConfigPath: defaultConfigPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	options := []kong.Option{
		kong.Name("seoentity"),
		kong.Description("Extract, enrich and highlight the named entities of a page."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars(vars),
		kong.Bind(deps),
	}
	if m.ConfigPath != "" {
		options = append(options, kong.Configuration(kong.JSON, m.ConfigPath))
	}
	parser, err := kong.New(cli, options...)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'seoentity --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = kongCtx.Command()

	deps.Logger = newLogger(stderr, cli.Verbose)

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SEOENTITY_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.DB = m.DB
	deps.Analyses = sqlite.NewAnalysisService(m.DB)

	if isCommand(cmd, "analyze") || isCommand(cmd, "serve") {
		if isCommand(cmd, "serve") {
			deps.Metrics = prometheus.NewMetrics()
		}

		analyzer, err := m.analyzer(ctx, cli, deps, stderr)
		if err != nil {
			return err
		}

		fetcher, err := m.fetcher(cli, deps.Logger, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()

		extractor, err := newExtractor(cli.Extractor)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", seoentity.ErrorMessage(err))
			return err
		}

		deps.Runner = &pipeline.Runner{
			Fetcher:          fetcher,
			Extractor:        seoslog.NewLoggingExtractor(extractor, deps.Logger),
			Analyzer:         analyzer,
			Analyses:         deps.Analyses,
			Logger:           deps.Logger,
			MinClassifyWords: cli.MinClassifyWords,
			Reuse:            cli.Reuse,
		}
		if cli.FetchRPS > 0 {
			deps.Runner.Limiter = pipeline.NewDomainLimiter(cli.FetchRPS)
		}
	}

	return kongCtx.Run(deps)
}

// analyzer builds the configured extraction backend wrapped with logging
// and, when metrics are enabled, instrumentation.
func (m *Main) analyzer(ctx context.Context, cli *CLI, deps *Dependencies, stderr io.Writer) (seoentity.Analyzer, error) {
	var analyzer seoentity.Analyzer
	if m.Analyzer != nil {
		analyzer = m.Analyzer
	} else {
		a, err := newBackend(ctx, cli, stderr)
		if err != nil {
			return nil, err
		}
		analyzer = a
	}

	analyzer = seoslog.NewLoggingAnalyzer(analyzer, deps.Logger)
	if deps.Metrics != nil {
		analyzer = prometheus.NewInstrumentedAnalyzer(analyzer, deps.Metrics)
	}
	return analyzer, nil
}

// newBackend connects to the analysis service named by cli.Backend.
func newBackend(ctx context.Context, cli *CLI, stderr io.Writer) (seoentity.Analyzer, error) {
	switch cli.Backend {
	case BackendGemini:
		if cli.GeminiAPIKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cli.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		opts := []gemini.Option{gemini.WithModel(cli.GeminiModel)}
		if cli.MaxTokens > 0 {
			counter, err := gemini.NewTokenCounter(tokenizerModel)
			if err != nil {
				return nil, fmt.Errorf("failed to create token counter: %w", err)
			}
			opts = append(opts, gemini.WithTokenLimit(counter, cli.MaxTokens))
		}
		return gemini.NewAnalyzer(client, opts...), nil

	default:
		client, err := language.NewClient(ctx)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Set GOOGLE_APPLICATION_CREDENTIALS to a service account key with the Cloud Natural Language API enabled")
			return nil, fmt.Errorf("failed to connect to Natural Language API: %w", err)
		}
		return naturallanguage.NewAnalyzer(client), nil
	}
}

// fetcher returns the page fetcher: a headless browser with --render,
// plain HTTP otherwise.
func (m *Main) fetcher(cli *CLI, logger *slog.Logger, stderr io.Writer) (seoentity.Fetcher, error) {
	if m.Fetcher != nil {
		return seoslog.NewLoggingFetcher(m.Fetcher, logger), nil
	}
	if !cli.Render {
		return seoslog.NewLoggingFetcher(seohttp.NewFetcher(), logger), nil
	}

	fetcher, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return seoslog.NewLoggingFetcher(fetcher, logger), nil
}

// newExtractor returns the visible-text extractor named by name. The boilerplate
// extractors fall back to the visible extractor when they find no article.
func newExtractor(name string) (seoentity.Extractor, error) {
	visible := goquery.NewVisibleExtractor()
	switch name {
	case "", "visible":
		return visible, nil
	case "trafilatura":
		return trafilatura.NewExtractor(visible), nil
	case "readability":
		return readability.NewExtractor(visible), nil
	}
	return nil, seoentity.Errorf(seoentity.EINVALID, "unknown extractor %q: use visible, trafilatura or readability", name)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isCommand reports whether the kong command path starts with name.
func isCommand(command, name string) bool {
	return command == name || len(command) > len(name) && command[:len(name)+1] == name+" "
}

// tokenizerModel is used for token counting. The local tokenizer only knows
// released model families, so it stays fixed when --gemini-model changes.
const tokenizerModel = gemini.DefaultModel

func defaultDBPath() string {
	if path := os.Getenv("SEOENTITY_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "seoentity.db"
	}
	dir := filepath.Join(home, ".seoentity")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "seoentity.db")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".seoentity", "config.json")
}
