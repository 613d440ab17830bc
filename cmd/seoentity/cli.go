package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/seoentity/seoentity"
	"github.com/seoentity/seoentity/gemini"
	"github.com/seoentity/seoentity/pipeline"
	"github.com/seoentity/seoentity/prometheus"
	"github.com/seoentity/seoentity/sqlite"
)

// Analysis backends.
const (
	BackendNaturalLanguage = "naturallanguage"
	BackendGemini          = "gemini"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	DB       *sqlite.DB
	Analyses seoentity.AnalysisService
	Runner   *pipeline.Runner
	Metrics  *prometheus.Metrics
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug output"`

	Backend          string  `default:"naturallanguage" enum:"naturallanguage,gemini" env:"SEOENTITY_BACKEND" help:"Entity analysis service (${enum})"`
	GeminiAPIKey     string  `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	GeminiModel      string  `name:"gemini-model" default:"${gemini_model}" env:"SEOENTITY_GEMINI_MODEL" help:"Gemini model name"`
	MaxTokens        int     `name:"max-tokens" default:"0" help:"Reject texts above this many tokens before calling Gemini (0 disables)"`
	Extractor        string  `default:"visible" enum:"visible,trafilatura,readability" help:"Visible text extractor (${enum})"`
	Render           bool    `help:"Fetch URLs with a headless browser"`
	FetchRPS         float64 `name:"fetch-rps" default:"1" help:"Maximum fetches per second to one host (0 disables)"`
	MinClassifyWords int     `name:"min-classify-words" default:"20" help:"Skip classification below this many words"`
	Reuse            bool    `help:"Reuse a stored analysis of identical text"`

	Analyze AnalyzeCmd `cmd:"" help:"Analyze a URL, HTML file or text"`
	List    ListCmd    `cmd:"" help:"List stored analyses"`
	Show    ShowCmd    `cmd:"" help:"Show a stored analysis"`
	Export  ExportCmd  `cmd:"" help:"Export the entities of an analysis"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a stored analysis"`
	Serve   ServeCmd   `cmd:"" help:"Serve the web interface"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	URL      string `xor:"input" required:"" help:"Page URL to fetch"`
	HTMLFile string `name:"html-file" xor:"input" required:"" type:"existingfile" help:"HTML file to analyze"`
	TextFile string `name:"text-file" xor:"input" required:"" type:"existingfile" help:"Plain text file to analyze"`
	Text     string `xor:"input" required:"" help:"Plain text to analyze"`
	JSON     bool   `help:"Print the analysis as JSON"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum analyses to list"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID          string `arg:"" help:"Analysis ID"`
	Highlighted bool   `help:"Print the annotated HTML"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID     string `arg:"" help:"Analysis ID"`
	Format string `short:"f" default:"json" enum:"json,csv" help:"Export format (${enum})"`
	Output string `short:"o" help:"Output file (default stdout)"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Analysis ID"`
	Force bool   `help:"Confirm deletion"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" env:"SEOENTITY_ADDR" help:"Listen address"`
}

// vars are the interpolation variables used in CLI tags.
var vars = map[string]string{
	"gemini_model": gemini.DefaultModel,
}
