package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dstanchev/guardrail-eval/internal/report"
	"github.com/dstanchev/guardrail-eval/internal/setup"
	setuplogger "github.com/dstanchev/guardrail-eval/internal/setup/logger"
	"github.com/dstanchev/guardrail-eval/internal/threats"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	input := flag.String("input", "", "Attack report in JSONL format, or '-' for stdin")
	reportPath := flag.String("report", "guardrail_effectiveness_report.md", "Markdown report output path")
	dumpPath := flag.String("dump", "", "Optional JSON dump of the full result set")
	severities := flag.String("severities", "MEDIUM,HIGH,CRITICAL", "Comma-separated severities to evaluate")
	limit := flag.Int("limit", 0, "Evaluate at most N prompts (0 = no limit)")

	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	severityFilter, err := threats.ParseSeverities(*severities)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -severities value")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()
	logger := setuplogger.New(cfg.LogLevel)

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// Open input file
	var inputFile io.Reader
	if *input == "-" {
		inputFile = os.Stdin
		log.Info().Msg("Reading from stdin")
	} else {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal().Err(err).Str("file", *input).Msg("Failed to open input file")
		}
		defer f.Close()
		inputFile = f
		log.Info().Str("file", *input).Msg("Reading input file")
	}

	// Read records
	reader := threats.NewReader(inputFile, deps.Logger)
	records, malformed := threats.ReadRecords(ctx, reader)
	if malformed > 0 {
		log.Warn().Int("malformed", malformed).Msg("Skipped malformed lines")
	}

	filtered := threats.FilterSeverity(records, severityFilter)
	prompts := threats.PromptRecords(filtered)
	if *limit > 0 && len(prompts) > *limit {
		prompts = prompts[:*limit]
	}

	log.Info().
		Int("records", len(records)).
		Int("after_filter", len(filtered)).
		Int("prompts", len(prompts)).
		Msg("Input parsed")

	if len(prompts) == 0 {
		log.Fatal().Msg("No prompts to evaluate after filtering")
	}

	// Evaluate
	results := deps.Evaluator.Evaluate(ctx, prompts)
	rep := deps.Aggregator.Aggregate(results)

	// Write report
	if err := report.Write(*reportPath, rep); err != nil {
		log.Fatal().Err(err).Str("file", *reportPath).Msg("Failed to write report")
	}
	log.Info().Str("file", *reportPath).Msg("Report written")

	if *dumpPath != "" {
		if err := report.WriteDump(*dumpPath, results); err != nil {
			log.Fatal().Err(err).Str("file", *dumpPath).Msg("Failed to write dump")
		}
		log.Info().Str("file", *dumpPath).Msg("Result dump written")
	}

	log.Info().
		Int("blocked", rep.Summary.Blocked).
		Int("allowed", rep.Summary.Allowed).
		Int("errors", rep.Summary.Errored).
		Float64("block_rate", rep.Summary.BlockRate).
		Dur("duration", time.Since(startTime)).
		Msg("Guardrail evaluation complete")
}
