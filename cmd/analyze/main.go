package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dstanchev/guardrail-eval/internal/setup"
	setuplogger "github.com/dstanchev/guardrail-eval/internal/setup/logger"
	"github.com/dstanchev/guardrail-eval/internal/threats"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	input := flag.String("input", "", "Attack report in JSONL format, or '-' for stdin")
	output := flag.String("output", "", "Analysis output path (default: stdout)")
	severities := flag.String("severities", "MEDIUM,HIGH,CRITICAL", "Comma-separated severities to analyze")

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

	analyzer, err := setup.WireAnalyzer(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire analyzer")
	}

	var inputFile io.Reader
	if *input == "-" {
		inputFile = os.Stdin
	} else {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal().Err(err).Str("file", *input).Msg("Failed to open input file")
		}
		defer f.Close()
		inputFile = f
	}

	reader := threats.NewReader(inputFile, &logger)
	records, malformed := threats.ReadRecords(ctx, reader)
	if malformed > 0 {
		log.Warn().Int("malformed", malformed).Msg("Skipped malformed lines")
	}

	filtered := threats.FilterSeverity(records, severityFilter)
	log.Info().
		Int("records", len(records)).
		Int("after_filter", len(filtered)).
		Msg("Input parsed")

	analysis, err := analyzer.Analyze(ctx, filtered)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	if *output == "" {
		fmt.Println(analysis)
	} else {
		if err := os.WriteFile(*output, []byte(analysis), 0644); err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to write analysis")
		}
		log.Info().Str("file", *output).Msg("Analysis written")
	}
}
