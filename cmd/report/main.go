package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dstanchev/guardrail-eval/internal/reconapi"
	"github.com/dstanchev/guardrail-eval/internal/setup"
	setuplogger "github.com/dstanchev/guardrail-eval/internal/setup/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	jobID := flag.String("job", "", "Scan job identifier")
	format := flag.String("format", "all", "Report format: all, csv or json")
	outDir := flag.String("out", "reports", "Directory for the downloaded archive")

	flag.Parse()

	if *jobID == "" {
		log.Fatal().Msg("required flag -job not provided")
	}

	var reportFormat reconapi.ReportFormat
	switch *format {
	case "all":
		reportFormat = reconapi.FormatAll
	case "csv":
		reportFormat = reconapi.FormatCSV
	case "json":
		reportFormat = reconapi.FormatJSON
	default:
		log.Fatal().Str("format", *format).Msg("Invalid format. Supported: all, csv, json")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()
	logger := setuplogger.New(cfg.LogLevel)

	client, err := setup.WireReconClient(cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report client")
	}

	path, err := client.SaveReport(ctx, *jobID, reportFormat, *outDir)
	if err != nil {
		log.Fatal().Err(err).Str("job_id", *jobID).Msg("Failed to download report")
	}

	log.Info().Str("path", path).Msg("Report downloaded")
}
