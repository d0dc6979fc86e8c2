package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/bill-tracker/internal/currency"
	"github.com/zombor/bill-tracker/internal/entry"
	"github.com/zombor/bill-tracker/internal/extraction"
	"github.com/zombor/bill-tracker/internal/logger"
	"github.com/zombor/bill-tracker/internal/pipeline"
	"github.com/zombor/bill-tracker/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error loading .env: %v\n", err)
		os.Exit(1)
	}

	flags := ff.NewFlagSet("bill-tracker")
	var (
		port            = flags.IntLong("port", 8080, "HTTP server port")
		dbPath          = flags.StringLong("db", "bill-tracker.db", "Database file path")
		storagePath     = flags.StringLong("storage", "./bills", "Storage directory for uploaded files")
		ocrType         = flags.StringLong("ocr", "gemini", "OCR provider: 'gemini' or 'ollama'")
		geminiKey       = flags.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel     = flags.StringLong("gemini-model", "gemini-2.5-flash", "Gemini model used for OCR")
		extractionURL   = flags.StringLong("extraction-url", "https://generativelanguage.googleapis.com", "Base URL of the extraction model API")
		extractionModel = flags.StringLong("extraction-model", "gemini-2.5-flash-lite", "Model used for structured extraction")
		ratesURL        = flags.StringLong("rates-url", "https://api.frankfurter.app", "Exchange rate API base URL")
		httpTimeout     = flags.DurationLong("http-timeout", 0, "Timeout for extraction and rate requests (0 uses client defaults)")
		ollamaURL       = flags.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel     = flags.StringLong("ollama-model", "llava", "Ollama vision model name")
		authUser        = flags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass        = flags.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel        = flags.StringLong("log-level", "info", "Log level: debug, info, warn, error")
		showVersion     = flags.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(flags, os.Args[1:],
		ff.WithEnvVarPrefix("BILL_TRACKER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(flags))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	log := logger.New(*logLevel).With().Str("version", version).Logger()

	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	log.Info().Str("path", *dbPath).Msg("initializing database")
	db, err := entry.NewBoltDB(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	var ocr scanning.TextExtractor
	switch *ocrType {
	case "gemini":
		if apiKey == "" {
			log.Fatal().Msg("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
		}
		log.Info().Str("model", *geminiModel).Msg("initializing Gemini OCR")
		ocr, err = scanning.NewGemini(apiKey, *geminiModel, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Gemini")
		}
	case "ollama":
		log.Info().Str("url", *ollamaURL).Str("model", *ollamaModel).Msg("initializing Ollama OCR")
		ocr = scanning.NewOllama(*ollamaURL, *ollamaModel, log)
	default:
		log.Fatal().Str("type", *ocrType).Str("valid", "gemini or ollama").Msg("invalid OCR provider")
	}
	defer ocr.Close()

	extractor, err := extraction.NewClient(extraction.Config{
		APIKey:  apiKey,
		BaseURL: *extractionURL,
		Model:   *extractionModel,
		Timeout: *httpTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize extraction client")
	}
	if apiKey == "" {
		log.Warn().Msg("no Gemini API key set, extraction requests will be unauthenticated")
	}

	normalizer := currency.NewNormalizer(currency.NewFrankfurter(*ratesURL, *httpTimeout), log)
	processor := pipeline.New(extractor, normalizer, log)

	log.Info().Str("path", *storagePath).Msg("initializing storage")
	store, err := entry.NewLocalStorage(*storagePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	service := entry.NewService(db, ocr, processor, store, log)
	server := entry.NewServer(service, entry.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}, log)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	log.Info().Str("address", fmt.Sprintf("http://localhost%s", addr)).Msg("server started")
	if *authUser != "" || *authPass != "" {
		log.Info().Str("user", *authUser).Msg("basic auth enabled")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
}
