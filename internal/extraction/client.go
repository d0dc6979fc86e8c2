package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zombor/bill-tracker/internal/document"
)

const maxResponseBytes = 4 << 20

// Config for the Gemini generateContent client.
type Config struct {
	APIKey  string
	BaseURL string        // default https://generativelanguage.googleapis.com
	Model   string        // default gemini-2.5-flash-lite
	Timeout time.Duration // bounds the whole request, default 30s
}

// Client asks the oracle for a structured document. It is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	schema *jsonschema.Schema
	log    zerolog.Logger
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// NewClient creates a Client, filling defaults and compiling the candidate schema.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash-lite"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	schema, err := compileSchema(CandidateJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("compiling candidate schema: %w", err)
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		schema: schema,
		log:    logger.With().Str("component", "extraction").Logger(),
	}, nil
}

// Extract sends text to the oracle once and returns its answer as a
// CandidateDocument owned by userID. Errors are *document.Error values of kind
// ErrExtractionService, ErrMalformedExtraction or ErrSchemaViolation.
func (c *Client) Extract(text, userID string) (document.CandidateDocument, error) {
	rid := uuid.New().String()
	start := time.Now()
	log := c.log.With().Str("req_id", rid).Str("user_id", userID).Logger()

	log.Info().
		Str("model", c.cfg.Model).
		Int("text_len", len(text)).
		Msg("extraction.start")

	raw, err := c.generate(BuildPrompt(text), log)
	if err != nil {
		return document.CandidateDocument{}, err
	}

	var envelope generateContentResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Error().Err(err).Int("raw_bytes", len(raw)).Msg("extraction.decode_envelope_failed")
		return document.CandidateDocument{}, document.NewError(document.ErrMalformedExtraction, "decode oracle envelope", err)
	}
	answer := envelope.text()
	if strings.TrimSpace(answer) == "" {
		log.Error().Str("raw", string(raw)).Msg("extraction.empty_answer")
		return document.CandidateDocument{}, document.NewError(document.ErrMalformedExtraction, "oracle returned no text", nil)
	}

	candidate, changed, err := parseCandidate(answer, userID, c.schema)
	if len(changed) > 0 {
		log.Warn().Strs("changed", changed).Msg("extraction.repaired")
	}
	if err != nil {
		log.Error().Err(err).Str("answer", answer).
			Int64("elapsed_ms", time.Since(start).Milliseconds()).
			Msg("extraction.parse_failed")
		return document.CandidateDocument{}, err
	}

	log.Info().
		Str("vendor", candidate.Name).
		Float64("amount", candidate.Amount).
		Str("currency", candidate.Currency).
		Str("type", string(candidate.Type)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("extraction.ok")
	return candidate, nil
}

// generate performs the single POST and returns the raw response body.
func (c *Client) generate(prompt string, log zerolog.Logger) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, document.ServiceError(0, "", fmt.Errorf("encode request: %w", err))
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1beta/models/" + c.cfg.Model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, document.ServiceError(0, "", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("extraction.http.send_error")
		return nil, document.ServiceError(0, "", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Warn().Err(err).Msg("extraction.http.response_body_close_error")
		}
	}(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, document.ServiceError(resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}

	log.Info().
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("extraction.http.response")

	if resp.StatusCode/100 != 2 {
		log.Error().Int("status", resp.StatusCode).Str("url", url).Str("body", string(raw)).Msg("extraction.http.non_2xx")
		return nil, document.ServiceError(resp.StatusCode, string(raw), fmt.Errorf("non-2xx status: %d", resp.StatusCode))
	}
	return raw, nil
}

func (r generateContentResponse) text() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}
