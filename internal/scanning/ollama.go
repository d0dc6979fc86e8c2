package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Ollama implements TextExtractor using a local Ollama vision model.
// Models with decent OCR: llava:1.6, qwen2-vl:7b, llama3.2-vision.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
	log     zerolog.Logger
}

// NewOllama creates a new Ollama TextExtractor
func NewOllama(baseURL string, modelName string, logger zerolog.Logger) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llava"
	}

	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   modelName,
		client: &http.Client{
			Timeout: 120 * time.Second, // vision models on CPU are slow
		},
		log: logger.With().Str("component", "ocr").Str("provider", "ollama").Logger(),
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// ExtractText transcribes the document
func (o *Ollama) ExtractText(data []byte, contentType string) (string, error) {
	if text, ok := textLayer(data, contentType); ok {
		o.log.Debug().Int("chars", len(text)).Msg("using PDF text layer")
		return text, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	pngData, converted, err := preparePNG(data, contentType)
	if err != nil {
		return "", ocrError("ollama", err)
	}

	reqBody := ollamaChatRequest{
		Model:  o.model,
		Stream: false,
		Messages: []ollamaMessage{
			{
				Role:    "system",
				Content: "You are an OCR engine. You read documents and output their text verbatim.",
			},
			{
				Role:    "user",
				Content: transcribePrompt,
				Images:  []string{base64.StdEncoding.EncodeToString(pngData)},
			},
		},
		Options: map[string]any{"temperature": 0},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", ocrError("ollama", fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", ocrError("ollama", fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return "", ocrError("ollama", fmt.Errorf("calling ollama API: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", ocrError("ollama", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body)))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", ocrError("ollama", fmt.Errorf("decoding response: %w", err))
	}

	text := cleanTranscription(chatResp.Message.Content)
	if text == "" {
		return "", emptyTranscription("ollama")
	}

	o.log.Info().
		Bool("converted", converted).
		Int("chars", len(text)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("transcribed document")
	return text, nil
}

// Close is a no-op for the HTTP client
func (o *Ollama) Close() error {
	return nil
}
