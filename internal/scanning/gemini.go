package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Gemini implements TextExtractor using Google Gemini vision models
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    zerolog.Logger
}

// NewGemini creates a new Gemini TextExtractor
func NewGemini(apiKey string, modelName string, logger zerolog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Gemini{
		client: client,
		model:  model,
		log:    logger.With().Str("component", "ocr").Str("provider", "gemini").Logger(),
	}, nil
}

// ExtractText transcribes the document
func (g *Gemini) ExtractText(data []byte, contentType string) (string, error) {
	if text, ok := textLayer(data, contentType); ok {
		g.log.Debug().Int("chars", len(text)).Msg("using PDF text layer")
		return text, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pngData, converted, err := preparePNG(data, contentType)
	if err != nil {
		return "", ocrError("gemini", err)
	}

	start := time.Now()
	// genai.ImageData takes the format suffix, not the MIME type
	resp, err := g.model.GenerateContent(ctx, genai.ImageData("png", pngData), genai.Text(transcribePrompt))
	if err != nil {
		return "", ocrError("gemini", fmt.Errorf("generating content: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", emptyTranscription("gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	text := cleanTranscription(b.String())
	if text == "" {
		return "", emptyTranscription("gemini")
	}

	g.log.Info().
		Bool("converted", converted).
		Int("chars", len(text)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("transcribed document")
	return text, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
