package pipeline

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zombor/bill-tracker/internal/document"
)

// Extractor turns sanitized text into a candidate document for a user.
type Extractor interface {
	Extract(text, userID string) (document.CandidateDocument, error)
}

// Converter attaches INR and USD totals to a validated document.
type Converter interface {
	Normalize(doc document.FinancialDocument) document.ProcessedFinancialDocument
}

// Stage names a step of Process, as it appears in logs.
type Stage string

const (
	StageStart      Stage = "start"
	StageSanitized  Stage = "sanitized"
	StageExtracted  Stage = "extracted"
	StageValidated  Stage = "validated"
	StageNormalized Stage = "normalized"
	StageDone       Stage = "done"
)

// Pipeline runs sanitize, extract, validate and normalize in order.
type Pipeline struct {
	extractor Extractor
	converter Converter
	log       zerolog.Logger
}

// New creates a Pipeline.
func New(extractor Extractor, converter Converter, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		converter: converter,
		log:       logger.With().Str("component", "pipeline").Logger(),
	}
}

// Process turns OCR text into a processed document. It stops at the first
// failing stage and returns that stage's error unchanged.
func (p *Pipeline) Process(input document.DocumentInput) (document.ProcessedFinancialDocument, error) {
	start := time.Now()
	log := p.log.With().Str("user_id", input.UserID).Logger()
	stage := func(s Stage) {
		log.Info().Str("stage", string(s)).Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("pipeline stage")
	}
	fail := func(s Stage, err error) (document.ProcessedFinancialDocument, error) {
		log.Error().Err(err).Str("stage", string(s)).Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("pipeline failed")
		return document.ProcessedFinancialDocument{}, err
	}

	stage(StageStart)

	text := document.Sanitize(input.RawText)
	if document.TooShort(text) {
		return fail(StageSanitized, document.NewError(document.ErrTooShort,
			fmt.Sprintf("%d characters after sanitizing, need at least %d", len([]rune(text)), document.MinTextLength), nil))
	}
	stage(StageSanitized)

	candidate, err := p.extractor.Extract(text, input.UserID)
	if err != nil {
		return fail(StageExtracted, err)
	}
	stage(StageExtracted)

	doc, err := document.Validate(candidate)
	if err != nil {
		return fail(StageValidated, err)
	}
	stage(StageValidated)

	processed := p.converter.Normalize(doc)
	stage(StageNormalized)

	log.Info().
		Str("stage", string(StageDone)).
		Float64("total_inr", processed.TotalAmountINR).
		Float64("total_usd", processed.TotalAmountUSD).
		Bool("rates_degraded", processed.RatesDegraded).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("pipeline stage")
	return processed, nil
}
