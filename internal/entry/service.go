package entry

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zombor/bill-tracker/internal/document"
	"github.com/zombor/bill-tracker/internal/scanning"
)

// Processor turns OCR text into a processed document
type Processor interface {
	Process(input document.DocumentInput) (document.ProcessedFinancialDocument, error)
}

// IDGenerator generates unique IDs for entries
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.New().String()
}

type systemTime struct{}

func (systemTime) Now() time.Time {
	return time.Now().UTC()
}

// Service handles bill uploads and stored entries
type Service struct {
	db          DB
	ocr         scanning.TextExtractor
	processor   Processor
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
	log         zerolog.Logger
}

// NewService creates a Service with UUID ids and the system clock
func NewService(db DB, ocr scanning.TextExtractor, processor Processor, storage Storage, logger zerolog.Logger) *Service {
	return NewServiceWithDeps(db, ocr, processor, storage, uuidGenerator{}, systemTime{}, logger)
}

// NewServiceWithDeps creates a Service with custom dependencies for testing
func NewServiceWithDeps(db DB, ocr scanning.TextExtractor, processor Processor, storage Storage, idGen IDGenerator, timeSrc TimeSource, logger zerolog.Logger) *Service {
	return &Service{
		db:          db,
		ocr:         ocr,
		processor:   processor,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
		log:         logger.With().Str("component", "entry").Logger(),
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename keeps alphanumerics, spaces, hyphens and underscores and
// truncates long phone-generated names
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(repeatedSpaces.ReplaceAllString(base, " "))

	const maxLen = 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "bill"
	}
	return base + ext
}

// ProcessBill stores the upload, transcribes it, runs the pipeline for userID
// and saves the resulting entry. The stored file is removed on failure.
func (s *Service) ProcessBill(userID, filename string, data []byte, contentType string) (*Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()
	log := s.log.With().Str("entry_id", id).Str("user_id", userID).Logger()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	fail := func(stage string, err error) (*Entry, error) {
		log.Error().Err(err).
			Str("filename", filename).
			Str("content_type", contentType).
			Int("file_size", len(data)).
			Msg("failed to " + stage)
		if derr := s.storage.Delete(savedPath); derr != nil {
			log.Warn().Err(derr).Str("path", savedPath).Msg("failed to clean up file")
		}
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	text, err := s.ocr.ExtractText(data, contentType)
	if err != nil {
		return fail("extract text", err)
	}

	processed, err := s.processor.Process(document.DocumentInput{UserID: userID, RawText: text})
	if err != nil {
		return fail("process document", err)
	}

	entry := newEntry(id, processed, savedPath, contentType, now)
	if err := s.db.SaveEntry(entry); err != nil {
		return fail("save entry", err)
	}

	log.Info().
		Str("name", entry.Name).
		Str("amount", entry.Amount).
		Str("currency", entry.Currency).
		Float64("total_inr", entry.TotalAmountINR).
		Float64("total_usd", entry.TotalAmountUSD).
		Msg("entry created")
	return entry, nil
}

// GetEntry retrieves an entry by ID
func (s *Service) GetEntry(id string) (*Entry, error) {
	entry, err := s.db.GetEntry(id)
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns the entries of userID, or every entry when it is empty
func (s *Service) ListEntries(userID string) ([]*Entry, error) {
	entries, err := s.db.ListEntries(userID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes an entry and its file
func (s *Service) DeleteEntry(id string) error {
	entry, err := s.db.GetEntry(id)
	if err != nil {
		return fmt.Errorf("getting entry for deletion: %w", err)
	}

	if err := s.storage.Delete(entry.Filename); err != nil {
		s.log.Warn().Err(err).Str("filename", entry.Filename).Msg("failed to delete file")
	}

	if err := s.db.DeleteEntry(id); err != nil {
		return fmt.Errorf("deleting entry from database: %w", err)
	}
	return nil
}

// GetEntryFile returns the original upload and its content type
func (s *Service) GetEntryFile(id string) ([]byte, string, error) {
	entry, err := s.db.GetEntry(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting entry: %w", err)
	}

	data, err := s.storage.Get(entry.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting entry file: %w", err)
	}
	return data, entry.ContentType, nil
}

// IsNotFound reports whether err means the entry does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
