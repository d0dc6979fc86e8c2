package entry

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/bill-tracker/internal/document"
	"github.com/zombor/bill-tracker/internal/logger"
	"github.com/zombor/bill-tracker/internal/scanning"
)

const maxUploadSize = int64(50 << 20)

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, message string, status int) {
	_ = writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps a processing failure to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, document.ErrTooShort),
		errors.Is(err, document.ErrCategoryMissing),
		errors.Is(err, document.ErrCategoryConflict),
		errors.Is(err, document.ErrUnknownTransactionType),
		errors.Is(err, document.ErrOCR):
		return http.StatusUnprocessableEntity
	case errors.Is(err, document.ErrExtractionService),
		errors.Is(err, document.ErrMalformedExtraction),
		errors.Is(err, document.ErrSchemaViolation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// contentTypeFor prefers the part header and falls back to the file extension
func contentTypeFor(header string, filename string) string {
	ct := strings.ToLower(strings.TrimSpace(header))
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleProcessBill runs an uploaded bill through OCR and the pipeline
func (s *Server) handleProcessBill(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID := strings.TrimSpace(r.PathValue("userId"))
	if userID == "" {
		writeError(w, "User ID required", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error().Err(err).Msg("error parsing multipart form")
		msg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "File is too large. Maximum size is 50MB."
		}
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		log.Error().Err(err).Msg("error getting file from form")
		writeError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("error reading file data")
		writeError(w, "Error reading file", http.StatusInternalServerError)
		return
	}
	if len(data) == 0 {
		writeError(w, "Uploaded file is empty", http.StatusBadRequest)
		return
	}

	contentType := contentTypeFor(header.Header.Get("Content-Type"), header.Filename)
	if !scanning.SupportedContentType(contentType) {
		writeError(w, "Unsupported file type "+contentType+". Upload an image or a PDF.", http.StatusBadRequest)
		return
	}

	entry, err := s.service.ProcessBill(userID, header.Filename, data, contentType)
	if err != nil {
		status := statusFor(err)
		log.Error().Err(err).Str("filename", header.Filename).Int("status", status).Msg("error processing bill")
		writeError(w, err.Error(), status)
		return
	}

	if err := writeJSON(w, http.StatusCreated, entry); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

// handleListEntries returns entries, optionally filtered by ?userId=
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	entries, err := s.service.ListEntries(r.URL.Query().Get("userId"))
	if err != nil {
		log.Error().Err(err).Msg("error listing entries")
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, http.StatusOK, entries); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

// handleGetEntry returns a single entry
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	entry, err := s.service.GetEntry(r.PathValue("id"))
	if err != nil {
		if IsNotFound(err) {
			writeError(w, "Entry not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("error getting entry")
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, http.StatusOK, entry); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

// handleGetEntryFile returns the original upload
func (s *Server) handleGetEntryFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetEntryFile(r.PathValue("id"))
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Msg("entry file not available")
		writeError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteEntry deletes an entry and its file
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteEntry(r.PathValue("id")); err != nil {
		if IsNotFound(err) {
			writeError(w, "Entry not found", http.StatusNotFound)
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("error deleting entry")
		writeError(w, "Error deleting entry", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
