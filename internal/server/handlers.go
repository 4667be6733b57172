package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/brand-voice/internal/extract"
	"github.com/jonathan/brand-voice/internal/server/middleware"
	"github.com/jonathan/brand-voice/internal/types"
	"github.com/jonathan/brand-voice/internal/voice"
)

const (
	// multipartMemory is held in memory before parts spill to temp files
	multipartMemory = 32 << 20
	// generateBodyLimit bounds a JSON generation request
	generateBodyLimit = 1 << 20
	maxTopicChars     = 500

	// Form field names
	filesField       = "files"
	textSamplesField = "textSamples"

	// extractionErrorsHeader reports how many uploaded files failed extraction
	extractionErrorsHeader = "X-Extraction-Errors"
	// extractionFailedHeader lists the failed file names, each path-escaped, comma separated
	extractionFailedHeader = "X-Extraction-Failed"
)

// Client-facing error messages
const (
	msgNoText              = "No text provided"
	msgNoFiles             = "No files provided"
	msgAnalysisFailed      = "Tone analysis failed"
	msgGenerationFailed    = "Content generation failed"
	msgMissingProfileTopic = "Missing profile or topic"
	msgInvalidProfile      = "Invalid profile"
	msgInvalidBody         = "Invalid request body"
	msgBodyTooLarge        = "Request body too large"
)

// GenerateRequest represents the request body for /generate
type GenerateRequest struct {
	Profile *types.ToneProfile `json:"profile"`
	Topic   string             `json:"topic"`
}

// validate checks request limits; missing fields are left to the voice service
func (req *GenerateRequest) validate() error {
	if n := utf8.RuneCountInString(req.Topic); n > maxTopicChars {
		return &ErrValidation{Field: "topic", Message: fmt.Sprintf("must be at most %d characters", maxTopicChars)}
	}
	return nil
}

// FailureResponse is returned when the model output or a profile is unusable
type FailureResponse struct {
	Error   string   `json:"error"`
	Raw     string   `json:"raw,omitempty"`
	Details []string `json:"details,omitempty"`
}

// ExtractResponse represents the response for /extract
type ExtractResponse struct {
	Files []extract.ExtractedText `json:"files"`
}

// analyzeRequest is a parsed /analyze form with files already extracted
type analyzeRequest struct {
	texts []string
	files []extract.ExtractedText
}

// handleAnalyze derives a tone profile from pasted samples and uploaded files
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseAnalyzeRequest(w, r)
	if !ok {
		return
	}

	result, err := s.voice.Analyze(r.Context(), voice.AnalyzeInput{Texts: req.texts, Files: req.files})
	if err != nil {
		status, body := s.analysisFailure(r, err)
		s.jsonResponse(w, status, body)
		return
	}

	s.jsonResponse(w, http.StatusOK, result.Profile)
}

// handleAnalyzeStream runs an analysis and streams progress via SSE
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseAnalyzeRequest(w, r)
	if !ok {
		return
	}

	// Reject empty input before the stream starts so the client gets a status code
	if _, err := extract.Combine(req.texts, req.files); err != nil {
		s.errorResponse(w, http.StatusBadRequest, msgNoText)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(req.files) > 0 {
		_ = sse.WriteEvent(EventExtraction, ExtractResponse{Files: req.files})
	}
	_ = sse.WriteEvent(EventStatus, map[string]string{"stage": "analyzing"})

	if sse.Err() == nil {
		result, err := s.voice.Analyze(r.Context(), voice.AnalyzeInput{Texts: req.texts, Files: req.files})
		if err != nil {
			_, body := s.analysisFailure(r, err)
			_ = sse.WriteFailure(body)
		} else {
			_ = sse.WriteEvent(EventProfile, result.Profile)
			_ = sse.WriteComplete(StreamCompleted)
		}
	}

	if err := sse.Err(); err != nil {
		s.logger.Warn("failed to write SSE event",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
	}
}

// handleExtract extracts uploaded files and returns per-file results in upload order
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	defer s.cleanupForm(r)

	docs, err := readUploads(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if len(docs) == 0 {
		s.errorResponse(w, http.StatusBadRequest, msgNoFiles)
		return
	}

	results := s.extractor.ExtractAll(r.Context(), docs)
	s.reportExtractionFailures(w, r, results)

	s.jsonResponse(w, http.StatusOK, ExtractResponse{Files: results})
}

// handleGenerate writes content about a topic in the voice of a profile
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, generateBodyLimit)

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			s.errorResponse(w, http.StatusBadRequest, msgMissingProfileTopic)
		case HTTPStatus(err) == http.StatusRequestEntityTooLarge:
			s.errorResponse(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		default:
			s.errorResponse(w, http.StatusBadRequest, msgInvalidBody+": "+err.Error())
		}
		return
	}
	if err := req.validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	content, err := s.voice.Generate(r.Context(), req.Profile, req.Topic)
	if err != nil {
		var (
			missing *voice.MissingFieldError
			invalid *voice.ValidationError
		)
		switch {
		case errors.As(err, &missing):
			s.errorResponse(w, http.StatusBadRequest, msgMissingProfileTopic)
		case errors.As(err, &invalid):
			s.jsonResponse(w, http.StatusBadRequest, FailureResponse{Error: msgInvalidProfile, Details: invalid.Fields})
		default:
			s.logger.Error("content generation failed",
				zap.Error(err),
				zap.String("request_id", middleware.GetRequestID(r.Context())))
			s.errorResponse(w, HTTPStatus(err), msgGenerationFailed)
		}
		return
	}

	s.jsonResponse(w, http.StatusOK, content)
}

// parseAnalyzeRequest reads pasted samples and extracts uploaded files.
// It writes the error response itself and reports false on failure.
func (s *Server) parseAnalyzeRequest(w http.ResponseWriter, r *http.Request) (*analyzeRequest, bool) {
	if !s.parseForm(w, r) {
		return nil, false
	}
	defer s.cleanupForm(r)

	docs, err := readUploads(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, msgInvalidBody)
		return nil, false
	}

	req := &analyzeRequest{texts: r.PostForm[textSamplesField]}
	if len(docs) > 0 {
		req.files = s.extractor.ExtractAll(r.Context(), docs)
		s.reportExtractionFailures(w, r, req.files)
	}
	return req, true
}

// parseForm parses a multipart or urlencoded body within the upload limit
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}

	if HTTPStatus(err) == http.StatusRequestEntityTooLarge {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return false
	}
	s.errorResponse(w, http.StatusBadRequest, msgInvalidBody)
	return false
}

func (s *Server) cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Debug("failed to remove multipart temp files", zap.Error(err))
		}
	}
}

// readUploads loads every uploaded file part in order
func readUploads(r *http.Request) ([]extract.RawDocument, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File[filesField]
	docs := make([]extract.RawDocument, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		docs = append(docs, extract.RawDocument{
			Name:         fh.Filename,
			Size:         fh.Size,
			DeclaredType: fh.Header.Get("Content-Type"),
			Content:      content,
		})
	}
	return docs, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return io.ReadAll(f)
}

// reportExtractionFailures logs failed files and sets the failure headers
func (s *Server) reportExtractionFailures(w http.ResponseWriter, r *http.Request, results []extract.ExtractedText) {
	failed := extract.Failed(results)
	if len(failed) == 0 {
		return
	}

	names := make([]string, len(failed))
	escaped := make([]string, len(failed))
	for i, f := range failed {
		names[i] = f.SourceName
		escaped[i] = url.PathEscape(f.SourceName)
	}
	s.logger.Warn("some files could not be extracted",
		zap.Int("failed", len(failed)),
		zap.Int("total", len(results)),
		zap.String("files", strings.Join(names, ", ")),
		zap.String("request_id", middleware.GetRequestID(r.Context())))

	w.Header().Set(extractionErrorsHeader, strconv.Itoa(len(failed)))
	w.Header().Set(extractionFailedHeader, strings.Join(escaped, ","))
}

// analysisFailure maps an analysis error to a status and response body.
// Unusable model output is reported with 200 and the raw text.
func (s *Server) analysisFailure(r *http.Request, err error) (int, FailureResponse) {
	requestID := zap.String("request_id", middleware.GetRequestID(r.Context()))

	var (
		malformed *voice.MalformedOutputError
		invalid   *voice.ValidationError
	)
	switch {
	case errors.Is(err, voice.ErrNoInput):
		return http.StatusBadRequest, FailureResponse{Error: msgNoText}
	case errors.As(err, &malformed):
		s.logger.Warn("model output contained no usable JSON", zap.Error(err), requestID)
		return http.StatusOK, FailureResponse{Error: msgAnalysisFailed, Raw: malformed.Raw}
	case errors.As(err, &invalid):
		s.logger.Warn("model output is not a valid tone profile", zap.Strings("details", invalid.Fields), requestID)
		return http.StatusOK, FailureResponse{Error: msgAnalysisFailed, Raw: invalid.Raw, Details: invalid.Fields}
	default:
		s.logger.Error("tone analysis failed", zap.Error(err), requestID)
		return HTTPStatus(err), FailureResponse{Error: msgAnalysisFailed}
	}
}
