package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/brand-voice/internal/extract"
	"github.com/jonathan/brand-voice/internal/llm"
	"github.com/jonathan/brand-voice/internal/server/middleware"
	"github.com/jonathan/brand-voice/internal/server/ratelimit"
	"github.com/jonathan/brand-voice/internal/types"
	"github.com/jonathan/brand-voice/internal/voice"
)

type upload struct {
	name        string
	contentType string
	data        string
}

// newTestServer creates a server backed by the mock LLM with rate limiting disabled
func newTestServer(t *testing.T, mock *llm.MockClient) http.Handler {
	t.Helper()
	return newTestServerWithLimits(t, mock, &ratelimit.Config{Enabled: false})
}

func newTestServerWithLimits(t *testing.T, mock *llm.MockClient, limits *ratelimit.Config) http.Handler {
	t.Helper()
	s := New(Config{Port: 0, MaxUploadBytes: 5 << 20, RateLimit: limits},
		voice.NewService(mock, nil),
		extract.New(extract.DefaultOptions(), nil),
		nil)
	t.Cleanup(s.rateLimiter.Stop)
	return s.Handler()
}

func multipartRequest(t *testing.T, path string, texts []string, files []upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, text := range texts {
		require.NoError(t, mw.WriteField(textSamplesField, text))
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, filesField, f.name))
		if f.contentType != "" {
			header.Set("Content-Type", f.contentType)
		}
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, path string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func validProfile() *types.ToneProfile {
	return &types.ToneProfile{
		Formality:          "formal",
		Tone:               "measured and precise",
		SentenceLength:     "long",
		VocabularyPatterns: []string{"technical terms", "passive voice", "hedged claims"},
		ToneKeywords:       []string{"precise", "measured", "expert", "calm", "thorough"},
	}
}

func TestHealthEndpoint(t *testing.T) {
	w := serve(newTestServer(t, llm.NewMockClient()), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeMap(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	mock := llm.NewMockClient()
	w := serve(newTestServer(t, mock), httptest.NewRequest(http.MethodOptions, "/analyze", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), extractionErrorsHeader)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), extractionFailedHeader)
	assert.Empty(t, mock.Calls())
}

func TestAnalyze_TextSamples(t *testing.T) {
	mock := llm.NewMockClient()
	handler := newTestServer(t, mock)

	w := serve(handler, multipartRequest(t, "/analyze", []string{"We ship fast.", "Questions? Just ask."}, nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile types.ToneProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.NoError(t, profile.Validate())
	assert.Equal(t, "semi-formal", profile.Formality)
	assert.Empty(t, w.Header().Get(extractionErrorsHeader))
	assert.Empty(t, w.Header().Get(extractionFailedHeader))

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "We ship fast."+extract.Separator+"Questions? Just ask.")
	assert.Equal(t, llm.AnalysisTemperature, calls[0].Temperature)
}

func TestAnalyze_URLEncodedForm(t *testing.T) {
	mock := llm.NewMockClient()
	form := url.Values{textSamplesField: {"Plain and friendly."}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := serve(newTestServer(t, mock), req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, mock.Calls(), 1)
	assert.Contains(t, mock.Calls()[0].Prompt, "Plain and friendly.")
}

func TestAnalyze_FilesWithPartialFailure(t *testing.T) {
	mock := llm.NewMockClient()
	handler := newTestServer(t, mock)

	req := multipartRequest(t, "/analyze", nil, []upload{
		{name: "about.txt", contentType: "text/plain", data: "We plant a tree for every order."},
		{name: "deck.pdf", contentType: "application/pdf", data: "not really a pdf"},
	})
	w := serve(handler, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get(extractionErrorsHeader))
	assert.Equal(t, "deck.pdf", w.Header().Get(extractionFailedHeader))
	require.Len(t, mock.Calls(), 1)
	assert.Contains(t, mock.Calls()[0].Prompt, "We plant a tree for every order.")
}

func TestAnalyze_FailedFileNamesEscaped(t *testing.T) {
	mock := llm.NewMockClient()
	req := multipartRequest(t, "/analyze", nil, []upload{
		{name: "about.txt", contentType: "text/plain", data: "Plain words for plain people."},
		{name: "Q1, final.pdf", contentType: "application/pdf", data: "not a pdf"},
		{name: "logo.png", contentType: "image/png", data: "\x89PNG"},
	})
	w := serve(newTestServer(t, mock), req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2", w.Header().Get(extractionErrorsHeader))

	parts := strings.Split(w.Header().Get(extractionFailedHeader), ",")
	require.Len(t, parts, 2)
	names := make([]string, len(parts))
	for i, p := range parts {
		name, err := url.PathUnescape(p)
		require.NoError(t, err)
		names[i] = name
	}
	assert.Equal(t, []string{"Q1, final.pdf", "logo.png"}, names)
}

func TestAnalyze_NoInput(t *testing.T) {
	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{name: "empty multipart", req: func(t *testing.T) *http.Request {
			return multipartRequest(t, "/analyze", nil, nil)
		}},
		{name: "blank samples", req: func(t *testing.T) *http.Request {
			return multipartRequest(t, "/analyze", []string{"  ", "\n"}, nil)
		}},
		{name: "only failed files", req: func(t *testing.T) *http.Request {
			return multipartRequest(t, "/analyze", nil, []upload{{name: "logo.png", contentType: "image/png", data: "\x89PNG\r\n\x1a\n"}})
		}},
		{name: "no body", req: func(*testing.T) *http.Request {
			return httptest.NewRequest(http.MethodPost, "/analyze", nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockClient()
			w := serve(newTestServer(t, mock), tt.req(t))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, map[string]any{"error": "No text provided"}, decodeMap(t, w))
			assert.Empty(t, mock.Calls(), "no model call without input")
		})
	}
}

func TestAnalyze_MalformedModelOutput(t *testing.T) {
	mock := &llm.MockClient{Response: "Sorry, I cannot help with that."}
	w := serve(newTestServer(t, mock), multipartRequest(t, "/analyze", []string{"hello"}, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeMap(t, w)
	assert.Equal(t, "Tone analysis failed", resp["error"])
	assert.Equal(t, "Sorry, I cannot help with that.", resp["raw"])
	assert.NotContains(t, resp, "details")
}

func TestAnalyze_InvalidProfileFromModel(t *testing.T) {
	mock := &llm.MockClient{Response: `{"formality": "casual", "tone": "fun"}`}
	w := serve(newTestServer(t, mock), multipartRequest(t, "/analyze", []string{"hello"}, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeMap(t, w)
	assert.Equal(t, "Tone analysis failed", resp["error"])
	assert.Equal(t, mock.Response, resp["raw"])
	details, ok := resp["details"].([]any)
	require.True(t, ok, "details should be a list")
	assert.NotEmpty(t, details)
}

func TestAnalyze_ProviderFailure(t *testing.T) {
	mock := &llm.MockClient{Err: errors.New("connection refused")}
	w := serve(newTestServer(t, mock), multipartRequest(t, "/analyze", []string{"hello"}, nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"error": "Tone analysis failed"}, decodeMap(t, w))
}

func TestAnalyzeStream(t *testing.T) {
	mock := llm.NewMockClient()
	req := multipartRequest(t, "/analyze/stream", []string{"hello"}, []upload{
		{name: "notes.txt", contentType: "text/plain", data: "Short and sweet."},
	})
	w := serve(newTestServer(t, mock), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	extraction := strings.Index(body, "event: extraction")
	status := strings.Index(body, "event: status")
	profile := strings.Index(body, "event: profile")
	complete := strings.Index(body, "event: complete")
	assert.True(t, extraction >= 0 && extraction < status && status < profile && profile < complete, body)
	assert.Contains(t, body, `"formality":"semi-formal"`)
	assert.Contains(t, body, `"status":"completed"`)
}

func TestAnalyzeStream_Failure(t *testing.T) {
	mock := &llm.MockClient{Response: "no json"}
	w := serve(newTestServer(t, mock), multipartRequest(t, "/analyze/stream", []string{"hello"}, nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "event: error")
	assert.Contains(t, body, `"raw":"no json"`)
	assert.Contains(t, body, `"status":"failed"`)
	assert.NotContains(t, body, "event: profile")
}

func TestAnalyzeStream_NoInput(t *testing.T) {
	mock := llm.NewMockClient()
	w := serve(newTestServer(t, mock), multipartRequest(t, "/analyze/stream", nil, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No text provided", decodeMap(t, w)["error"])
	assert.Empty(t, mock.Calls())
}

func TestExtract(t *testing.T) {
	mock := llm.NewMockClient()
	req := multipartRequest(t, "/extract", nil, []upload{
		{name: "b.txt", contentType: "text/plain", data: "second? no, first"},
		{name: "a.pdf", contentType: "application/pdf", data: "%PDF-1.4 broken"},
		{name: "c.txt", data: "sniffed as text"},
	})
	w := serve(newTestServer(t, mock), req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get(extractionErrorsHeader))
	assert.Equal(t, "a.pdf", w.Header().Get(extractionFailedHeader))

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 3)

	assert.Equal(t, "b.txt", resp.Files[0].SourceName)
	assert.Equal(t, "second? no, first", resp.Files[0].Text)
	assert.Equal(t, "a.pdf", resp.Files[1].SourceName)
	assert.NotEmpty(t, resp.Files[1].Error)
	assert.Empty(t, resp.Files[1].Text)
	assert.Equal(t, "c.txt", resp.Files[2].SourceName)
	assert.Equal(t, "sniffed as text", resp.Files[2].Text)

	assert.Empty(t, mock.Calls(), "extraction never calls the model")
}

func TestExtract_NoFiles(t *testing.T) {
	w := serve(newTestServer(t, llm.NewMockClient()), multipartRequest(t, "/extract", []string{"text only"}, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No files provided", decodeMap(t, w)["error"])
}

func TestGenerate_Success(t *testing.T) {
	mock := llm.NewMockClient()
	w := serve(newTestServer(t, mock), jsonRequest(t, "/generate", GenerateRequest{Profile: validProfile(), Topic: "spring launch"}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var content types.GeneratedContent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &content))
	assert.Contains(t, content.Text, "spring launch")
	assert.Contains(t, content.HTML, "<strong>spring launch</strong>")
	assert.Positive(t, content.WordCount)
	assert.False(t, content.Trimmed)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.GenerationTemperature, calls[0].Temperature)
	assert.Contains(t, calls[0].Prompt, "measured and precise")
}

func TestGenerate_Trimmed(t *testing.T) {
	mock := &llm.MockClient{Response: strings.Repeat("word ", 250)}
	w := serve(newTestServer(t, mock), jsonRequest(t, "/generate", GenerateRequest{Profile: validProfile(), Topic: "x"}))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeMap(t, w)
	assert.Equal(t, true, resp["trimmed"])
	assert.Equal(t, float64(250), resp["word_count"])
}

func TestGenerate_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  *http.Request
	}{
		{name: "missing topic", req: jsonRequest(t, "/generate", GenerateRequest{Profile: validProfile()})},
		{name: "blank topic", req: jsonRequest(t, "/generate", GenerateRequest{Profile: validProfile(), Topic: "   "})},
		{name: "missing profile", req: jsonRequest(t, "/generate", map[string]string{"topic": "launch"})},
		{name: "null profile", req: jsonRequest(t, "/generate", map[string]any{"profile": nil, "topic": "launch"})},
		{name: "empty body", req: httptest.NewRequest(http.MethodPost, "/generate", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockClient()
			w := serve(newTestServer(t, mock), tt.req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, map[string]any{"error": "Missing profile or topic"}, decodeMap(t, w))
			assert.Empty(t, mock.Calls())
		})
	}
}

func TestGenerate_InvalidProfile(t *testing.T) {
	profile := validProfile()
	profile.Formality = "casual"
	profile.ToneKeywords = []string{"one"}

	mock := llm.NewMockClient()
	w := serve(newTestServer(t, mock), jsonRequest(t, "/generate", GenerateRequest{Profile: profile, Topic: "launch"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeMap(t, w)
	assert.Equal(t, "Invalid profile", resp["error"])
	details := fmt.Sprint(resp["details"])
	assert.Contains(t, details, "formality")
	assert.Contains(t, details, "tone_keywords")
	assert.Empty(t, mock.Calls())
}

func TestGenerate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"profile": [}`))
	w := serve(newTestServer(t, llm.NewMockClient()), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMap(t, w)["error"], "Invalid request body")
}

func TestGenerate_TopicTooLong(t *testing.T) {
	mock := llm.NewMockClient()
	req := jsonRequest(t, "/generate", GenerateRequest{Profile: validProfile(), Topic: strings.Repeat("x", maxTopicChars+1)})
	w := serve(newTestServer(t, mock), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMap(t, w)["error"], "topic")
	assert.Empty(t, mock.Calls())
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	payload := `{"topic": "` + strings.Repeat("a", generateBodyLimit+10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(payload))
	w := serve(newTestServer(t, llm.NewMockClient()), req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", decodeMap(t, w)["error"])
}

func TestGenerate_ProviderFailure(t *testing.T) {
	mock := &llm.MockClient{Err: &llm.APICallError{Provider: llm.ProviderGroq, Message: "provider did not respond within 60s"}}
	w := serve(newTestServer(t, mock), jsonRequest(t, "/generate", GenerateRequest{Profile: validProfile(), Topic: "launch"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"error": "Content generation failed"}, decodeMap(t, w))
}

func TestRateLimit_Generate(t *testing.T) {
	limits := &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/generate", Method: http.MethodPost, Limit: 1, Window: time.Hour, Burst: 1},
		},
	}
	handler := newTestServerWithLimits(t, llm.NewMockClient(), limits)

	first := serve(handler, jsonRequest(t, "/generate", GenerateRequest{Profile: validProfile(), Topic: "a"}))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := serve(handler, jsonRequest(t, "/generate", GenerateRequest{Profile: validProfile(), Topic: "b"}))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeMap(t, second)["error"])

	// Health stays available
	health := serve(handler, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	w := serve(newTestServer(t, llm.NewMockClient()), httptest.NewRequest(http.MethodGet, "/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
