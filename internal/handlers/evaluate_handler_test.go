package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/ats-evaluator/internal/models"
	"alfredoptarigan/ats-evaluator/internal/services"
)

type stubWorker struct {
	report *models.FinalReport
	err    error
	inputs []models.RawInputs
}

func (s *stubWorker) Start(context.Context) {}
func (s *stubWorker) Stop()                 {}

func (s *stubWorker) Submit(_ context.Context, _ uuid.UUID, inputs models.RawInputs) (*models.FinalReport, error) {
	s.inputs = append(s.inputs, inputs)
	return s.report, s.err
}

type stubParser struct {
	text string
	err  error
}

func (s stubParser) ExtractText([]byte) (string, error) { return s.text, s.err }

func (s stubParser) ExtractTextFromFile(string) (string, error) { return s.text, s.err }

type upload struct {
	field       string
	filename    string
	contentType string
	body        []byte
}

func newTestApp(w services.Worker, parser services.PDFParserService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	h := NewEvaluationHandler(w, parser, 1024, zap.NewNop())
	app.Get("/healthz", HandleHealth)
	app.Post("/api/evaluate", h.HandleEvaluate)
	return app
}

func multipartRequest(t *testing.T, uploads ...upload) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, u := range uploads {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, u.field, u.filename))
		if u.contentType != "" {
			header.Set("Content-Type", u.contentType)
		}
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(u.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validUploads() []upload {
	return []upload{
		{field: FieldJobDescription, filename: "jd.txt", contentType: "text/plain; charset=utf-8", body: []byte("Go engineer\xff, 3 years")},
		{field: FieldResume, filename: "cv.pdf", contentType: "application/pdf", body: []byte("%PDF-1.4")},
	}
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

func TestHandleEvaluate(t *testing.T) {
	report := &models.FinalReport{
		Payload: map[string]models.CandidateReport{"Jane Doe": {ATSScore: 40, FinalQuestions: []string{"Q1"}}},
		Review:  map[string]any{"UPDATED_QUESTIONS": []any{"Q1"}},
	}
	w := &stubWorker{report: report}
	app := newTestApp(w, stubParser{text: "Jane Doe\nGo developer"})

	resp, err := app.Test(multipartRequest(t, validUploads()...))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = uuid.Parse(resp.Header.Get(HeaderRequestID))
	assert.NoError(t, err)

	var got models.FinalReport
	decodeBody(t, resp, &got)
	assert.Equal(t, []string{"Q1"}, got.Payload["Jane Doe"].FinalQuestions)

	require.Len(t, w.inputs, 1)
	assert.Equal(t, "Go engineer, 3 years", w.inputs[0].JobDescription)
	assert.Equal(t, "Jane Doe\nGo developer", w.inputs[0].Resume)
}

func TestHandleEvaluateOctetStream(t *testing.T) {
	w := &stubWorker{report: &models.FinalReport{}}
	app := newTestApp(w, stubParser{text: "resume"})

	resp, err := app.Test(multipartRequest(t,
		upload{field: FieldJobDescription, filename: "jd.txt", contentType: "application/octet-stream", body: []byte("jd")},
		upload{field: FieldResume, filename: "cv.pdf", body: []byte("%PDF")},
	))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleEvaluateValidation(t *testing.T) {
	tests := []struct {
		name    string
		uploads []upload
		want    string
	}{
		{
			name:    "missing resume",
			uploads: validUploads()[:1],
			want:    "resume_pdf is required",
		},
		{
			name:    "missing jd",
			uploads: validUploads()[1:],
			want:    "jd_file is required",
		},
		{
			name: "wrong jd type",
			uploads: []upload{
				{field: FieldJobDescription, filename: "jd.pdf", contentType: "application/pdf", body: []byte("x")},
				validUploads()[1],
			},
			want: "unsupported content type",
		},
		{
			name: "wrong resume type",
			uploads: []upload{
				validUploads()[0],
				{field: FieldResume, filename: "cv.docx", contentType: "application/msword", body: []byte("x")},
			},
			want: "unsupported content type",
		},
		{
			name: "too large",
			uploads: []upload{
				{field: FieldJobDescription, filename: "jd.txt", contentType: "text/plain", body: bytes.Repeat([]byte("a"), 2048)},
				validUploads()[1],
			},
			want: "too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &stubWorker{report: &models.FinalReport{}}
			app := newTestApp(w, stubParser{text: "resume"})

			resp, err := app.Test(multipartRequest(t, tt.uploads...))
			require.NoError(t, err)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var body models.ErrorResponse
			decodeBody(t, resp, &body)
			assert.Contains(t, body.Error, tt.want)
			assert.Equal(t, "invalid_input", body.Kind)
			assert.Empty(t, w.inputs)
		})
	}
}

func TestHandleEvaluateUnreadablePDF(t *testing.T) {
	w := &stubWorker{}
	app := newTestApp(w, stubParser{err: fmt.Errorf("%w: no text content found in PDF", services.ErrInvalidInput)})

	resp, err := app.Test(multipartRequest(t, validUploads()...))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, w.inputs)
}

func TestHandleEvaluatePipelineErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
		kind string
	}{
		{err: fmt.Errorf("evaluator output invalid: %w", services.ErrMissingRequiredField), code: http.StatusInternalServerError, kind: "missing_required_field"},
		{err: fmt.Errorf("%w: both failed", services.ErrModelUnavailable), code: http.StatusBadGateway, kind: "model_unavailable"},
		{err: services.ErrQueueFull, code: http.StatusServiceUnavailable, kind: "unavailable"},
		{err: context.DeadlineExceeded, code: http.StatusGatewayTimeout, kind: "timeout"},
		{err: errors.New("unexpected"), code: http.StatusInternalServerError, kind: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			app := newTestApp(&stubWorker{err: tt.err}, stubParser{text: "resume"})

			resp, err := app.Test(multipartRequest(t, validUploads()...))
			require.NoError(t, err)

			assert.Equal(t, tt.code, resp.StatusCode)
			var body models.ErrorResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.kind, body.Kind)
		})
	}
}

func TestHandleHealth(t *testing.T) {
	app := newTestApp(&stubWorker{}, stubParser{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body models.HealthResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body.Status)
}

func TestErrorHandlerFiberError(t *testing.T) {
	app := newTestApp(&stubWorker{}, stubParser{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
