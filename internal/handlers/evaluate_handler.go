package handlers

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/ats-evaluator/internal/models"
	"alfredoptarigan/ats-evaluator/internal/services"
)

const (
	FieldJobDescription = "jd_file"
	FieldResume         = "resume_pdf"
	HeaderRequestID     = "X-Request-ID"
)

var (
	jdContentTypes     = []string{"text/plain", "application/octet-stream"}
	resumeContentTypes = []string{"application/pdf", "application/octet-stream"}
)

type EvaluationHandler struct {
	worker      services.Worker
	pdfParser   services.PDFParserService
	maxFileSize int64
	log         *zap.Logger
}

func NewEvaluationHandler(
	worker services.Worker,
	pdfParser services.PDFParserService,
	maxFileSize int64,
	log *zap.Logger,
) *EvaluationHandler {
	return &EvaluationHandler{
		worker:      worker,
		pdfParser:   pdfParser,
		maxFileSize: maxFileSize,
		log:         log.Named("http"),
	}
}

// HandleEvaluate handles POST /api/evaluate
func (h *EvaluationHandler) HandleEvaluate(c *fiber.Ctx) error {
	evalID := uuid.New()
	c.Set(HeaderRequestID, evalID.String())

	jdFile, err := h.formFile(c, FieldJobDescription, jdContentTypes)
	if err != nil {
		return err
	}
	resumeFile, err := h.formFile(c, FieldResume, resumeContentTypes)
	if err != nil {
		return err
	}

	jdBytes, err := readFile(jdFile)
	if err != nil {
		return err
	}
	resumeBytes, err := readFile(resumeFile)
	if err != nil {
		return err
	}

	resumeText, err := h.pdfParser.ExtractText(resumeBytes)
	if err != nil {
		return fmt.Errorf("%s: %w", FieldResume, err)
	}

	inputs := models.RawInputs{
		JobDescription: strings.ToValidUTF8(string(jdBytes), ""),
		Resume:         resumeText,
	}

	h.log.Info("evaluation requested",
		zap.String("request_id", evalID.String()),
		zap.String("jd_file", jdFile.Filename),
		zap.String("resume_file", resumeFile.Filename),
	)

	report, err := h.worker.Submit(c.UserContext(), evalID, inputs)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(report)
}

func (h *EvaluationHandler) formFile(c *fiber.Ctx, field string, allowed []string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is required", services.ErrInvalidInput, field)
	}

	if file.Size > h.maxFileSize {
		return nil, fmt.Errorf("%w: %s too large. Max size: %d bytes", services.ErrInvalidInput, field, h.maxFileSize)
	}

	contentType := file.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !contains(allowed, mediaType) {
		return nil, fmt.Errorf("%w: %s has unsupported content type %q", services.ErrInvalidInput, field, contentType)
	}

	return file, nil
}

func readFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Filename, err)
	}
	return data, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
