package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/ats-evaluator/internal/logger"
	"alfredoptarigan/ats-evaluator/internal/models"
)

const (
	keyATSScore           = "ATS_SCORE"
	keyYearsOfExperience  = "YEARS_OF_EXPERIENCE"
	keyCandidateName      = "CANDIDATE_NAME"
	keyResumeFeedback     = "RESUME_FEEDBACK"
	keyInterviewQuestions = "INTERVIEW_QUESTIONS"
	keyUpdatedQuestions   = "UPDATED_QUESTIONS"
	keyQuestionReview     = "QUESTION_REVIEW"
)

type EvaluatorRunner interface {
	Run(ctx context.Context, inputs models.RawInputs, candidateName string) (*models.EvaluatorRecord, error)
}

type ReviewerRunner interface {
	Run(ctx context.Context, inputs models.RawInputs, questions []string, yearsOfExperience int) (*models.ReviewerRecord, error)
}

type evaluatorRunner struct {
	gateway ModelGateway
	prompts *PromptBuilder
	log     *zap.Logger
	preview int
}

func NewEvaluatorRunner(gateway ModelGateway, prompts *PromptBuilder, log *zap.Logger, previewLength int) EvaluatorRunner {
	return &evaluatorRunner{
		gateway: gateway,
		prompts: prompts,
		log:     log.Named("evaluator"),
		preview: previewLength,
	}
}

// Run implements EvaluatorRunner.
func (r *evaluatorRunner) Run(ctx context.Context, inputs models.RawInputs, candidateName string) (*models.EvaluatorRecord, error) {
	conv := r.prompts.BuildConversation(PromptEvaluatorSystem, PromptEvaluatorUser, map[string]string{
		"jd_text":        inputs.JobDescription,
		"resume_text":    inputs.Resume,
		"candidate_name": candidateName,
	})

	doc, err := invokeAndCoerce(ctx, r.gateway, conv, r.log, r.preview)
	if err != nil {
		return nil, fmt.Errorf("evaluator stage: %w", err)
	}

	return parseEvaluatorRecord(doc, candidateName), nil
}

type reviewerRunner struct {
	gateway ModelGateway
	prompts *PromptBuilder
	log     *zap.Logger
	preview int
}

func NewReviewerRunner(gateway ModelGateway, prompts *PromptBuilder, log *zap.Logger, previewLength int) ReviewerRunner {
	return &reviewerRunner{
		gateway: gateway,
		prompts: prompts,
		log:     log.Named("reviewer"),
		preview: previewLength,
	}
}

// Run implements ReviewerRunner. Callers must pass a non-empty question list.
func (r *reviewerRunner) Run(ctx context.Context, inputs models.RawInputs, questions []string, yearsOfExperience int) (*models.ReviewerRecord, error) {
	conv := r.prompts.BuildConversation(PromptReviewerSystem, PromptReviewerUser, map[string]string{
		"jd_text":         inputs.JobDescription,
		"resume_text":     inputs.Resume,
		"yoe":             strconv.Itoa(yearsOfExperience),
		"questions_block": questionsBlock(questions),
	})

	doc, err := invokeAndCoerce(ctx, r.gateway, conv, r.log, r.preview)
	if err != nil {
		return nil, fmt.Errorf("reviewer stage: %w", err)
	}

	return parseReviewerRecord(doc), nil
}

func invokeAndCoerce(ctx context.Context, gateway ModelGateway, conv Conversation, log *zap.Logger, preview int) (map[string]any, error) {
	raw, err := gateway.Invoke(ctx, conv, "")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyModelOutput
	}

	doc, err := CoerceJSON(raw)
	if err != nil {
		log.Warn("could not coerce model output",
			zap.Error(err),
			zap.String("raw_output", logger.TruncateForLog(raw, preview)),
		)
		return nil, err
	}
	return doc, nil
}

func questionsBlock(questions []string) string {
	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = "- " + q
	}
	return strings.Join(lines, "\n")
}

// parseEvaluatorRecord locates the candidate block in doc. Models key it by the
// candidate name, which is not always the name they were given.
func parseEvaluatorRecord(doc map[string]any, candidateName string) *models.EvaluatorRecord {
	block := candidateBlock(doc, candidateName)

	record := &models.EvaluatorRecord{
		CandidateName:      candidateName,
		ResumeFeedback:     map[string]any{},
		InterviewQuestions: stringList(lookup(block, keyInterviewQuestions)),
		Extra:              map[string]any{},
	}

	if v, ok := asFloat(lookup(block, keyATSScore)); ok {
		record.ATSScore = v
	}
	if v, ok := asFloat(lookup(block, keyYearsOfExperience)); ok {
		record.YearsOfExperience = int(v)
	}

	switch fb := lookup(block, keyResumeFeedback).(type) {
	case nil:
	case map[string]any:
		record.ResumeFeedback = fb
	default:
		record.ResumeFeedback = map[string]any{"summary": fb}
	}

	for k, v := range block {
		switch strings.ToUpper(k) {
		case keyATSScore, keyYearsOfExperience, keyResumeFeedback, keyInterviewQuestions, keyCandidateName:
			continue
		}
		record.Extra[k] = v
	}

	return record
}

func candidateBlock(doc map[string]any, candidateName string) map[string]any {
	want := strings.ToLower(strings.TrimSpace(candidateName))
	for k, v := range doc {
		if block, ok := v.(map[string]any); ok && strings.ToLower(strings.TrimSpace(k)) == want {
			return block
		}
	}

	if lookup(doc, keyInterviewQuestions) != nil {
		return doc
	}

	var only map[string]any
	objects := 0
	for _, v := range doc {
		if block, ok := v.(map[string]any); ok {
			only = block
			objects++
		}
	}
	if objects == 1 {
		return only
	}
	return doc
}

func parseReviewerRecord(doc map[string]any) *models.ReviewerRecord {
	record := &models.ReviewerRecord{
		UpdatedQuestions: stringList(lookup(doc, keyUpdatedQuestions)),
		QuestionReview:   map[string]any{},
		Document:         doc,
	}

	if review, ok := lookup(doc, keyQuestionReview).(map[string]any); ok {
		record.QuestionReview = review
	}

	return record
}

// lookup finds key in m ignoring case, preferring an exact match.
func lookup(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

// stringList accepts a list of strings or of objects carrying a "question" field.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch it := item.(type) {
		case string:
			s = it
		case map[string]any:
			s, _ = lookup(it, "question").(string)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(n, "%")), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
