package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/ats-evaluator/internal/models"
)

// EvaluatorService runs one resume evaluation end to end.
type EvaluatorService interface {
	Evaluate(ctx context.Context, evalID uuid.UUID, inputs models.RawInputs) (*models.FinalReport, error)
}

type evaluatorService struct {
	extraction ExtractionOrchestrator
	evaluator  EvaluatorRunner
	reviewer   ReviewerRunner
	timeout    time.Duration
	log        *zap.Logger
}

func NewEvaluatorService(
	extraction ExtractionOrchestrator,
	evaluator EvaluatorRunner,
	reviewer ReviewerRunner,
	timeout time.Duration,
	log *zap.Logger,
) EvaluatorService {
	return &evaluatorService{
		extraction: extraction,
		evaluator:  evaluator,
		reviewer:   reviewer,
		timeout:    timeout,
		log:        log.Named("pipeline"),
	}
}

// Evaluate implements EvaluatorService.
func (e *evaluatorService) Evaluate(ctx context.Context, evalID uuid.UUID, inputs models.RawInputs) (*models.FinalReport, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	log := e.log.With(zap.String("request_id", evalID.String()))
	started := time.Now()
	log.Info("starting evaluation")

	extraction, err := e.extraction.Run(ctx, inputs)
	if err != nil {
		return nil, err
	}
	facts := extraction.Facts
	if extraction.Finalization.LowConfidence() {
		log.Warn("finalized facts are low confidence, using heuristic values")
	}

	log.Info("running evaluator", zap.String("stage", "evaluator"), zap.String("candidate", facts.Name()))
	record, err := e.evaluator.Run(ctx, inputs, facts.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to run evaluator: %w", err)
	}

	// The extracted facts are authoritative over the model's restatement.
	record.ATSScore = facts.Score()
	record.YearsOfExperience = facts.Years()

	if len(record.InterviewQuestions) == 0 {
		return nil, fmt.Errorf("evaluator output invalid: %w: %s", ErrMissingRequiredField, keyInterviewQuestions)
	}

	log.Info("running reviewer", zap.String("stage", "reviewer"), zap.Int("questions", len(record.InterviewQuestions)))
	review, err := e.reviewer.Run(ctx, inputs, record.InterviewQuestions, facts.Years())
	if err != nil {
		return nil, fmt.Errorf("failed to run reviewer: %w", err)
	}

	report := Merge(*record, *review)
	report.Facts = &models.FactsSummary{
		CandidateName:     facts.Name(),
		YearsOfExperience: facts.Years(),
		ATSScore:          facts.Score(),
		Finalization:      extraction.Finalization,
	}

	log.Info("evaluation completed",
		zap.Duration("took", time.Since(started)),
		zap.Int("final_questions", len(report.Payload[facts.Name()].FinalQuestions)),
	)

	return report, nil
}
