package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/ats-evaluator/internal/logger"
	"alfredoptarigan/ats-evaluator/internal/models"
)

// ExtractionOrchestrator turns raw inputs into the fact record used by the model stages.
type ExtractionOrchestrator interface {
	Run(ctx context.Context, inputs models.RawInputs) (*models.Extraction, error)
}

type extractionOrchestrator struct {
	gateway  ModelGateway
	prompts  *PromptBuilder
	finalize bool
	log      *zap.Logger
	preview  int
}

func NewExtractionOrchestrator(gateway ModelGateway, prompts *PromptBuilder, finalize bool, log *zap.Logger, previewLength int) ExtractionOrchestrator {
	return &extractionOrchestrator{
		gateway:  gateway,
		prompts:  prompts,
		finalize: finalize,
		log:      log.Named("extraction"),
		preview:  previewLength,
	}
}

// Run implements ExtractionOrchestrator. The heuristic extractors run
// concurrently; finalization only starts once all three are done.
func (o *extractionOrchestrator) Run(ctx context.Context, inputs models.RawInputs) (*models.Extraction, error) {
	var (
		score float64
		years int
		name  string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		score = ComputeATSScore(inputs.JobDescription, inputs.Resume)
		return gctx.Err()
	})
	g.Go(func() error {
		years = ExtractYearsOfExperience(inputs.JobDescription)
		return gctx.Err()
	})
	g.Go(func() error {
		name = ExtractCandidateName(inputs.Resume)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to extract facts: %w", err)
	}

	facts := models.FactRecord{
		CandidateName:     &name,
		YearsOfExperience: &years,
		ATSScore:          &score,
	}
	o.log.Info("heuristic facts extracted",
		zap.String("candidate", facts.Name()),
		zap.Int("years_of_experience", facts.Years()),
		zap.Float64("ats_score", facts.Score()),
	)

	extraction := &models.Extraction{
		Facts:        facts,
		Finalization: models.Finalization{Status: models.FinalizationSkipped},
	}
	if o.finalize {
		finalized, finalization, err := o.finalizeFacts(ctx, facts)
		if err != nil {
			return nil, fmt.Errorf("failed to finalize facts: %w", err)
		}
		extraction.Facts, extraction.Finalization = finalized, finalization
	}

	return extraction, nil
}

// finalizeFacts asks the primary model to restate the facts. Unusable model
// text keeps the heuristic facts and flags the result as raw; a failed model
// call is returned as an error.
func (o *extractionOrchestrator) finalizeFacts(ctx context.Context, facts models.FactRecord) (models.FactRecord, models.Finalization, error) {
	data, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return facts, models.Finalization{}, fmt.Errorf("failed to encode facts: %w", err)
	}

	conv := Conversation{{
		Role:    RoleUser,
		Content: o.prompts.Render(PromptFinalizeUser, map[string]string{"facts_json": string(data)}),
	}}

	raw, err := o.gateway.Invoke(ctx, conv, o.gateway.PrimaryModel())
	if err != nil {
		return facts, models.Finalization{}, err
	}

	doc, err := CoerceJSON(raw)
	if err != nil {
		o.log.Warn("finalization output not usable, keeping heuristic facts",
			zap.Error(err),
			zap.String("raw_output", logger.TruncateForLog(raw, o.preview)),
		)
		return facts, models.Finalization{Status: models.FinalizationRaw, Raw: raw}, nil
	}

	return applyFinalizedFacts(facts, doc), models.Finalization{Status: models.FinalizationCoerced}, nil
}

// applyFinalizedFacts overrides facts with well-typed, in-range values from doc.
func applyFinalizedFacts(facts models.FactRecord, doc map[string]any) models.FactRecord {
	out := facts

	if name, ok := lookup(doc, keyCandidateName).(string); ok {
		if name = strings.TrimSpace(name); name != "" {
			out.CandidateName = &name
		}
	}
	if v, ok := asFloat(lookup(doc, keyYearsOfExperience)); ok && v >= 0 && v == float64(int(v)) {
		years := int(v)
		out.YearsOfExperience = &years
	}
	if v, ok := asFloat(lookup(doc, keyATSScore)); ok && v >= 0 && v <= 100 {
		out.ATSScore = &v
	}

	return out
}
