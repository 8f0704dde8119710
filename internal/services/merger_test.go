package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"alfredoptarigan/ats-evaluator/internal/models"
)

func TestMerge(t *testing.T) {
	evaluator := models.EvaluatorRecord{
		CandidateName:      "Jane Doe",
		ATSScore:           72.25,
		ResumeFeedback:     map[string]any{"strengths": []any{"Go"}},
		InterviewQuestions: []string{"Q1", "Q2", "Q1", "Q3"},
		Extra:              map[string]any{"SENIORITY": "senior"},
	}
	reviewer := models.ReviewerRecord{
		UpdatedQuestions: []string{"Q2", "Q4", "Q4", "Q5"},
		QuestionReview:   map[string]any{"improvement_suggestions": []any{"go deeper"}},
		Document: map[string]any{
			"UPDATED_QUESTIONS": []any{"Q2", "Q4", "Q4", "Q5"},
			"QUESTION_REVIEW":   map[string]any{"improvement_suggestions": []any{"go deeper"}},
		},
	}

	got := Merge(evaluator, reviewer)

	want := &models.FinalReport{
		Payload: map[string]models.CandidateReport{
			"Jane Doe": {
				ATSScore:               72.25,
				ResumeFeedback:         map[string]any{"strengths": []any{"Go"}},
				FinalQuestions:         []string{"Q1", "Q2", "Q3", "Q4", "Q5"},
				QuestionsReviewSummary: map[string]any{"improvement_suggestions": []any{"go deeper"}},
				AdditionalFields:       map[string]any{"SENIORITY": "senior"},
			},
		},
		Review: reviewer.Document,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(got, Merge(evaluator, reviewer)); diff != "" {
		t.Errorf("Merge() not idempotent (-first +second):\n%s", diff)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	evaluator := models.EvaluatorRecord{CandidateName: "A", InterviewQuestions: []string{"Q1", "Q1"}}
	reviewer := models.ReviewerRecord{UpdatedQuestions: []string{"Q2"}}

	Merge(evaluator, reviewer)

	assert.Equal(t, []string{"Q1", "Q1"}, evaluator.InterviewQuestions)
	assert.Equal(t, []string{"Q2"}, reviewer.UpdatedQuestions)
}

func TestMergeEmptyReviewer(t *testing.T) {
	got := Merge(models.EvaluatorRecord{CandidateName: "A", InterviewQuestions: []string{"Q1"}}, models.ReviewerRecord{})

	report := got.Payload["A"]
	assert.Equal(t, []string{"Q1"}, report.FinalQuestions)
	assert.NotNil(t, report.ResumeFeedback)
	assert.NotNil(t, report.QuestionsReviewSummary)
	assert.NotNil(t, got.Review)
	assert.Nil(t, report.AdditionalFields)
}
