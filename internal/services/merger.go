package services

import "alfredoptarigan/ats-evaluator/internal/models"

// Merge combines the evaluator and reviewer records into the final report.
// FINAL_QUESTIONS is the evaluator's questions followed by reviewer-only
// additions, first occurrence wins.
func Merge(evaluator models.EvaluatorRecord, reviewer models.ReviewerRecord) *models.FinalReport {
	questions := make([]string, 0, len(evaluator.InterviewQuestions)+len(reviewer.UpdatedQuestions))
	seen := make(map[string]struct{}, cap(questions))
	for _, list := range [][]string{evaluator.InterviewQuestions, reviewer.UpdatedQuestions} {
		for _, q := range list {
			if _, dup := seen[q]; dup {
				continue
			}
			seen[q] = struct{}{}
			questions = append(questions, q)
		}
	}

	feedback := evaluator.ResumeFeedback
	if feedback == nil {
		feedback = map[string]any{}
	}
	summary := reviewer.QuestionReview
	if summary == nil {
		summary = map[string]any{}
	}
	review := reviewer.Document
	if review == nil {
		review = map[string]any{}
	}

	return &models.FinalReport{
		Payload: map[string]models.CandidateReport{
			evaluator.CandidateName: {
				ATSScore:               evaluator.ATSScore,
				ResumeFeedback:         feedback,
				FinalQuestions:         questions,
				QuestionsReviewSummary: summary,
				AdditionalFields:       additionalFields(evaluator.Extra),
			},
		},
		Review: review,
	}
}

func additionalFields(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	return extra
}
