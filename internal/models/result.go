package models

type CandidateReport struct {
	ATSScore               float64        `json:"ATS_SCORE"`
	ResumeFeedback         map[string]any `json:"RESUME_FEEDBACK"`
	FinalQuestions         []string       `json:"FINAL_QUESTIONS"`
	QuestionsReviewSummary map[string]any `json:"QUESTIONS_REVIEW_SUMMARY"`
	// AdditionalFields carries candidate fields the evaluator declared beyond the contracted ones.
	AdditionalFields map[string]any `json:"ADDITIONAL_FIELDS,omitempty"`
}

// FactsSummary exposes the extracted facts and the finalization flag to API clients.
type FactsSummary struct {
	CandidateName     string       `json:"CANDIDATE_NAME"`
	YearsOfExperience int          `json:"YEARS_OF_EXPERIENCE"`
	ATSScore          float64      `json:"ATS_SCORE"`
	Finalization      Finalization `json:"finalization"`
}

type FinalReport struct {
	Payload map[string]CandidateReport `json:"payload"`
	Review  map[string]any             `json:"review"`
	Facts   *FactsSummary              `json:"facts,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	Kind  string `json:"kind,omitempty"`
}
