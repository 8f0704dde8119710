package models

// DefaultCandidateName is used whenever no name could be extracted.
const DefaultCandidateName = "Candidate"

// RawInputs holds the decoded job description and resume for one request.
type RawInputs struct {
	JobDescription string
	Resume         string
}

// FactRecord is the consolidated output of the heuristic extraction phase.
// Absent fields read as their defaults.
type FactRecord struct {
	CandidateName     *string  `json:"CANDIDATE_NAME,omitempty"`
	YearsOfExperience *int     `json:"YEARS_OF_EXPERIENCE,omitempty"`
	ATSScore          *float64 `json:"ATS_SCORE,omitempty"`
}

func (f FactRecord) Name() string {
	if f.CandidateName == nil || *f.CandidateName == "" {
		return DefaultCandidateName
	}
	return *f.CandidateName
}

func (f FactRecord) Years() int {
	if f.YearsOfExperience == nil {
		return 0
	}
	return *f.YearsOfExperience
}

func (f FactRecord) Score() float64 {
	if f.ATSScore == nil {
		return 0
	}
	return *f.ATSScore
}

type FinalizationStatus string

const (
	FinalizationSkipped FinalizationStatus = "skipped"
	FinalizationCoerced FinalizationStatus = "coerced"
	FinalizationRaw     FinalizationStatus = "raw"
)

// Finalization records what happened to the optional fact restatement call.
// Status raw means the model answer could not be used and Raw carries it verbatim.
type Finalization struct {
	Status FinalizationStatus `json:"status"`
	Raw    string             `json:"raw_output,omitempty"`
}

// LowConfidence reports whether finalization was attempted but produced nothing usable.
func (f Finalization) LowConfidence() bool {
	return f.Status == FinalizationRaw
}

type Extraction struct {
	Facts        FactRecord
	Finalization Finalization
}

// EvaluatorRecord is the evaluator stage output for a single candidate.
type EvaluatorRecord struct {
	CandidateName      string
	ATSScore           float64
	YearsOfExperience  int
	ResumeFeedback     map[string]any
	InterviewQuestions []string
	// Extra keeps any other fields the model declared for the candidate.
	Extra map[string]any
}

type ReviewerRecord struct {
	UpdatedQuestions []string
	QuestionReview   map[string]any
	// Document is the full coerced reviewer answer.
	Document map[string]any
}
