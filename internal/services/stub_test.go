package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// stubGateway answers each Invoke with the first reply whose marker appears in
// the user message. It records every conversation it was sent.
type stubGateway struct {
	mu      sync.Mutex
	replies []stubReply
	calls   []Conversation
	models  []string
}

type stubReply struct {
	marker string
	text   string
	err    error
}

func (s *stubGateway) Invoke(_ context.Context, conv Conversation, preferredModel string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, conv)
	s.models = append(s.models, preferredModel)

	user := conv[len(conv)-1].Content
	for _, r := range s.replies {
		if strings.Contains(user, r.marker) {
			return r.text, r.err
		}
	}
	return "", fmt.Errorf("no stub reply for %q", user)
}

func (s *stubGateway) PrimaryModel() string {
	return "primary"
}

func (s *stubGateway) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testPrompts() *PromptBuilder {
	return &PromptBuilder{templates: map[string]string{
		PromptEvaluatorSystem: "evaluator system",
		PromptEvaluatorUser:   "EVALUATE $candidate_name\nJD: $jd_text\nRESUME: $resume_text",
		PromptReviewerSystem:  "reviewer system",
		PromptReviewerUser:    "REVIEW yoe=$yoe\nJD: $jd_text\nRESUME: $resume_text\n$questions_block",
		PromptFinalizeUser:    "FINALIZE\n$facts_json",
	}}
}
