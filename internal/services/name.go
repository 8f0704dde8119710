package services

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"alfredoptarigan/ats-evaluator/internal/models"
)

var (
	headerName   = regexp.MustCompile(`^[A-Z][a-z]+(?:\s[A-Z][a-z]+)+$`)
	labeledName  = regexp.MustCompile(`(?i:(?:full\s+)?name)\s*[:\-]\s*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`)
	emailName    = regexp.MustCompile(`([a-zA-Z]+)\.([a-zA-Z]+)@`)
	contactHints = []string{"@", "email", "phone", "linkedin", "github", "www"}
)

// ExtractCandidateName guesses the candidate name from the resume text, trying the
// first line, then a labelled Name field, then a first.last email address.
func ExtractCandidateName(resume string) string {
	if first := firstNonBlankLine(resume); first != "" && looksLikeHeaderName(first) {
		return first
	}

	if m := labeledName.FindStringSubmatch(resume); m != nil {
		return strings.TrimSpace(m[1])
	}

	if m := emailName.FindStringSubmatch(resume); m != nil {
		title := cases.Title(language.English)
		return title.String(m[1]) + " " + title.String(m[2])
	}

	return models.DefaultCandidateName
}

func looksLikeHeaderName(line string) bool {
	if len(strings.Fields(line)) > 4 {
		return false
	}
	lower := strings.ToLower(line)
	for _, hint := range contactHints {
		if strings.Contains(lower, hint) {
			return false
		}
	}
	return headerName.MatchString(line)
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
