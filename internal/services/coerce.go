package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+.-]*[ \t]*\r?\n?")
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// CoerceJSON repairs the usual defects of model generated JSON and parses the
// result into an object. It fails with ErrMalformedOutput when nothing usable remains.
func CoerceJSON(text string) (map[string]any, error) {
	s := strings.TrimSpace(text)
	s = leadingFence.ReplaceAllString(s, "")
	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))

	start := strings.Index(s, "{")
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedOutput)
	}
	s = s[start:]

	doc, err := decodeObject(s)
	if err == nil {
		return doc, nil
	}

	// Repairs only run on text that does not parse as is, so string content
	// and legitimately nested objects survive.
	repaired := trailingComma.ReplaceAllString(s, "$1")
	if doc, rerr := decodeObject(repaired); rerr == nil {
		return doc, nil
	}

	collapsed := strings.NewReplacer("{{", "{", "}}", "}").Replace(repaired)
	collapsed = trailingComma.ReplaceAllString(collapsed, "$1")
	if doc, cerr := decodeObject(collapsed); cerr == nil {
		return doc, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
}

// decodeObject reads the first JSON value of s and ignores whatever follows it.
func decodeObject(s string) (map[string]any, error) {
	var doc map[string]any
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is not an object")
	}
	return doc, nil
}
