package services

import (
	"regexp"
	"strconv"
)

var yearsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:(?:-|–|to)\s*(\d+))?\s*\+?\s*years?\b`)

// ExtractYearsOfExperience returns the years of experience asked for by the job
// description. The first match wins and ranges resolve to their upper bound.
func ExtractYearsOfExperience(jobDescription string) int {
	m := yearsPattern.FindStringSubmatch(jobDescription)
	if m == nil {
		return 0
	}

	value := m[1]
	if m[2] != "" {
		value = m[2]
	}

	years, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return years
}
