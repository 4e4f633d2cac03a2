package session

import (
	"regexp"
	"strconv"
)

// The first decimal-looking substring is the patient's answer; words
// around it are ignored ("pain is 7 today" reads as 7).
var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

func extractNumber(text string) (float64, bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
