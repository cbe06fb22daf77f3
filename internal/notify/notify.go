// Package notify detects natural-language reminder requests embedded in a
// chat question. It only proposes a delay; scheduling is the client's job.
package notify

import (
	"regexp"
	"strconv"
)

var timePattern = regexp.MustCompile(`(\d+)\s*(분|초|시간)\s*뒤`)

// ParseNotificationTime returns the requested delay in seconds for inputs
// like "3분 뒤 알려줘". The first match wins. ok is false when the text
// carries no reminder request.
func ParseNotificationTime(text string) (seconds int, ok bool) {
	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "초":
		return n, true
	case "분":
		return n * 60, true
	case "시간":
		return n * 3600, true
	}
	return 0, false
}
