// Package search scans a transcript for messages matching a query,
// returning each hit with its immediate neighbors for context.
package search

import (
	"regexp"
	"strings"

	"biseogo/internal/models"
)

// InConversation matches query case-insensitively against message content,
// as a regular expression when it compiles and as a plain substring
// otherwise, so user input can never fail the search.
func InConversation(history []models.Message, query string) []models.SearchResult {
	if strings.TrimSpace(query) == "" {
		return []models.SearchResult{}
	}

	match := matcherFor(query)
	results := make([]models.SearchResult, 0)
	for i, msg := range history {
		if !match(msg.Content) {
			continue
		}
		result := models.SearchResult{Match: msg, Index: i}
		if i > 0 {
			before := history[i-1]
			result.Before = &before
		}
		if i < len(history)-1 {
			after := history[i+1]
			result.After = &after
		}
		results = append(results, result)
	}
	return results
}

func matcherFor(query string) func(string) bool {
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		lowered := strings.ToLower(query)
		return func(content string) bool {
			return strings.Contains(strings.ToLower(content), lowered)
		}
	}
	return re.MatchString
}
