package search

import (
	"testing"

	"biseogo/internal/models"
)

func history() []models.Message {
	return []models.Message{
		{Role: models.RoleUser, Content: "오늘 날씨 어때?"},
		{Role: models.RoleAssistant, Content: "맑고 화창합니다."},
		{Role: models.RoleUser, Content: "내일 Weather는?"},
		{Role: models.RoleAssistant, Content: "비가 올 예정입니다."},
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	results := InConversation(history(), "weather")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Match.Content != "내일 Weather는?" {
		t.Fatalf("unexpected match: %q", results[0].Match.Content)
	}
	if results[0].Index != 2 {
		t.Fatalf("expected index 2, got %d", results[0].Index)
	}
}

func TestSearchNeighbors(t *testing.T) {
	h := history()

	// first message: no before
	results := InConversation(h, "날씨")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Before != nil {
		t.Fatalf("first message must have nil before")
	}
	if results[0].After == nil || results[0].After.Content != h[1].Content {
		t.Fatalf("unexpected after neighbor: %+v", results[0].After)
	}

	// last message: no after
	results = InConversation(h, "예정")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].After != nil {
		t.Fatalf("last message must have nil after")
	}
	if results[0].Before == nil || results[0].Before.Content != h[2].Content {
		t.Fatalf("unexpected before neighbor: %+v", results[0].Before)
	}
}

func TestSearchMultipleHits(t *testing.T) {
	results := InConversation(history(), "니다")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Index != 1 || results[1].Index != 3 {
		t.Fatalf("expected results in transcript order, got %d then %d", results[0].Index, results[1].Index)
	}
}

func TestSearchEmptyInputs(t *testing.T) {
	if got := InConversation(nil, "날씨"); len(got) != 0 {
		t.Fatalf("empty history must yield no results")
	}
	if got := InConversation(history(), "  "); len(got) != 0 {
		t.Fatalf("blank query must yield no results")
	}
}

func TestSearchRegexAndFallback(t *testing.T) {
	results := InConversation(history(), "날씨|weather")
	if len(results) != 2 {
		t.Fatalf("expected regex alternation to match twice, got %d", len(results))
	}

	// unparseable pattern falls back to substring matching
	h := []models.Message{{Role: models.RoleUser, Content: "가격이 1+(2 입니다"}}
	results = InConversation(h, "1+(2")
	if len(results) != 1 {
		t.Fatalf("expected substring fallback to match, got %d results", len(results))
	}
}
