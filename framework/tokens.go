package framework

import (
	"math"
	"strings"
)

// EstimateTokens performs a cheap heuristic conversion from characters to
// tokens. The four-characters-per-token rule is coarse but stable, which
// matters more than accuracy for budget checks.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return maxInt(1, int(math.Ceil(float64(len(text))/4.0)))
}

// EstimateMessageTokens sums the estimate over a message slice.
func EstimateMessageTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += EstimateTokens(m.Content)
	}
	return total
}

// TruncateToTokens trims text so its estimate fits within budget, appending an
// ellipsis when content was dropped. Budgets of zero or less clear the text.
func TruncateToTokens(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if EstimateTokens(text) <= budget {
		return text
	}
	limit := budget * 4
	if limit >= len(text) {
		return text
	}
	return strings.TrimSpace(text[:limit]) + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
