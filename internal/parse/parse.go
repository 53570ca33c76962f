package parse

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"visor/internal/domain"
)

var chapterNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ChapterNumber returns the first number in a chapter title, so
// "Capítulo 12.50" is 12.5.
func ChapterNumber(title string) (float32, bool) {
	match := chapterNumberPattern.FindString(title)
	if match == "" {
		return 0, false
	}

	num, err := strconv.ParseFloat(match, 32)
	if err != nil {
		return 0, false
	}

	return float32(num), true
}

// ChapterSelection parses the user input for ranges and parts and returns the
// matching chapters in their original order
func ChapterSelection(input string, chapters []domain.Chapter) ([]domain.Chapter, error) {
	type span struct{ start, end float32 }

	var spans []span

	for _, part := range strings.Split(input, ",") {
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid range format: %s", part)
			}
			start, end, err := getRange(rangeParts)
			if err != nil {
				return nil, err
			}
			spans = append(spans, span{start, end})
		} else {
			chapter, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
			if err != nil {
				return nil, fmt.Errorf("invalid chapter number: %s", part)
			}
			spans = append(spans, span{float32(chapter), float32(chapter)})
		}
	}

	selected := make([]domain.Chapter, 0)
	for _, c := range chapters {
		num, ok := ChapterNumber(c.Title)
		if !ok {
			continue
		}

		if slices.ContainsFunc(spans, func(s span) bool { return num >= s.start && num <= s.end }) {
			selected = append(selected, c)
		}
	}

	return selected, nil
}

// getRange parses the user input for chapter ranges
func getRange(rangeParts []string) (float32, float32, error) {
	start, err := strconv.ParseFloat(strings.TrimSpace(rangeParts[0]), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start of range: %s", rangeParts[0])
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(rangeParts[1]), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end of range: %s", rangeParts[1])
	}

	if start > end {
		return 0, 0, fmt.Errorf("start of range should not be greater than end: %s-%s", rangeParts[0], rangeParts[1])
	}

	return float32(start), float32(end), nil
}

// ChapterNumbers returns the numbers found in the chapter titles, skipping
// titles without one.
func ChapterNumbers(chapters []domain.Chapter) []float32 {
	nums := make([]float32, 0, len(chapters))
	for _, c := range chapters {
		if num, ok := ChapterNumber(c.Title); ok {
			nums = append(nums, num)
		}
	}
	return nums
}

// MinMax returns the lowest and highest of values.
func MinMax[K cmp.Ordered](values []K) (K, K, error) {
	if len(values) == 0 {
		var zero K
		return zero, zero, fmt.Errorf("no values")
	}

	return slices.Min(values), slices.Max(values), nil
}
