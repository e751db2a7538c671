package parser

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// BandResult is a price band parsed out of an LLM response.
type BandResult struct {
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	Reason   string  `json:"reason"`
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ExtractJSONFromMarkdown extracts JSON from markdown code blocks. LLMs
// often wrap their output in ``` fences despite being told not to.
func ExtractJSONFromMarkdown(response string) string {
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		// No code block found, try to find a JSON object directly
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	content := response[startIdx+len(startMarker) : endIdx]

	// Remove the language identifier if present (e.g., "json")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ParseBand parses an LLM response into a price band. It first tries strict
// JSON (after stripping markdown fences); if that fails it falls back to the
// first two numeric tokens in the text, taken as min and max. Either way the
// bounds must be positive and ascending, otherwise an error is returned.
func ParseBand(response string) (*BandResult, error) {
	cleaned := strings.TrimSpace(response)
	if cleaned == "" {
		return nil, errors.New("empty response")
	}

	jsonContent := ExtractJSONFromMarkdown(cleaned)

	var result BandResult
	if err := json.Unmarshal([]byte(jsonContent), &result); err == nil {
		if err := validate(result.MinPrice, result.MaxPrice); err != nil {
			return nil, err
		}
		return &result, nil
	}

	// Loose grammar: first two numeric tokens in the raw text.
	tokens := numberPattern.FindAllString(cleaned, 2)
	if len(tokens) < 2 {
		return nil, errors.New("no price bounds found in response")
	}
	min, err1 := strconv.ParseFloat(tokens[0], 64)
	max, err2 := strconv.ParseFloat(tokens[1], 64)
	if err1 != nil || err2 != nil {
		return nil, errors.New("unparseable price bounds in response")
	}
	if err := validate(min, max); err != nil {
		return nil, err
	}
	return &BandResult{MinPrice: min, MaxPrice: max, Reason: truncate(cleaned, 200)}, nil
}

func validate(min, max float64) error {
	if min <= 0 || max <= 0 {
		return errors.New("price bounds must be positive")
	}
	if min > max {
		return errors.New("price bounds must be ascending")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
