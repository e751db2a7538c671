package moderation

import (
	"regexp"
	"strings"
	"unicode"

	"marketplace-ai-service/models"
)

// Classifier applies an ordered set of pattern rules to chat messages.
// Rule priority is fixed: PhoneNumber, then Abusive, then Spam, then Safe.
// First match wins, so a message is never double-classified. Moderate is
// pure and total: it always returns exactly one status.
type Classifier struct {
	abusivePattern *regexp.Regexp
	spamPhrases    []string
}

var (
	// Common number separators people use to dodge naive digit filters.
	separatorPattern = regexp.MustCompile(`[\s\-().]`)
	digitRunPattern  = regexp.MustCompile(`\d+`)
	repeatedCharPat  = regexp.MustCompile(`(.)\1{5,}`)
)

// Phone number plausibility bounds on a contiguous digit run after
// separator stripping. Longer runs are order numbers or IDs, not phones.
const (
	minPhoneDigits = 10
	maxPhoneDigits = 14
)

// Spam heuristics thresholds.
const (
	maxPunctuation   = 5   // '!' and '?' beyond this count as shouting
	capitalRatio     = 0.7 // uppercase fraction above this is shouting
	minLettersForCap = 10  // short messages are exempt from the caps rule
	repeatedWordRun  = 3   // same word this many times in a row is spam
)

// NewClassifier builds a classifier from the configured abusive word list
// and spam phrase list. Matching is case-insensitive; abusive words match
// on word boundaries only.
func NewClassifier(abusiveWords, spamPhrases []string) *Classifier {
	quoted := make([]string, 0, len(abusiveWords))
	for _, w := range abusiveWords {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
		}
	}
	var pattern *regexp.Regexp
	if len(quoted) > 0 {
		pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}

	phrases := make([]string, 0, len(spamPhrases))
	for _, p := range spamPhrases {
		if p = strings.TrimSpace(strings.ToLower(p)); p != "" {
			phrases = append(phrases, p)
		}
	}

	return &Classifier{
		abusivePattern: pattern,
		spamPhrases:    phrases,
	}
}

// Moderate classifies a single chat message.
func (c *Classifier) Moderate(message string) models.ModerationResult {
	if c.containsPhoneNumber(message) {
		return models.ModerationResult{
			Status: models.StatusPhoneNumber,
			Reason: "Message contains a phone number.",
		}
	}

	if c.abusivePattern != nil && c.abusivePattern.MatchString(message) {
		return models.ModerationResult{
			Status: models.StatusAbusive,
			Reason: "Message contains abusive language.",
		}
	}

	if reason, spam := c.spamReason(message); spam {
		return models.ModerationResult{
			Status: models.StatusSpam,
			Reason: reason,
		}
	}

	return models.ModerationResult{
		Status: models.StatusSafe,
		Reason: "No moderation rule matched.",
	}
}

// containsPhoneNumber strips common separators and looks for a plausible
// contiguous digit run.
func (c *Classifier) containsPhoneNumber(message string) bool {
	stripped := separatorPattern.ReplaceAllString(message, "")
	for _, run := range digitRunPattern.FindAllString(stripped, -1) {
		if len(run) >= minPhoneDigits && len(run) <= maxPhoneDigits {
			return true
		}
	}
	return false
}

func (c *Classifier) spamReason(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, phrase := range c.spamPhrases {
		if strings.Contains(lower, phrase) {
			return `Message contains the spam phrase "` + phrase + `".`, true
		}
	}

	if repeatedCharPat.MatchString(message) {
		return "Message contains excessively repeated characters.", true
	}

	if hasRepeatedWords(lower) {
		return "Message contains excessively repeated words.", true
	}

	punct := strings.Count(message, "!") + strings.Count(message, "?")
	if punct > maxPunctuation {
		return "Message contains excessive punctuation.", true
	}

	var letters, uppers int
	for _, r := range message {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters >= minLettersForCap && float64(uppers)/float64(letters) > capitalRatio {
		return "Message is mostly capitalized.", true
	}

	return "", false
}

func hasRepeatedWords(lower string) bool {
	words := strings.Fields(lower)
	run := 1
	for i := 1; i < len(words); i++ {
		if words[i] == words[i-1] {
			run++
			if run >= repeatedWordRun {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
