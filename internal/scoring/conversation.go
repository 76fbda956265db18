// Package scoring computes relevance scores for conversations and project
// files. Every function is pure: the clock is a parameter and the same
// inputs always produce the same score, so results are reproducible and
// cacheable.
package scoring

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// conversationHalfLife is how old a conversation must be, in days, for its
// recency term to halve.
const conversationHalfLife = 7.0

// Keyword match strengths. A whole-word hit outranks a substring hit, which
// outranks no hit at all.
const (
	matchExact     = 1.0
	matchSubstring = 0.6
	matchNone      = 0.0
)

// Blend weights for the conversation score. They sum to 1 so the score
// stays in [0, 1].
const (
	weightRecency = 0.45
	weightKeyword = 0.35
	weightType    = 0.20
)

// Tier thresholds are absolute, so a conversation's tier does not depend on
// what else happened to be scored alongside it.
const (
	tierHighThreshold   = 0.70
	tierMediumThreshold = 0.40
)

// maxKeywords caps how many distinct words a query contributes. Longer
// queries gain precision from their first words, not their fortieth.
const maxKeywords = 8

var wordRegex = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_\-]{2,}`)

// typeWeights ranks classifications by how often recalling them pays off.
// Debugging sessions age best; general chatter worst.
var typeWeights = map[domain.ConversationType]float64{
	domain.TypeDebugging:    1.0,
	domain.TypeArchitecture: 0.9,
	domain.TypeCodeReview:   0.85,
	domain.TypeLearning:     0.7,
	domain.TypeGeneral:      0.5,
}

// Conversation scores one conversation against a query at a given instant.
// With a query the score blends recency, keyword strength, and type weight.
// Without one the keyword term carries no information, so the remaining
// terms are renormalised rather than silently dragging every score down.
func Conversation(conv *domain.Conversation, query string, now time.Time) float64 {
	return ConversationKeywords(conv, Keywords(query), now)
}

// ConversationKeywords scores with a precomputed keyword set, so a caller
// ranking many conversations extracts the query's keywords once.
func ConversationKeywords(conv *domain.Conversation, keywords []string, now time.Time) float64 {
	recency := Recency(conv.UpdatedAt, now)
	typeWeight := TypeWeight(conv.Type)
	if len(keywords) == 0 {
		return (weightRecency*recency + weightType*typeWeight) / (weightRecency + weightType)
	}
	keyword := keywordMatchSet(conv, keywords)
	return weightRecency*recency + weightKeyword*keyword + weightType*typeWeight
}

// Recency maps the age of updated relative to now onto (0, 1], halving
// every conversationHalfLife days. Zero times score zero and future times
// clamp to 1, so clock skew between tools cannot push a score above range.
func Recency(updated, now time.Time) float64 {
	if updated.IsZero() {
		return 0
	}
	return decay(daysBetween(updated, now), conversationHalfLife)
}

// KeywordMatch measures how strongly the query appears in the conversation
// title and message content. Each extracted keyword scores exact, substring,
// or nothing, and the result is the mean across keywords so matching more
// of the query scores higher than matching one word of it.
func KeywordMatch(conv *domain.Conversation, query string) float64 {
	return keywordMatchSet(conv, Keywords(query))
}

func keywordMatchSet(conv *domain.Conversation, keywords []string) float64 {
	if len(keywords) == 0 {
		return matchNone
	}
	haystack := conversationText(conv)
	words := tokenise(haystack)
	total := 0.0
	for _, k := range keywords {
		total += keywordStrength(k, words, haystack)
	}
	return total / float64(len(keywords))
}

// Keywords extracts up to maxKeywords distinct lowercase words from a
// query, in first-seen order. Queries with no extractable word (too short,
// or symbols only) fall back to the whole trimmed query so a search for
// "go" still matches something.
func Keywords(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	keywords := make([]string, 0, maxKeywords)
	seen := make(map[string]struct{}, maxKeywords)
	for _, word := range wordRegex.FindAllString(query, -1) {
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	if len(keywords) == 0 {
		keywords = append(keywords, query)
	}
	return keywords
}

// TypeWeight returns the fixed weight for a classification. Unknown types
// weigh the same as general chatter.
func TypeWeight(t domain.ConversationType) float64 {
	if w, ok := typeWeights[t]; ok {
		return w
	}
	return typeWeights[domain.TypeGeneral]
}

// Tier buckets a score into a priority tier.
func Tier(score float64) domain.PriorityTier {
	switch {
	case score >= tierHighThreshold:
		return domain.TierHigh
	case score >= tierMediumThreshold:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

func keywordStrength(keyword string, words map[string]struct{}, haystack string) float64 {
	if _, ok := words[keyword]; ok {
		return matchExact
	}
	if strings.Contains(haystack, keyword) {
		return matchSubstring
	}
	return matchNone
}

// conversationText flattens the searchable text of a conversation to
// lowercase. Title first: it is the densest signal.
func conversationText(conv *domain.Conversation) string {
	var b strings.Builder
	b.WriteString(conv.Title)
	for i := range conv.Messages {
		b.WriteByte('\n')
		b.WriteString(conv.Messages[i].Content)
	}
	return strings.ToLower(b.String())
}

func tokenise(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, word := range wordRegex.FindAllString(text, -1) {
		words[word] = struct{}{}
	}
	return words
}

// daysBetween returns the age of t relative to now in fractional days,
// clamped at zero for timestamps in the future.
func daysBetween(t, now time.Time) float64 {
	days := now.Sub(t).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}

// decay is exponential decay with the given half-life in days.
func decay(ageDays, halfLife float64) float64 {
	return math.Exp(-math.Ln2 * ageDays / halfLife)
}
