package services

import (
	"strings"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// classifyMaxMessages caps how much of a conversation the classifier reads.
// Long sessions settle their topic early; scanning megabytes of tail output
// adds cost without changing the answer.
const classifyMaxMessages = 10

// classifierRules pair each type with the phrases that signal it, in
// precedence order. The first category with the highest hit count wins, so
// a session that both fixes a bug and discusses design classifies as
// debugging.
var classifierRules = []struct {
	typ     domain.ConversationType
	phrases []string
}{
	{domain.TypeDebugging, []string{
		"error", "panic", "bug", "crash", "broken", "fail",
		"exception", "traceback", "stack trace", "segfault",
		"not working", "debug", "fix",
	}},
	{domain.TypeArchitecture, []string{
		"architecture", "design", "structure", "schema", "layer",
		"approach", "pattern", "trade-off", "tradeoff", "scalab",
		"should we use", "data model",
	}},
	{domain.TypeCodeReview, []string{
		"review", "refactor", "clean up", "cleanup", "simplif",
		"rename", "lint", "readab", "naming", "tidy",
	}},
	{domain.TypeLearning, []string{
		"how does", "how do", "what is", "what does", "explain",
		"why does", "understand", "difference between", "learn",
		"tutorial",
	}},
}

// Classify derives a conversation's type from its title and the opening
// messages. The signal phrases are matched as lowercase substrings; a
// conversation matching nothing is general.
func Classify(conv *domain.Conversation) domain.ConversationType {
	text := classifierText(conv)
	if text == "" {
		return domain.TypeGeneral
	}

	best := domain.TypeGeneral
	bestHits := 0
	for _, rule := range classifierRules {
		hits := 0
		for _, phrase := range rule.phrases {
			if strings.Contains(text, phrase) {
				hits++
			}
		}
		if hits > bestHits {
			best = rule.typ
			bestHits = hits
		}
	}
	return best
}

func classifierText(conv *domain.Conversation) string {
	var b strings.Builder
	b.WriteString(conv.Title)
	for i := range conv.Messages {
		if i == classifyMaxMessages {
			break
		}
		b.WriteByte('\n')
		b.WriteString(conv.Messages[i].Content)
	}
	return strings.ToLower(b.String())
}
