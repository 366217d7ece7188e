package tools

import (
	"context"
	"strings"

	"github.com/citadelhq/citadel-go/core"
)

var positiveWords = map[string]struct{}{
	"beat": {}, "beats": {}, "growth": {}, "up": {}, "surge": {},
	"record": {}, "strong": {}, "profit": {}, "bull": {}, "bullish": {},
	"outperform": {},
}

var negativeWords = map[string]struct{}{
	"miss": {}, "misses": {}, "down": {}, "drop": {}, "weak": {},
	"loss": {}, "bear": {}, "bearish": {}, "underperform": {}, "warning": {},
}

// SentimentTools returns the lexicon-based sentiment scorer.
func SentimentTools() []core.Tool {
	return []core.Tool{
		New("sentiment.analyze").
			Description("Simple sentiment scoring.").
			Schema(ObjectSchema(map[string]core.Property{
				"text": StringProperty("Text to score"),
			}, "text")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return scoreSentiment(args.String("text", "")), nil
			}).
			Build(),
	}
}

func scoreSentiment(text string) map[string]any {
	pos, neg := 0, 0
	for _, token := range strings.Fields(text) {
		token = strings.ToLower(strings.Trim(token, ".,!?;:()[]"))
		if _, ok := positiveWords[token]; ok {
			pos++
		}
		if _, ok := negativeWords[token]; ok {
			neg++
		}
	}
	score := pos - neg
	label := "neutral"
	switch {
	case score > 0:
		label = "positive"
	case score < 0:
		label = "negative"
	}
	return map[string]any{
		"score":         score,
		"positive_hits": pos,
		"negative_hits": neg,
		"label":         label,
	}
}
