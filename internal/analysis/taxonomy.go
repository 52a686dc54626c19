package analysis

import "regexp"

// Pain point and struggle categories surfaced in run analytics.
const (
	PainHighPrice       = "High Price"
	PainDelivery        = "Delivery Issues"
	PainQuality         = "Poor Quality"
	PainSupport         = "Customer Support"
	PainDissatisfaction = "General Dissatisfaction"

	StruggleDifficulty   = "Difficulty Using Product"
	StruggleTechnical    = "Technical Issues"
	StruggleInstructions = "Confusing Instructions"
	StrugglePerformance  = "Performance Issues"
)

// negativeGate is the compound threshold below which a text counts as a
// complaint worth categorizing.
const negativeGate = -0.05

type taxonomyRule struct {
	pattern  *regexp.Regexp
	category string
}

// Rule order matters: the first match wins.
var painPointRules = []taxonomyRule{
	{regexp.MustCompile(`(?i)\b(price|cost|expensive)\b`), PainHighPrice},
	{regexp.MustCompile(`(?i)\b(delivery|shipping|late)\b`), PainDelivery},
	{regexp.MustCompile(`(?i)\b(quality|poor|bad)\b`), PainQuality},
	{regexp.MustCompile(`(?i)\b(support|service|help)\b`), PainSupport},
}

var struggleRules = []taxonomyRule{
	{regexp.MustCompile(`(?i)\b(difficult|hard|complicated)\b`), StruggleDifficulty},
	{regexp.MustCompile(`(?i)\b(problem|issue|error)\b`), StruggleTechnical},
	{regexp.MustCompile(`(?i)\b(confusing|unclear|understand)\b`), StruggleInstructions},
	{regexp.MustCompile(`(?i)\b(slow|lag|freeze)\b`), StrugglePerformance},
}

// ClassifyPainPoint assigns a complaint category to a negative text. Texts
// at or above the sentiment gate produce no category. A negative text that
// matches no specific rule falls through to General Dissatisfaction.
func (a *Analyzer) ClassifyPainPoint(text string) (string, bool) {
	if text == "" || a.Score(text).Compound >= negativeGate {
		return "", false
	}

	for _, rule := range painPointRules {
		if rule.pattern.MatchString(text) {
			return rule.category, true
		}
	}

	return PainDissatisfaction, true
}

// ClassifyStruggle assigns a usage-struggle category to a negative text.
// Unlike pain points there is no catch-all: a text that matches no rule
// yields no category.
func (a *Analyzer) ClassifyStruggle(text string) (string, bool) {
	if text == "" || a.Score(text).Compound >= negativeGate {
		return "", false
	}

	for _, rule := range struggleRules {
		if rule.pattern.MatchString(text) {
			return rule.category, true
		}
	}

	return "", false
}
