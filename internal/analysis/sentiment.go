package analysis

import (
	"math"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/insightpipe/scout/internal/models"
)

var (
	urlPattern     = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	sigilPattern   = regexp.MustCompile(`@\w+|#`)
	nonWordPattern = regexp.MustCompile(`[^\w\s]`)
)

// Analyzer scores and classifies collected text. It holds no per-call state,
// so one instance can serve a whole run.
type Analyzer struct {
	log *logrus.Entry
}

// New creates a new analyzer
func New(log *logrus.Entry) *Analyzer {
	return &Analyzer{log: log}
}

// Normalize strips URLs, mention/hashtag sigils and remaining punctuation,
// then lowercases. Scoring and vectorization both run on this form.
func Normalize(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = sigilPattern.ReplaceAllString(text, "")
	text = nonWordPattern.ReplaceAllString(text, "")
	return strings.ToLower(strings.TrimSpace(text))
}

// Score rates one text with lexicon-and-rules sentiment. Empty input (or
// input that normalizes to nothing) yields the zero score. For any other
// input the positive, negative and neutral proportions sum to 1 and the
// compound value lies in [-1, 1].
func (a *Analyzer) Score(text string) models.SentimentScore {
	words := strings.Fields(Normalize(text))
	if len(words) == 0 {
		return models.SentimentScore{}
	}

	valences := make([]float64, len(words))
	for i, word := range words {
		valence, rated := lexicon[word]
		if !rated {
			continue
		}

		// Look back up to three tokens for degree modifiers and negators
		for dist := 1; dist <= 3 && i-dist >= 0; dist++ {
			prev := words[i-dist]
			if _, alsoRated := lexicon[prev]; alsoRated {
				continue
			}

			if boost, ok := boosters[prev]; ok {
				if dist == 2 {
					boost *= 0.95
				} else if dist == 3 {
					boost *= 0.9
				}
				if valence < 0 {
					boost = -boost
				}
				valence += boost
			}

			if negators[prev] {
				valence *= negationScalar
			}
		}

		valences[i] = valence
	}

	// A contrastive "but" shifts the weight toward the trailing clause
	for i, word := range words {
		if word != "but" {
			continue
		}
		for j := range valences {
			if j < i {
				valences[j] *= 0.5
			} else if j > i {
				valences[j] *= 1.5
			}
		}
		break
	}

	var sum, posSum, negSum float64
	neuCount := 0
	for _, valence := range valences {
		sum += valence
		switch {
		case valence > 0:
			posSum += valence + 1
		case valence < 0:
			negSum += valence - 1
		default:
			neuCount++
		}
	}

	total := posSum + math.Abs(negSum) + float64(neuCount)

	return models.SentimentScore{
		Positive: posSum / total,
		Negative: math.Abs(negSum) / total,
		Neutral:  float64(neuCount) / total,
		Compound: sum / math.Sqrt(sum*sum+15),
	}
}
