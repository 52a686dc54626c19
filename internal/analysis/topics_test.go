package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicCorpus() []string {
	return []string{
		"the battery died after two hours of recording video",
		"battery life is short, charging takes forever",
		"I keep the spare battery charging all day",
		"shipping took three weeks and the tracking never updated",
		"the courier lost my package during shipping",
		"shipping delays again, the tracking page is useless",
	}
}

func TestExtractTopicsEmptyCorpus(t *testing.T) {
	a := testAnalyzer()

	_, err := a.ExtractTopics(nil, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = a.ExtractTopics([]string{}, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestExtractTopicsStopwordOnlyCorpus(t *testing.T) {
	a := testAnalyzer()

	_, err := a.ExtractTopics([]string{"the and of", "a in to"}, 2)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestExtractTopicsShape(t *testing.T) {
	a := testAnalyzer()

	topics, err := a.ExtractTopics(topicCorpus(), 2)
	require.NoError(t, err)
	require.Len(t, topics, 2)

	vocab := make(map[string]bool)
	for _, doc := range topicCorpus() {
		for _, token := range tokenize(doc) {
			vocab[token] = true
		}
	}

	for _, topic := range topics {
		assert.NotEmpty(t, topic)
		assert.LessOrEqual(t, len(topic), 10)

		seen := make(map[string]bool)
		for _, term := range topic {
			assert.True(t, vocab[term], "term %q not from the corpus", term)
			assert.False(t, seen[term], "term %q repeated within a topic", term)
			seen[term] = true
		}
	}
}

func TestExtractTopicsDeterministic(t *testing.T) {
	a := testAnalyzer()

	first, err := a.ExtractTopics(topicCorpus(), 3)
	require.NoError(t, err)
	second, err := a.ExtractTopics(topicCorpus(), 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtractTopicsClampsTopicCount(t *testing.T) {
	a := testAnalyzer()

	// Two documents, tiny vocabulary: fewer topics than requested
	topics, err := a.ExtractTopics([]string{"alpha beta", "alpha gamma"}, 10)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(topics), 2)
	assert.NotEmpty(t, topics)
}

func TestTopTerms(t *testing.T) {
	a := testAnalyzer()

	texts := []string{
		"the battery is a good battery",
		"battery problems and charging problems",
		"the charging cable broke",
	}

	ranked := a.TopTerms(texts, 3)
	require.NotEmpty(t, ranked)

	assert.Equal(t, "battery", ranked[0].Term)
	assert.Equal(t, 3, ranked[0].Count)
	assert.LessOrEqual(t, len(ranked), 3)

	for _, entry := range ranked {
		assert.False(t, stopwords[entry.Term], "stopword %q ranked", entry.Term)
	}
}

func TestTopTermsEmpty(t *testing.T) {
	a := testAnalyzer()
	assert.Empty(t, a.TopTerms(nil, 5))
}

func TestTokenizeDropsShortAndStopTokens(t *testing.T) {
	tokens := tokenize("I saw a QUICK fix for the bug")
	assert.Equal(t, []string{"saw", "quick", "fix", "bug"}, tokens)
}
