package analysis

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/insightpipe/scout/internal/models"
)

// ErrInsufficientData is returned when the analyzer is asked to work on an
// empty corpus. That is a caller mistake, not a transient condition, so it
// is surfaced instead of swallowed.
var ErrInsufficientData = errors.New("insufficient data for analysis")

const (
	maxFeatures      = 500
	topTermsPerTopic = 10
	nmfIterations    = 200
	nmfSeed          = 42
)

// ExtractTopics clusters a corpus into numTopics groups of co-occurring
// terms. Documents are vectorized with TF-IDF and factorized with seeded
// non-negative matrix factorization, so repeated runs over the same corpus
// produce the same topics. Each topic is its highest-weight terms, strongest
// first.
func (a *Analyzer) ExtractTopics(documents []string, numTopics int) ([][]string, error) {
	if len(documents) == 0 {
		return nil, ErrInsufficientData
	}

	tokenized := make([][]string, len(documents))
	for i, doc := range documents {
		tokenized[i] = tokenize(doc)
	}

	terms, matrix := buildTFIDF(tokenized)
	if len(terms) == 0 {
		return nil, ErrInsufficientData
	}

	k := numTopics
	if k > len(terms) {
		k = len(terms)
	}
	if k > len(documents) {
		k = len(documents)
	}
	if k < 1 {
		k = 1
	}

	_, topicTerms := factorize(matrix, k, rand.New(rand.NewSource(nmfSeed)))

	topics := make([][]string, 0, k)
	for t := 0; t < k; t++ {
		row := mat.Row(nil, t, topicTerms)

		order := make([]int, len(row))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(i, j int) bool {
			if row[order[i]] != row[order[j]] {
				return row[order[i]] > row[order[j]]
			}
			return order[i] < order[j]
		})

		take := topTermsPerTopic
		if take > len(order) {
			take = len(order)
		}

		topic := make([]string, 0, take)
		for _, idx := range order[:take] {
			topic = append(topic, terms[idx])
		}
		topics = append(topics, topic)
	}

	return topics, nil
}

// TopTerms ranks the most frequent non-stopword terms across a corpus.
func (a *Analyzer) TopTerms(texts []string, n int) []models.TermCount {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, token := range tokenize(text) {
			counts[token]++
		}
	}

	ranked := make([]models.TermCount, 0, len(counts))
	for term, count := range counts {
		ranked = append(ranked, models.TermCount{Term: term, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// tokenize normalizes a document and drops stopwords and one-letter tokens.
func tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < 2 || stopwords[field] {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// buildTFIDF turns tokenized documents into a smoothed, row-normalized
// TF-IDF matrix over the corpus's most frequent terms.
func buildTFIDF(tokenized [][]string) ([]string, *mat.Dense) {
	totals := make(map[string]int)
	docFreq := make(map[string]int)

	for _, tokens := range tokenized {
		seen := make(map[string]bool)
		for _, token := range tokens {
			totals[token]++
			if !seen[token] {
				seen[token] = true
				docFreq[token]++
			}
		}
	}

	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] != totals[terms[j]] {
			return totals[terms[i]] > totals[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}

	docs := len(tokenized)
	matrix := mat.NewDense(docs, len(terms), nil)

	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log(float64(1+docs)/float64(1+docFreq[term])) + 1
	}

	for row, tokens := range tokenized {
		for _, token := range tokens {
			if col, ok := index[token]; ok {
				matrix.Set(row, col, matrix.At(row, col)+idf[col])
			}
		}

		// L2-normalize the document vector
		var norm float64
		for col := 0; col < len(terms); col++ {
			val := matrix.At(row, col)
			norm += val * val
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for col := 0; col < len(terms); col++ {
				matrix.Set(row, col, matrix.At(row, col)/norm)
			}
		}
	}

	return terms, matrix
}

// factorize runs multiplicative-update NMF: V ≈ W·H with all entries kept
// non-negative. H's rows are the topic-term weights.
func factorize(v *mat.Dense, k int, rng *rand.Rand) (*mat.Dense, *mat.Dense) {
	rows, cols := v.Dims()

	w := mat.NewDense(rows, k, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < k; j++ {
			w.Set(i, j, rng.Float64()+0.01)
		}
	}
	h := mat.NewDense(k, cols, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < cols; j++ {
			h.Set(i, j, rng.Float64()+0.01)
		}
	}

	const eps = 1e-9

	for iter := 0; iter < nmfIterations; iter++ {
		var wtv, wtw, hDen, hNum mat.Dense
		wtv.Mul(w.T(), v)
		wtw.Mul(w.T(), w)
		hDen.Mul(&wtw, h)
		hDen.Apply(func(_, _ int, val float64) float64 { return val + eps }, &hDen)
		hNum.MulElem(h, &wtv)
		h.DivElem(&hNum, &hDen)

		var vht, hht, wDen, wNum mat.Dense
		vht.Mul(v, h.T())
		hht.Mul(h, h.T())
		wDen.Mul(w, &hht)
		wDen.Apply(func(_, _ int, val float64) float64 { return val + eps }, &wDen)
		wNum.MulElem(w, &vht)
		w.DivElem(&wNum, &wDen)
	}

	return w, h
}
