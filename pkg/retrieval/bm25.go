package retrieval

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// BM25Document is one corpus entry for the lexical index.
type BM25Document struct {
	ID   string
	Text string
}

// BM25Index ranks a static corpus snapshot with Okapi BM25.
// There is no incremental update path: rebuild on corpus change.
type BM25Index struct {
	k1    float64
	b     float64
	docs  []BM25Document
	terms []map[string]int // term frequency per document
	df    map[string]int   // document frequency per term
	dl    []int            // document length in tokens
	avgdl float64
}

// BM25Option overrides the default k1/b parameters.
type BM25Option func(*BM25Index)

func WithK1(k1 float64) BM25Option {
	return func(i *BM25Index) { i.k1 = k1 }
}

func WithB(b float64) BM25Option {
	return func(i *BM25Index) { i.b = b }
}

// NewBM25Index builds the index once over the given corpus snapshot.
func NewBM25Index(docs []BM25Document, opts ...BM25Option) *BM25Index {
	idx := &BM25Index{
		k1:   1.5,
		b:    0.75,
		docs: docs,
		df:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(idx)
	}

	idx.terms = make([]map[string]int, len(docs))
	idx.dl = make([]int, len(docs))

	var totalLen int
	for i, doc := range docs {
		tokens := Tokenize(doc.Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		idx.terms[i] = tf
		idx.dl[i] = len(tokens)
		totalLen += len(tokens)

		for term := range tf {
			idx.df[term]++
		}
	}

	if len(docs) > 0 {
		idx.avgdl = float64(totalLen) / float64(len(docs))
	}

	return idx
}

// Tokenize lower-cases and splits on word boundaries.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Query scores the corpus against the query text and returns the top-K
// candidates by descending score. Ties keep original corpus order.
func (idx *BM25Index) Query(query string, topK int) []Candidate {
	if len(idx.docs) == 0 || topK <= 0 {
		return []Candidate{}
	}

	tokens := Tokenize(query)
	scores := make([]float64, len(idx.docs))
	n := float64(len(idx.docs))

	for _, term := range tokens {
		df, ok := idx.df[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))

		for i := range idx.docs {
			tf, ok := idx.terms[i][term]
			if !ok {
				continue
			}
			norm := 1 - idx.b + idx.b*float64(idx.dl[i])/idx.avgdl
			scores[i] += idf * float64(tf) * (idx.k1 + 1) / (float64(tf) + idx.k1*norm)
		}
	}

	order := make([]int, len(idx.docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}

	results := make([]Candidate, 0, topK)
	for _, i := range order[:topK] {
		results = append(results, Candidate{
			ID:          idx.docs[i].ID,
			Score:       scores[i],
			Modality:    ModalityText,
			TextExcerpt: idx.docs[i].Text,
		})
	}
	return results
}
