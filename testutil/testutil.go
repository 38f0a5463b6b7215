package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/samzhang111/icgauge/codec"
	"github.com/samzhang111/icgauge/corpus"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a pseudo-random permutation of the integers in [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Sentence pools behind the paragraph generator. Stances are flat assertions
// heavy on intensifiers, concessions open with a transitional and hedge their
// claims, integrations name trade-offs between viewpoints. Higher scores add
// concessions and an integration, so the lexical cues the extractors look for
// scale with the assigned score.
var (
	stances = []string{
		"The policy is certainly the right course.",
		"This plan will obviously succeed.",
		"The evidence clearly settles the question.",
		"That approach is definitely the best available.",
		"Every serious observer supports this view.",
		"The case for it is absolutely settled.",
	}

	concessions = []string{
		"However, the opposing case is perhaps more credible than it first appears.",
		"Although the costs are probably higher than either side admits, the direction holds.",
		"Yet some of the objections seem likely to carry weight.",
		"Nevertheless, another reading of the evidence is possibly the stronger one.",
		"Though the alternative arguably serves the most pressing need, it remains untested.",
		"Moreover, the projected gains are apparently less certain than claimed.",
	}

	integrations = []string{
		"On the other hand, both sides answer to the same underlying need, so the trade off shifts with circumstance.",
		"At the same time, each perspective constrains the other, and the tension between them resolves differently case by case.",
		"It could be argued that the two viewpoints operate in mutual interplay, therefore any workable answer has to weigh them jointly.",
	}
)

// integrationThreshold is the lowest score whose paragraphs carry an
// integration sentence.
const integrationThreshold = 6

// ScoredParagraph generates a paragraph whose structure tracks the given
// ordinal score: one stance sentence, score-1 concessions, and an integration
// sentence once the score reaches the integration threshold. Scores outside
// the ordinal range are clamped.
func (r *RNG) ScoredParagraph(score int) string {
	if score < corpus.MinOrdinal {
		score = corpus.MinOrdinal
	}
	if score > corpus.MaxOrdinal {
		score = corpus.MaxOrdinal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parts := make([]string, 0, score+1)
	parts = append(parts, stances[r.rand.Intn(len(stances))])
	for i := 1; i < score; i++ {
		parts = append(parts, concessions[r.rand.Intn(len(concessions))])
	}
	if score >= integrationThreshold {
		parts = append(parts, integrations[r.rand.Intn(len(integrations))])
	}
	return strings.Join(parts, " ")
}

// SyntheticCorpus generates n judged examples whose scores cycle through the
// ordinal range, so every class appears once n reaches 7.
func (r *RNG) SyntheticCorpus(n int) []corpus.Example {
	examples := make([]corpus.Example, n)
	for i := range examples {
		score := corpus.MinOrdinal + i%(corpus.MaxOrdinal-corpus.MinOrdinal+1)
		examples[i] = corpus.Example{
			Text:  r.ScoredParagraph(score),
			Label: corpus.Judged(score),
		}
	}
	return examples
}

// document mirrors the corpus file format: judged scores are numbers,
// unscoreable paragraphs carry the literal "NA", unjudged ones omit the field.
type document struct {
	Paragraph string `json:"paragraph"`
	Score     any    `json:"score,omitempty"`
}

// WriteCorpusJSON writes examples to path in the corpus file format, so tests
// can feed generated corpora through the same reader as real data.
func WriteCorpusJSON(path string, examples []corpus.Example) error {
	docs := make([]document, len(examples))
	for i, ex := range examples {
		docs[i].Paragraph = ex.Text
		switch ex.Label.Kind {
		case corpus.ScoreJudged:
			docs[i].Score = ex.Label.Value
		case corpus.ScoreUnscoreable:
			docs[i].Score = "NA"
		}
	}

	data, err := codec.Default.Marshal(docs)
	if err != nil {
		return fmt.Errorf("testutil: encode corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("testutil: write corpus: %w", err)
	}
	return nil
}
