// Package report turns a finished interview transcript into a score,
// feedback text and category sub-scores.
package report

import (
	"math"
	"math/rand"
	"unicode/utf8"
)

// Turn is one role-tagged utterance in conversational order.
type Turn struct {
	Role    string
	Content string
}

const (
	CategoryCommunication      = "communication"
	CategoryTechnicalKnowledge = "technical_knowledge"
	CategoryProblemSolving     = "problem_solving"
)

const (
	FeedbackExcellent        = "Excellent performance! You communicated clearly and answered with depth and confidence. Keep practicing to stay sharp."
	FeedbackGood             = "Good job! Your answers were solid and well structured. Add more concrete examples to make them stand out."
	FeedbackSatisfactory     = "Satisfactory performance. You covered the basics; work on giving fuller answers and explaining your reasoning."
	FeedbackNeedsImprovement = "Needs improvement. Try to engage more with each question and give longer, more detailed answers."
)

const (
	baseScore      = 70
	maxCountBonus  = 15
	maxLengthBonus = 10
	maxCategory    = 100
	noiseSpan      = 10
)

// categoryOffsets fixes the per-category adjustment applied before noise.
var categoryOffsets = []struct {
	name   string
	offset int
}{
	{CategoryCommunication, 0},
	{CategoryTechnicalKnowledge, -5},
	{CategoryProblemSolving, -2},
}

// Rand is the noise source for category scores.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Report is the outcome of scoring one transcript.
type Report struct {
	Score      int            `json:"score"`
	Feedback   string         `json:"feedback"`
	Categories map[string]int `json:"feedback_categories"`
}

type Generator struct {
	rnd Rand
}

// NewGenerator uses r for the category noise; nil means math/rand.
func NewGenerator(r Rand) *Generator {
	if r == nil {
		r = globalRand{}
	}
	return &Generator{rnd: r}
}

// Generate scores the transcript. It never fails and always returns a score
// in [70, 95].
func (g *Generator) Generate(turns []Turn) Report {
	score := Score(turns)

	feedback := FeedbackFor(score)
	if len(turns) == 0 {
		feedback = FeedbackNeedsImprovement
	}

	cats := make(map[string]int, len(categoryOffsets))
	for _, c := range categoryOffsets {
		v := score + c.offset + g.rnd.Intn(noiseSpan)
		if v > maxCategory {
			v = maxCategory
		}
		cats[c.name] = v
	}

	return Report{Score: score, Feedback: feedback, Categories: cats}
}

// Score is round(70 + min(15, n/2) + min(10, avgLen/20)).
func Score(turns []Turn) int {
	n := len(turns)
	avg := AverageLength(turns)

	countBonus := math.Min(maxCountBonus, float64(n)/2)
	lengthBonus := math.Min(maxLengthBonus, avg/20)

	return int(math.Round(baseScore + countBonus + lengthBonus))
}

// AverageLength is the mean content length in characters, 0 for no turns.
func AverageLength(turns []Turn) float64 {
	if len(turns) == 0 {
		return 0
	}
	total := 0
	for _, t := range turns {
		total += utf8.RuneCountInString(t.Content)
	}
	return float64(total) / float64(len(turns))
}

func FeedbackFor(score int) string {
	switch {
	case score >= 90:
		return FeedbackExcellent
	case score >= 80:
		return FeedbackGood
	case score >= 70:
		return FeedbackSatisfactory
	default:
		return FeedbackNeedsImprovement
	}
}
