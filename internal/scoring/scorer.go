package scoring

import (
	"math"
	"unicode/utf8"
)

// Result holds the outcome of comparing a transcript against the sentence
// the learner was asked to read.
type Result struct {
	Accuracy int      `json:"accuracy"`
	Tips     []string `json:"tips"`
}

// Score compares a reference sentence with a transcribed hypothesis and
// returns an accuracy percentage in [0, 100] plus coaching tips. Both
// inputs are normalized before comparison, so punctuation and casing
// differences are never penalized.
func Score(reference, hypothesis string) Result {
	ref := Normalize(reference)
	hyp := Normalize(hypothesis)

	dist := Distance(ref, hyp)
	maxLen := max(utf8.RuneCountInString(ref), utf8.RuneCountInString(hyp))
	if maxLen == 0 {
		// Two empty strings are a perfect match, not a division by zero.
		maxLen = 1
	}

	accuracy := int(math.Round((1 - float64(dist)/float64(maxLen)) * 100))
	if accuracy < 0 {
		accuracy = 0
	}

	return Result{
		Accuracy: accuracy,
		Tips:     tipsFor(ref, hyp),
	}
}
