package scoring

import "strings"

// maxTips caps how many tips a single attempt can surface. More than three
// things to fix at once overwhelms a learner, so extra matches are dropped.
const maxTips = 3

const (
	tipReadFully    = "Try to read the sentence all the way through to the end."
	tipArticles     = "Pronounce articles like 'a', 'an' and 'the' clearly, even when they are unstressed."
	tipPrepositions = "Don't drop short prepositions such as 'to', 'of' and 'in'. Give each one its own beat."
	tipKeepGoing    = "Great reading! Keep practicing natural stress and phrasing."
)

var articles = []string{"a", "an", "the"}

var prepositions = []string{"to", "for", "of", "in", "on", "at"}

// tipsFor derives coaching tips from the normalized reference and
// hypothesis. Rules run in a fixed order so the most important advice
// always comes first: incomplete readings, then dropped articles, then
// dropped prepositions. When nothing matched the learner gets an
// encouraging fallback instead of silence.
func tipsFor(normRef, normHyp string) []string {
	tips := make([]string, 0, maxTips)

	if float64(len(normHyp)) < float64(len(normRef))*0.7 {
		tips = append(tips, tipReadFully)
	}

	refWords := strings.Fields(normRef)
	hypWords := strings.Fields(normHyp)

	if containsAny(refWords, articles) && !containsAny(hypWords, articles) {
		tips = append(tips, tipArticles)
	}

	if containsAny(refWords, prepositions) && !containsAny(hypWords, prepositions) {
		tips = append(tips, tipPrepositions)
	}

	if len(tips) == 0 {
		tips = append(tips, tipKeepGoing)
	}

	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}

	return tips
}

// containsAny reports whether any word in words matches an entry of vocab
// exactly. Matching is on whole words only, so the article "a" never
// matches inside "cat".
func containsAny(words, vocab []string) bool {
	for _, w := range words {
		for _, v := range vocab {
			if w == v {
				return true
			}
		}
	}
	return false
}
