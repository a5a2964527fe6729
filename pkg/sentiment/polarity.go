package sentiment

import "strings"

// Local lexical polarity model used for the locally scored language.
// Each entry carries a polarity weight in [-1, 1]; an utterance scores the
// mean weight of matched entries, with simple negation flipping.

var polarityWeights = map[string]float64{
	// positive
	"good": 0.7, "great": 0.8, "excellent": 1.0, "perfect": 0.9,
	"happy": 0.8, "glad": 0.6, "thanks": 0.5, "thank": 0.5,
	"helpful": 0.6, "clear": 0.4, "easy": 0.4, "nice": 0.6,
	"interested": 0.5, "sure": 0.3, "yes": 0.2, "okay": 0.2,
	"fine": 0.3, "wonderful": 0.9, "amazing": 0.9, "love": 0.8,
	"best": 0.8, "better": 0.5, "right": 0.3, "correct": 0.3,

	// negative
	"bad": -0.7, "terrible": -1.0, "awful": -0.9, "horrible": -0.9,
	"angry": -0.8, "upset": -0.6, "annoyed": -0.6, "frustrated": -0.7,
	"confused": -0.4, "unclear": -0.4, "difficult": -0.4, "hard": -0.3,
	"useless": -0.8, "stupid": -0.8, "ridiculous": -0.7, "waste": -0.7,
	"wrong": -0.5, "problem": -0.4, "issue": -0.3, "worst": -0.9,
	"hate": -0.8, "disappointed": -0.7,
	"slow": -0.3, "expensive": -0.3, "worried": -0.4, "scam": -0.9,
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "don't": {}, "dont": {},
	"isn't": {}, "isnt": {}, "won't": {}, "wont": {}, "can't": {}, "cant": {},
	"nahi": {}, "mat": {},
}

// localPolarity estimates polarity from the embedded wordlist. Returns 0.0
// for empty input or when no entry matches.
func localPolarity(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0.0
	}

	var sum float64
	var matched int
	negated := false
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		if _, ok := negators[word]; ok {
			negated = true
			continue
		}
		weight, ok := polarityWeights[word]
		if !ok {
			continue
		}
		if negated {
			weight = -weight * 0.5
			negated = false
		}
		sum += weight
		matched++
	}
	if matched == 0 {
		return 0.0
	}
	return clamp(sum / float64(matched))
}

func clamp(score float64) float64 {
	if score < -1.0 {
		return -1.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
