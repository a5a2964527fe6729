// Package lexicon holds the static per-language keyword tables used by
// sentiment scoring, aggression detection, and language detection. The
// tables are immutable after init and safe to share across calls.
package lexicon

import (
	"fmt"
	"regexp"
	"strings"
)

// Language is a supported conversation language code.
type Language string

const (
	Hinglish Language = "hinglish"
	English  Language = "english"
	Telugu   Language = "telugu"
)

// Default is the language a new conversation starts in; Fallback is the
// language switched to when ASR confidence is too low to trust detection.
const (
	Default  = Hinglish
	Fallback = English
)

// Supported returns the closed set of language codes.
func Supported() []Language {
	return []Language{Hinglish, English, Telugu}
}

// Valid reports whether code is a supported language.
func Valid(code Language) bool {
	switch code {
	case Hinglish, English, Telugu:
		return true
	}
	return false
}

// Parse normalizes a raw string into a Language.
func Parse(raw string) (Language, bool) {
	code := Language(strings.ToLower(strings.TrimSpace(raw)))
	if Valid(code) {
		return code, true
	}
	return "", false
}

// Table is the fixed-shape lexicon record for one language.
type Table struct {
	// Frustration keywords, matched as case-insensitive substrings.
	Frustration []string
	// Aggression keywords; any match drives the keyword score to -0.9.
	Aggression []string
	// Detection patterns, word lists matched against the lowercased utterance.
	Patterns []*regexp.Regexp
	// Explicit language switch phrases ("speak in english"), substring match.
	SwitchPhrases []string
}

var tables = map[Language]Table{
	English: {
		Frustration: []string{
			"frustrated", "annoyed", "irritated", "angry", "upset",
			"confused", "don't understand", "not clear", "unclear",
			"waste of time", "useless", "stupid", "ridiculous",
			"fed up", "enough", "stop", "leave me alone",
		},
		Aggression: []string{
			"shut up", "idiot", "stupid", "dumb", "moron",
			"get lost", "go away", "leave me", "don't call",
			"harassment", "spam", "scam",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(english|angrezi)\b`),
			regexp.MustCompile(`\b(yes|no|what|you|me|need|want)\b`),
			regexp.MustCompile(`\b(okay|alright|understand|got it)\b`),
		},
		SwitchPhrases: []string{
			"english mein bolo",
			"english please",
			"speak in english",
			"can you speak in english",
			"english lo matladandi",
		},
	},
	Hinglish: {
		Frustration: []string{
			"samajh nahi aa raha", "confuse ho gaya", "pareshan",
			"gussa", "thak gaya", "bore ho gaya", "time waste",
			"kya bakwas", "band karo", "chodo", "nahi chahiye",
		},
		Aggression: []string{
			"chup", "bewakoof", "pagal", "bhag jao",
			"phone mat karo", "pareshan mat karo", "fraud",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(hindi|hinglish|हिंदी|हिन्दी)\b`),
			regexp.MustCompile(`\b(haan|nahi|kya|aap|main|mujhe|chahiye)\b`),
			regexp.MustCompile(`\b(theek|achha|bilkul|samajh)\b`),
		},
		SwitchPhrases: []string{
			"hindi mein bolo",
			"hindi please",
			"hinglish mein",
			"can you speak in hindi",
			"hindi lo matladandi",
		},
	},
	Telugu: {
		Frustration: []string{
			"artham kavatledu", "confused", "badha", "kopam",
			"bore", "waste", "aapandi", "vaddu",
		},
		Aggression: []string{
			"moham muyyi", "buddhi leni", "vellipo",
			"phone cheyaku", "fraud",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(telugu|తెలుగు)\b`),
			regexp.MustCompile(`\b(avunu|kaadu|emi|meeru|nenu|kavali)\b`),
			regexp.MustCompile(`\b(sare|artham|bagundi)\b`),
		},
		SwitchPhrases: []string{
			"telugu mein bolo",
			"telugu please",
			"telugu lo matladandi",
			"can you speak in telugu",
		},
	},
}

var displayNames = map[Language]string{
	Hinglish: "Hinglish",
	English:  "English",
	Telugu:   "Telugu",
}

// For returns the lexicon table for a language. Unknown languages get an
// empty table so matching degrades to "no match".
func For(code Language) Table {
	return tables[code]
}

// DisplayName returns the human-readable name of a language. The name is the
// same across all supported display languages.
func DisplayName(code Language) string {
	if name, ok := displayNames[code]; ok {
		return name
	}
	return string(code)
}

// Validate checks every supported language carries the full fixed-shape
// record. Called at startup so a missing table fails fast instead of
// silently matching nothing at lookup time.
func Validate() error {
	for _, lang := range Supported() {
		tbl, ok := tables[lang]
		if !ok {
			return fmt.Errorf("lexicon: no table for language %q", lang)
		}
		if len(tbl.Frustration) == 0 {
			return fmt.Errorf("lexicon: %q missing frustration keywords", lang)
		}
		if len(tbl.Aggression) == 0 {
			return fmt.Errorf("lexicon: %q missing aggression keywords", lang)
		}
		if len(tbl.Patterns) == 0 {
			return fmt.Errorf("lexicon: %q missing detection patterns", lang)
		}
		if len(tbl.SwitchPhrases) == 0 {
			return fmt.Errorf("lexicon: %q missing switch phrases", lang)
		}
		if _, ok := displayNames[lang]; !ok {
			return fmt.Errorf("lexicon: %q missing display name", lang)
		}
	}
	return nil
}
