package quality

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/dshills/materialcheck/internal/schema"
)

// Language labels returned by detectLanguage.
var (
	langChinese = language.MustParse("zh-TW").String()
	langEnglish = language.English.String()
)

const (
	langMixed   = "mixed"
	langUnknown = "unknown"
)

// Analyze measures a text value. It never fails.
func Analyze(value string) schema.TextAnalysis {
	a := schema.TextAnalysis{
		CharCount:     utf8.RuneCountInString(value),
		WordCount:     len(strings.Fields(value)),
		SentenceCount: countSentences(value),
		HasEmoji:      hasEmoji(value),
		Language:      detectLanguage(value),
	}
	a.ReadabilityScore = readability(value, a)
	return a
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '…':
		return true
	}
	return false
}

// countSentences counts runs of text ended by terminal punctuation; a
// trailing run without punctuation still counts as a sentence.
func countSentences(s string) int {
	n := 0
	inSentence := false
	for _, r := range s {
		switch {
		case isTerminal(r):
			if inSentence {
				n++
				inSentence = false
			}
		case !unicode.IsSpace(r):
			inSentence = true
		}
	}
	if inSentence {
		n++
	}
	return n
}

// readability scores 0-100 from the average sentence length: sentences
// at or under the comfortable length score 100, each unit beyond it costs
// points. CJK text is measured in characters, other text in words.
func readability(s string, a schema.TextAnalysis) int {
	if a.SentenceCount == 0 {
		return 0
	}
	var avg, comfortable, penalty float64
	if a.Language == langChinese {
		avg = float64(countHan(s)) / float64(a.SentenceCount)
		comfortable, penalty = 25, 2
	} else {
		avg = float64(a.WordCount) / float64(a.SentenceCount)
		comfortable, penalty = 15, 4
	}
	score := 100 - (avg-comfortable)*penalty
	return clamp(int(score+0.5), 0, 100)
}

func countHan(s string) int {
	n := 0
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			n++
		}
	}
	return n
}

// detectLanguage guesses from the ratio of CJK to Latin letters.
func detectLanguage(s string) string {
	var cjk, latin int
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Han, r), unicode.Is(unicode.Bopomofo, r):
			cjk++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	total := cjk + latin
	if total == 0 {
		return langUnknown
	}
	ratio := float64(cjk) / float64(total)
	switch {
	case ratio >= 0.7:
		return langChinese
	case ratio <= 0.3:
		return langEnglish
	default:
		return langMixed
	}
}

func hasEmoji(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x1F300 && r <= 0x1FAFF,
			r >= 0x2600 && r <= 0x27BF,
			r >= 0x1F1E6 && r <= 0x1F1FF,
			r == 0xFE0F:
			return true
		}
	}
	return false
}

// sameLanguage compares a detected label against an expected BCP 47 tag.
func sameLanguage(detected, expected string) bool {
	want, err := language.Parse(expected)
	if err != nil {
		return strings.EqualFold(detected, expected)
	}
	got, err := language.Parse(detected)
	if err != nil {
		return false
	}
	wb, _ := want.Base()
	gb, _ := got.Base()
	return wb == gb
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
