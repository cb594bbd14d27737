// Package textstat implements the TEXT stage's tokenizer and word-count
// thresholds, ported from original_source/helpers/tokenize.py's
// grapheme-walk algorithm and stopwords_set.py/contra_set.py's
// membership tests.
package textstat

import (
	"strings"
	"unicode"
)

// groupSymbols are non-alnum runes that stay part of a token instead of
// splitting it, wherever in the token they occur.
const groupSymbols = "-./_~"

// nonTerminalGroupSymbols lists the group symbols a token cannot end
// with ("a..." is not a token); in the original these overlap with
// nonRepeatGroupSymbols but are tracked separately since the rules are
// independent.
const nonTerminalGroupSymbols = "."

// nonRepeatGroupSymbols lists group symbols that cannot repeat in
// sequence inside a token ("a..b" is not a token).
const nonRepeatGroupSymbols = "."

// Tokenize splits text into lowercase tokens: whitespace-delimited
// words are lowercased, stopwords are dropped, contractions pass
// through unprocessed, and everything else is walked grapheme-by-
// grapheme so that group symbols (-./_~) stay attached to a token
// wherever they occur, runs of a non-repeatable group symbol split
// the token, and a token cannot end in a non-terminal group symbol.
// Every yielded token contains at least one alphanumeric rune.
func Tokenize(text string) []string {
	var processed []string

	for _, raw := range strings.Fields(text) {
		token := strings.ToLower(raw)

		if isStopword(token) {
			continue
		}
		if isContraction(token) {
			processed = append(processed, token)
			continue
		}

		processed = append(processed, tokenizeWord(token)...)
	}

	return processed
}

func tokenizeWord(token string) []string {
	var out []string

	var word strings.Builder
	alnumHit := false
	var repeatSymbol rune
	inRepeat := false

	flush := func() {
		if word.Len() == 0 || !alnumHit {
			word.Reset()
			alnumHit = false
			return
		}
		out = append(out, strings.TrimRight(word.String(), nonTerminalGroupSymbols))
		word.Reset()
		alnumHit = false
	}

	for _, g := range token {
		if inRepeat {
			if g == repeatSymbol {
				word.WriteRune(g)
				continue
			}
			flush()
			inRepeat = false
		}

		if unicode.IsLetter(g) || unicode.IsDigit(g) {
			alnumHit = true
			word.WriteRune(g)
			continue
		}

		if strings.ContainsRune(groupSymbols, g) {
			last := lastRune(word.String())
			if word.Len() == 0 || !strings.ContainsRune(nonRepeatGroupSymbols, g) || last != g {
				word.WriteRune(g)
				continue
			}

			// Non-repeat rule violated: split at the boundary and start
			// tracking the repeat run.
			trimmed := strings.TrimSuffix(word.String(), string(last))
			hadAlnum := alnumHit
			word.Reset()
			word.WriteString(trimmed)
			alnumHit = hadAlnum
			flush()

			word.WriteString(string(g) + string(g))
			alnumHit = false
			repeatSymbol = g
			inRepeat = true
			continue
		}

		if word.Len() > 0 {
			flush()
		}
	}

	if word.Len() > 0 {
		flush()
	}

	return out
}

func lastRune(s string) rune {
	if s == "" {
		return 0
	}
	r := []rune(s)
	return r[len(r)-1]
}

// WordCounts tokenizes text and returns a token→count map, the shape
// the TEXT stage stores as a Nurl's Words field and feeds to SimHash.
func WordCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts
}
