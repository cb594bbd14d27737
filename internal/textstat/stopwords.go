package textstat

// stopwords is a small embedded stand-in for the crawler's full
// rsrc/stopwords.txt dictionary, grounded on
// original_source/helpers/stopwords_set.go's STOPWORDS_SET membership
// test. The full English stopword list is treated as an external
// resource; this set is sized to exercise the LOWINFO_POST thresholds,
// not to claim linguistic completeness.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {},
	"then": {}, "else": {}, "of": {}, "at": {}, "by": {}, "for": {}, "with": {},
	"about": {}, "against": {}, "between": {}, "into": {}, "through": {},
	"during": {}, "before": {}, "after": {}, "above": {}, "below": {}, "to": {},
	"from": {}, "up": {}, "down": {}, "in": {}, "out": {}, "on": {}, "off": {},
	"over": {}, "under": {}, "again": {}, "further": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {},
	"has": {}, "had": {}, "having": {}, "do": {}, "does": {}, "did": {},
	"doing": {}, "this": {}, "that": {}, "these": {}, "those": {}, "i": {},
	"you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {}, "them": {},
	"their": {}, "its": {}, "as": {}, "so": {}, "too": {}, "very": {},
	"can": {}, "will": {}, "just": {}, "not": {}, "no": {}, "nor": {},
}

// isStopword reports whether a lowercased token is in the stopword set.
func isStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// contractions mirrors original_source/helpers/contra_set.py's
// CONTRA_SET/GENERIC_CONTRA_SET split: exact forms in contractionSet are
// kept verbatim, and any token ending in a suffix from
// genericContractionSuffixes is also treated as a contraction.
var contractionSet = map[string]struct{}{
	"don't": {}, "doesn't": {}, "didn't": {}, "can't": {}, "won't": {},
	"isn't": {}, "aren't": {}, "wasn't": {}, "weren't": {}, "i'm": {},
	"it's": {}, "that's": {}, "there's": {}, "let's": {},
}

var genericContractionSuffixes = []string{"'re", "'ve", "'ll", "'d"}

// isContraction reports whether a lowercased token is a contraction per
// the exact-form set or a generic suffix.
func isContraction(word string) bool {
	if _, ok := contractionSet[word]; ok {
		return true
	}
	for _, suffix := range genericContractionSuffixes {
		if len(word) > len(suffix) && word[len(word)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}
