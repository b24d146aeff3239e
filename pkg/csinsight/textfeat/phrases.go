package textfeat

import (
	"strings"
	"unicode"

	"github.com/cognicore/csinsight/pkg/csinsight/ingest"
	"github.com/cognicore/csinsight/pkg/csinsight/stoplist"
)

var phraseStops = stoplist.NewEnglish()

// KeyPhrases returns noun-phrase approximations of two or more tokens,
// lower-cased and in order of appearance. Duplicates are kept.
func KeyPhrases(text string) []string {
	var out []string
	for _, segment := range splitClauses(text) {
		var chunk []string
		flush := func() {
			content := len(chunk)
			if content > 0 && determiners[chunk[0]] {
				content--
			}
			if content >= 1 && len(chunk) >= 2 {
				out = append(out, strings.Join(chunk, " "))
			}
			chunk = chunk[:0]
		}

		for _, w := range ingest.Words(segment) {
			switch {
			case determiners[w]:
				flush()
				chunk = append(chunk, w)
			case isPhraseBreak(w):
				flush()
			default:
				chunk = append(chunk, w)
			}
		}
		flush()
	}
	return out
}

// splitClauses cuts text at punctuation other than word-internal marks.
func splitClauses(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return false
		}
		switch r {
		case '-', '_', '\'', '’':
			return false
		}
		return true
	})
}

func isPhraseBreak(w string) bool {
	if phraseStops.IsStop(w) || phraseVerbs[w] || phraseAdverbs[w] {
		return true
	}
	if len(w) > 4 && strings.HasSuffix(w, "ly") {
		return true
	}
	if _, ok := intensifiers[w]; ok {
		return true
	}
	return isNegator(w)
}

var determiners = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"these": true, "those": true, "some": true, "any": true, "each": true,
	"every": true, "my": true, "our": true, "your": true, "their": true,
	"his": true, "her": true, "its": true,
}

var phraseVerbs = map[string]bool{
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "am": true, "has": true, "have": true, "had": true,
	"do": true, "does": true, "did": true, "keep": true, "keeps": true,
	"kept": true, "want": true, "wants": true, "wanted": true, "need": true,
	"needs": true, "needed": true, "try": true, "tries": true, "tried": true,
	"trying": true, "say": true, "says": true, "said": true, "call": true,
	"called": true, "calls": true, "ask": true, "asks": true, "asked": true,
	"get": true, "gets": true, "got": true, "getting": true, "receive": true,
	"received": true, "resolve": true, "resolved": true, "help": true,
	"helped": true, "contact": true, "contacted": true, "reported": true,
	"explained": true, "provided": true, "make": true, "made": true,
	"go": true, "goes": true, "went": true, "going": true, "come": true,
	"came": true, "see": true, "saw": true, "seems": true, "seemed": true,
	"fixed": true, "fix": true, "solved": true, "cancelled": true,
	"canceled": true, "requested": true, "request": true, "wanting": true,
	"expiring": true, "expired": true, "stopped": true, "started": true,
	"working": true, "works": true, "worked": true, "failed": true,
	"failing": true, "fails": true, "showing": true, "shows": true,
	"charged": true, "paid": true, "pay": true, "used": true, "use": true,
	"using": true, "set": true, "setting": true, "updated": true,
	"changed": true, "transferred": true, "moved": true, "offered": true,
	"escalated": true, "waiting": true, "waited": true, "can": true,
	"could": true, "will": true, "would": true, "should": true,
	"may": true, "might": true, "must": true,
}

var phraseAdverbs = map[string]bool{
	"fast": true, "quick": true, "again": true, "today": true, "now": true,
	"soon": true, "asap": true, "already": true, "still": true, "yet": true,
	"also": true, "just": true, "even": true, "then": true, "there": true,
	"here": true, "ago": true, "later": true, "well": true,
}
