package ingest

import "strings"

// SplitSentences breaks text at '.', '!' and '?' runs followed by whitespace
// (or the end of text) and at line breaks. Empty sentences are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	emit := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" && hasWordRune(s) {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' || r == '\r' {
			emit(i + 1)
			continue
		}
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i
		for j+1 < len(runes) && (runes[j+1] == '.' || runes[j+1] == '!' || runes[j+1] == '?') {
			j++
		}
		if j+1 == len(runes) || isSpace(runes[j+1]) {
			emit(j + 1)
		}
		i = j
	}
	emit(len(runes))

	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func hasWordRune(s string) bool {
	return len(Words(s)) > 0
}
