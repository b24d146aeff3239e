package ingest

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// blockTags break text flow; their boundaries become whitespace.
var blockTags = map[string]struct{}{
	"br": {}, "p": {}, "div": {}, "li": {}, "ul": {}, "ol": {},
	"tr": {}, "td": {}, "th": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {},
}

// StripMarkup removes HTML tags and unescapes entities. Help-desk exports
// frequently embed <br> or <p> inside summaries. Text without markup is
// returned unchanged.
func StripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String()
			}
			// Malformed input: keep what was recovered.
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
				continue
			}
			if _, ok := blockTags[tag]; ok {
				b.WriteByte(' ')
			}
		}
	}
}

// Normalize strips markup, collapses whitespace and trims the result.
func Normalize(text string) string {
	return strings.Join(strings.Fields(StripMarkup(text)), " ")
}
