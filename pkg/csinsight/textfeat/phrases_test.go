package textfeat

import (
	"reflect"
	"testing"
)

func TestKeyPhrases(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"SSL certificate error on our site, very urgent", []string{"ssl certificate error", "our site"}},
		{"Our SSL cert keeps expiring, annoying", []string{"our ssl cert"}},
		{"The billing portal is slow. The billing portal crashed", []string{"the billing portal", "the billing portal crashed"}},
		{"", nil},
		{"hello", nil},
	}
	for _, c := range cases {
		if got := KeyPhrases(c.text); !reflect.DeepEqual(got, c.want) {
			t.Errorf("KeyPhrases(%q) = %#v, want %#v", c.text, got, c.want)
		}
	}
}

func TestKeyPhrasesDeterminerAlone(t *testing.T) {
	// a lone determiner plus one word is still a phrase; a determiner alone is not
	got := KeyPhrases("the inbox. the")
	want := []string{"the inbox"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
