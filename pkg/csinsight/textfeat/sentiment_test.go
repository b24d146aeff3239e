package textfeat

import "testing"

func TestSentimentPositive(t *testing.T) {
	s := Sentiment("Great support, resolved my billing question fast")
	if s.Polarity <= 0.5 {
		t.Fatalf("expected polarity > 0.5, got %f", s.Polarity)
	}
	if s.Subjectivity <= 0 || s.Subjectivity > 1 {
		t.Fatalf("subjectivity out of range: %f", s.Subjectivity)
	}
}

func TestSentimentNegative(t *testing.T) {
	for _, text := range []string{
		"SSL certificate error on our site, very urgent",
		"Our SSL cert keeps expiring, annoying",
	} {
		if s := Sentiment(text); s.Polarity >= 0 {
			t.Errorf("%q: expected negative polarity, got %f", text, s.Polarity)
		}
	}
}

func TestSentimentNeutralAndEmpty(t *testing.T) {
	if s := Sentiment(""); s != (Score{}) {
		t.Fatalf("empty text should be neutral, got %+v", s)
	}
	if s := Sentiment("the customer asked about an invoice"); s != (Score{}) {
		t.Fatalf("unscored text should be neutral, got %+v", s)
	}
}

func TestSentimentNegationAndIntensifier(t *testing.T) {
	plain := Sentiment("helpful agent").Polarity
	negated := Sentiment("not helpful agent").Polarity
	if negated >= 0 {
		t.Fatalf("negated polarity should flip sign, got %f", negated)
	}
	boosted := Sentiment("very helpful agent").Polarity
	if boosted <= plain {
		t.Fatalf("intensifier should raise polarity: plain=%f boosted=%f", plain, boosted)
	}
	if s := Sentiment("extremely extremely extremely excellent"); s.Polarity > 1 || s.Subjectivity > 1 {
		t.Fatalf("scores must stay clamped, got %+v", s)
	}
}

func TestLabels(t *testing.T) {
	cases := []struct {
		polarity float64
		want     string
	}{
		{0.5, "Very Positive"},
		{0.1, "Positive"},
		{0.09, "Neutral"},
		{0, "Neutral"},
		{-0.1, "Negative"},
		{-0.5, "Very Negative"},
	}
	for _, c := range cases {
		if got := SentimentLabel(c.polarity); got != c.want {
			t.Errorf("SentimentLabel(%v) = %q, want %q", c.polarity, got, c.want)
		}
	}

	subj := []struct {
		s    float64
		want string
	}{
		{0.8, "Very Subjective"},
		{0.6, "Somewhat Subjective"},
		{0.4, "Mixed"},
		{0.2, "Somewhat Objective"},
		{0.1, "Very Objective"},
	}
	for _, c := range subj {
		if got := SubjectivityLabel(c.s); got != c.want {
			t.Errorf("SubjectivityLabel(%v) = %q, want %q", c.s, got, c.want)
		}
	}
}
