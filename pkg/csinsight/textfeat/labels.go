package textfeat

// SentimentLabel converts a polarity score to descriptive text.
func SentimentLabel(polarity float64) string {
	switch {
	case polarity >= 0.5:
		return "Very Positive"
	case polarity >= 0.1:
		return "Positive"
	case polarity <= -0.5:
		return "Very Negative"
	case polarity <= -0.1:
		return "Negative"
	}
	return "Neutral"
}

// SubjectivityLabel converts a subjectivity score to descriptive text.
func SubjectivityLabel(subjectivity float64) string {
	switch {
	case subjectivity >= 0.8:
		return "Very Subjective"
	case subjectivity >= 0.6:
		return "Somewhat Subjective"
	case subjectivity >= 0.4:
		return "Mixed"
	case subjectivity >= 0.2:
		return "Somewhat Objective"
	}
	return "Very Objective"
}
