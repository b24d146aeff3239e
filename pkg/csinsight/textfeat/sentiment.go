package textfeat

import (
	"strings"

	"github.com/cognicore/csinsight/pkg/csinsight/ingest"
)

// Score is the polarity/subjectivity pair for one text.
type Score struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

type lexEntry struct {
	polarity     float64
	subjectivity float64
}

// negationFactor is applied to a scored word preceded by a negator.
const negationFactor = -0.5

// modifierReach is how many unscored words an intensifier or negator survives.
const modifierReach = 2

// Sentiment scores text against a support-domain polarity lexicon. Scores are
// averaged over the scored words; unscored or empty text is neutral (0, 0).
func Sentiment(text string) Score {
	words := ingest.Words(text)
	if len(words) == 0 {
		return Score{}
	}

	var polSum, subjSum float64
	scored := 0
	mult, negate, pending := 1.0, false, 0

	for _, w := range words {
		if f, ok := intensifiers[w]; ok {
			mult *= f
			pending = modifierReach
			continue
		}
		if isNegator(w) {
			negate = true
			pending = modifierReach
			continue
		}
		entry, ok := lexicon[w]
		if !ok {
			if pending > 0 {
				pending--
				if pending == 0 {
					mult, negate = 1.0, false
				}
			}
			continue
		}

		p := clamp(entry.polarity*mult, -1, 1)
		if negate {
			p *= negationFactor
		}
		polSum += p
		subjSum += clamp(entry.subjectivity*mult, 0, 1)
		scored++
		mult, negate, pending = 1.0, false, 0
	}

	if scored == 0 {
		return Score{}
	}
	n := float64(scored)
	return Score{
		Polarity:     clamp(polSum/n, -1, 1),
		Subjectivity: clamp(subjSum/n, 0, 1),
	}
}

func isNegator(w string) bool {
	switch w {
	case "not", "no", "never", "nothing", "nobody", "cannot", "without":
		return true
	}
	return strings.HasSuffix(w, "n't")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.3,
	"extremely":  1.5,
	"so":         1.2,
	"too":        1.2,
	"super":      1.3,
	"incredibly": 1.5,
	"quite":      1.1,
	"highly":     1.3,
	"totally":    1.3,
}

var lexicon = map[string]lexEntry{
	// positive
	"great":         {0.8, 0.75},
	"excellent":     {1.0, 1.0},
	"amazing":       {0.6, 0.9},
	"awesome":       {1.0, 1.0},
	"fantastic":     {0.4, 0.9},
	"wonderful":     {1.0, 1.0},
	"perfect":       {1.0, 1.0},
	"good":          {0.7, 0.6},
	"nice":          {0.6, 1.0},
	"happy":         {0.8, 1.0},
	"pleased":       {0.5, 0.6},
	"satisfied":     {0.5, 0.5},
	"thankful":      {0.6, 0.8},
	"thanks":        {0.2, 0.2},
	"thank":         {0.2, 0.2},
	"grateful":      {0.7, 0.8},
	"helpful":       {0.6, 0.4},
	"friendly":      {0.4, 0.5},
	"polite":        {0.4, 0.6},
	"patient":       {0.4, 0.5},
	"professional":  {0.3, 0.3},
	"knowledgeable": {0.4, 0.5},
	"quick":         {0.33, 0.5},
	"quickly":       {0.33, 0.5},
	"fast":          {0.3, 0.6},
	"easy":          {0.43, 0.83},
	"smooth":        {0.4, 0.6},
	"resolved":      {0.5, 0.4},
	"fixed":         {0.3, 0.3},
	"solved":        {0.4, 0.4},
	"working":       {0.2, 0.2},
	"works":         {0.2, 0.2},
	"love":          {0.5, 0.6},
	"loves":         {0.5, 0.6},
	"appreciate":    {0.5, 0.5},
	"appreciated":   {0.5, 0.5},
	"best":          {1.0, 0.3},
	"better":        {0.5, 0.5},
	"clear":         {0.1, 0.38},
	"success":       {0.3, 0.3},
	"successful":    {0.75, 0.95},
	"successfully":  {0.75, 0.95},
	"impressed":     {0.6, 0.8},
	"glad":          {0.5, 1.0},
	"recommend":     {0.3, 0.4},
	// negative
	"bad":           {-0.7, 0.67},
	"terrible":      {-1.0, 1.0},
	"horrible":      {-1.0, 1.0},
	"awful":         {-1.0, 1.0},
	"worst":         {-1.0, 1.0},
	"worse":         {-0.4, 0.6},
	"poor":          {-0.4, 0.6},
	"annoying":      {-0.8, 0.9},
	"annoyed":       {-0.6, 0.8},
	"angry":         {-0.5, 1.0},
	"upset":         {-0.6, 0.8},
	"frustrated":    {-0.7, 0.7},
	"frustrating":   {-0.7, 0.7},
	"disappointed":  {-0.75, 0.75},
	"disappointing": {-0.6, 0.7},
	"unhappy":       {-0.6, 0.9},
	"confusing":     {-0.3, 0.5},
	"confused":      {-0.4, 0.7},
	"difficult":     {-0.5, 1.0},
	"hard":          {-0.29, 0.54},
	"slow":          {-0.3, 0.39},
	"broken":        {-0.4, 0.4},
	"error":         {-0.4, 0.5},
	"errors":        {-0.4, 0.5},
	"fail":          {-0.5, 0.3},
	"failed":        {-0.5, 0.3},
	"failing":       {-0.5, 0.3},
	"failure":       {-0.5, 0.3},
	"problem":       {-0.2, 0.3},
	"problems":      {-0.2, 0.3},
	"issue":         {-0.1, 0.2},
	"issues":        {-0.1, 0.2},
	"wrong":         {-0.5, 0.9},
	"unable":        {-0.5, 0.5},
	"impossible":    {-0.67, 1.0},
	"useless":       {-0.5, 0.2},
	"unacceptable":  {-0.8, 0.9},
	"ridiculous":    {-0.33, 1.0},
	"rude":          {-0.6, 0.8},
	"unhelpful":     {-0.5, 0.5},
	"complaint":     {-0.3, 0.4},
	"complained":    {-0.3, 0.4},
	"angrily":       {-0.5, 1.0},
	"lost":          {-0.3, 0.3},
	"down":          {-0.16, 0.29},
	"outage":        {-0.5, 0.3},
	"hacked":        {-0.6, 0.4},
	"expensive":     {-0.5, 0.7},
	"overcharged":   {-0.6, 0.5},
	"cancel":        {-0.2, 0.2},
	"waiting":       {-0.2, 0.3},
	"waste":         {-0.6, 0.5},
	"stuck":         {-0.4, 0.4},
	"confusion":     {-0.3, 0.5},
	"unresolved":    {-0.5, 0.4},
}
