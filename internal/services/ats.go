package services

import (
	"math"
	"regexp"
	"strings"
)

var atsToken = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// ComputeATSScore returns the TF-IDF cosine similarity of the job description and
// the resume scaled to [0, 100] and rounded to two decimals. Empty input scores 0.
func ComputeATSScore(jobDescription, resume string) float64 {
	docs := [2]map[string]float64{termCounts(jobDescription), termCounts(resume)}
	if len(docs[0]) == 0 || len(docs[1]) == 0 {
		return 0
	}

	df := make(map[string]int)
	for _, doc := range docs {
		for term := range doc {
			df[term]++
		}
	}

	// smoothed idf over the two-document corpus
	const n = 2.0
	for _, doc := range docs {
		var norm float64
		for term, tf := range doc {
			w := tf * (math.Log((1+n)/(1+float64(df[term]))) + 1)
			doc[term] = w
			norm += w * w
		}
		norm = math.Sqrt(norm)
		for term := range doc {
			doc[term] /= norm
		}
	}

	var cosine float64
	for term, w := range docs[0] {
		cosine += w * docs[1][term]
	}

	score := math.Round(cosine*100*100) / 100
	return math.Max(0, math.Min(100, score))
}

func termCounts(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, tok := range atsToken.FindAllString(strings.ToLower(text), -1) {
		if _, stop := englishStopWords[tok]; stop {
			continue
		}
		counts[tok]++
	}
	return counts
}

var englishStopWords = func() map[string]struct{} {
	words := strings.Fields(`
a about above across after afterwards again against all almost alone along already also
although always am among amongst amoungst amount an and another any anyhow anyone anything
anyway anywhere are around as at back be became because become becomes becoming been before
beforehand behind being below beside besides between beyond bill both bottom but by call can
cannot cant co con could couldnt cry de describe detail do done down due during each eg eight
either eleven else elsewhere empty enough etc even ever every everyone everything everywhere
except few fifteen fifty fill find fire first five for former formerly forty found four from
front full further get give go had has hasnt have he hence her here hereafter hereby herein
hereupon hers herself him himself his how however hundred i ie if in inc indeed interest into
is it its itself keep last latter latterly least less ltd made many may me meanwhile might
mill mine more moreover most mostly move much must my myself name namely neither never
nevertheless next nine no nobody none noone nor not nothing now nowhere of off often on once
one only onto or other others otherwise our ours ourselves out over own part per perhaps
please put rather re same see seem seemed seeming seems serious several she should show side
since sincere six sixty so some somehow someone something sometime sometimes somewhere still
such system take ten than that the their them themselves then thence there thereafter thereby
therefore therein thereupon these they thick thin third this those though three through
throughout thru thus to together too top toward towards twelve twenty two un under until up
upon us very via was we well were what whatever when whence whenever where whereafter whereas
whereby wherein whereupon wherever whether which while whither who whoever whole whom whose
why will with within without would yet you your yours yourself yourselves`)

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()
