package analysis

import "strings"

// stopwords is the English stop list used by the term counters and the
// topic vectorizer. Tokens are matched after normalization, so contractions
// appear in their apostrophe-less form.
var stopwords = make(map[string]bool)

func init() {
	list := `a about above after again against all am an and any are as at be
because been before being below between both but by can cannot could did do
does doing down during each few for from further had has have having he her
here hers herself him himself his how i if in into is it its itself just me
more most my myself no nor not now of off on once only or other our ours
ourselves out over own same she should so some such than that the their
theirs them themselves then there these they this those through to too under
until up very was we were what when where which while who whom why will with
you your yours yourself yourselves
im ive id youre youve youd hes shes weve theyre theyve isnt arent wasnt
werent dont doesnt didnt wont wouldnt couldnt shouldnt cant aint get got
gets would`

	for _, word := range strings.Fields(list) {
		stopwords[word] = true
	}
}
