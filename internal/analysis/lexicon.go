package analysis

// Valence lexicon for the sentiment scorer. Values follow the usual
// crowd-rated convention: roughly -4 (most negative) to +4 (most positive).
// The list leans toward vocabulary that shows up in product feedback.
var lexicon = map[string]float64{
	// Positive
	"good":        1.9,
	"great":       3.1,
	"excellent":   2.7,
	"amazing":     2.8,
	"awesome":     3.1,
	"fantastic":   2.6,
	"wonderful":   2.7,
	"perfect":     2.7,
	"love":        3.2,
	"loved":       2.9,
	"loves":       2.7,
	"like":        1.5,
	"liked":       1.6,
	"best":        3.2,
	"better":      1.9,
	"happy":       2.7,
	"glad":        2.0,
	"pleased":     2.1,
	"delighted":   2.8,
	"nice":        1.8,
	"enjoy":       2.2,
	"enjoyed":     2.3,
	"impressive":  2.3,
	"impressed":   2.2,
	"satisfied":   1.8,
	"satisfying":  1.9,
	"recommend":   1.5,
	"recommended": 1.6,
	"helpful":     1.9,
	"useful":      1.8,
	"easy":        1.9,
	"simple":      1.3,
	"smooth":      1.3,
	"fast":        1.3,
	"quick":       1.1,
	"responsive":  1.4,
	"reliable":    1.6,
	"solid":       1.5,
	"sturdy":      1.4,
	"durable":     1.5,
	"comfortable": 1.7,
	"intuitive":   1.7,
	"affordable":  1.3,
	"bargain":     1.7,
	"worth":       0.9,
	"win":         2.8,
	"winner":      2.8,
	"works":       1.1,
	"worked":      1.2,
	"thanks":      1.9,
	"thank":       2.1,
	"fine":        0.8,
	"okay":        0.9,
	"ok":          0.9,
	"cool":        1.3,
	"super":       2.9,
	"brilliant":   2.8,
	"beautiful":   2.9,
	"fresh":       1.3,
	"clean":       1.6,
	"clear":       1.1,
	"stable":      1.2,
	"secure":      1.4,
	"improved":    1.8,
	"improvement": 1.6,
	"upgrade":     1.4,

	// Negative
	"bad":           -2.5,
	"terrible":      -2.1,
	"horrible":      -2.5,
	"awful":         -2.0,
	"worst":         -3.1,
	"worse":         -2.1,
	"hate":          -2.7,
	"hated":         -2.6,
	"poor":          -2.1,
	"poorly":        -1.9,
	"disappointing": -2.2,
	"disappointed":  -1.9,
	"frustrating":   -2.1,
	"frustrated":    -2.0,
	"frustration":   -1.9,
	"annoying":      -1.9,
	"annoyed":       -1.8,
	"angry":         -2.3,
	"upset":         -1.8,
	"unhappy":       -1.9,
	"sad":           -2.1,
	"regret":        -1.8,
	"useless":       -1.8,
	"unusable":      -2.2,
	"unreliable":    -1.8,
	"broken":        -1.9,
	"broke":         -1.7,
	"breaks":        -1.6,
	"defective":     -2.0,
	"damaged":       -1.7,
	"flimsy":        -1.5,
	"cheap":         -0.6,
	"expensive":     -1.2,
	"overpriced":    -2.0,
	"costly":        -1.1,
	"late":          -1.3,
	"delayed":       -1.4,
	"slow":          -1.2,
	"lag":           -1.0,
	"laggy":         -1.3,
	"freeze":        -1.1,
	"freezes":       -1.2,
	"froze":         -1.2,
	"crash":         -1.7,
	"crashes":       -1.8,
	"crashed":       -1.8,
	"bug":           -1.3,
	"buggy":         -1.8,
	"glitch":        -1.3,
	"error":         -1.6,
	"errors":        -1.7,
	"problem":       -1.5,
	"problems":      -1.6,
	"issue":         -0.8,
	"issues":        -0.9,
	"fail":          -2.0,
	"failed":        -2.0,
	"failure":       -2.1,
	"fails":         -1.9,
	"difficult":     -1.5,
	"hard":          -0.4,
	"complicated":   -1.1,
	"confusing":     -1.4,
	"confused":      -1.3,
	"unclear":       -1.1,
	"missing":       -1.1,
	"lost":          -1.3,
	"stuck":         -1.2,
	"waste":         -1.8,
	"wasted":        -1.9,
	"scam":          -2.6,
	"noisy":         -1.1,
	"uncomfortable": -1.4,
	"ugly":          -1.9,
	"dirty":         -1.6,
	"wrong":         -1.6,
	"refund":        -0.9,
	"return":        -0.4,
	"returned":      -0.5,
	"avoid":         -1.4,
}

// Degree modifiers. A booster ahead of a rated word nudges its valence up or
// down by this amount, damped with distance.
const boosterIncrement = 0.293

var boosters = map[string]float64{
	"very":          boosterIncrement,
	"really":        boosterIncrement,
	"extremely":     boosterIncrement,
	"absolutely":    boosterIncrement,
	"completely":    boosterIncrement,
	"totally":       boosterIncrement,
	"so":            boosterIncrement,
	"too":           boosterIncrement,
	"incredibly":    boosterIncrement,
	"especially":    boosterIncrement,
	"particularly":  boosterIncrement,
	"remarkably":    boosterIncrement,
	"exceptionally": boosterIncrement,
	"entirely":      boosterIncrement,
	"utterly":       boosterIncrement,
	"highly":        boosterIncrement,

	"barely":       -boosterIncrement,
	"hardly":       -boosterIncrement,
	"scarcely":     -boosterIncrement,
	"slightly":     -boosterIncrement,
	"somewhat":     -boosterIncrement,
	"marginally":   -boosterIncrement,
	"kinda":        -boosterIncrement,
	"sorta":        -boosterIncrement,
	"almost":       -boosterIncrement,
	"less":         -boosterIncrement,
	"partly":       -boosterIncrement,
	"occasionally": -boosterIncrement,
}

// negationScalar flips and dampens a valence when a negator precedes it
// within the three-token lookbehind window.
const negationScalar = -0.74

var negators = map[string]bool{
	"not":      true,
	"no":       true,
	"never":    true,
	"none":     true,
	"nothing":  true,
	"neither":  true,
	"nor":      true,
	"nobody":   true,
	"cannot":   true,
	"cant":     true,
	"wont":     true,
	"dont":     true,
	"doesnt":   true,
	"didnt":    true,
	"isnt":     true,
	"wasnt":    true,
	"arent":    true,
	"werent":   true,
	"aint":     true,
	"couldnt":  true,
	"shouldnt": true,
	"wouldnt":  true,
	"hasnt":    true,
	"havent":   true,
	"hadnt":    true,
	"without":  true,
	"rarely":   true,
	"seldom":   true,
	"despite":  true,
}
