package sentiment

// keyword is one weighted phrase. Strong single-word signals carry weight 3,
// routine good/bad news 1-2, and low-signal filler terms fractional weights.
type keyword struct {
	phrase string
	weight float64
}

var positiveKeywords = []keyword{
	{"beats expectations", 3},
	{"record profit", 3},
	{"record revenue", 3},
	{"upgrade", 3},
	{"surge", 3},
	{"soar", 3},
	{"breakthrough", 3},
	{"buyback", 2},
	{"dividend increase", 2},
	{"raised guidance", 2},
	{"outperform", 2},
	{"rally", 2},
	{"strong growth", 2},
	{"new contract", 2},
	{"partnership", 2},
	{"expansion", 2},
	{"beat", 1},
	{"growth", 1},
	{"profit", 1},
	{"gain", 1},
	{"rise", 1},
	{"up", 0.5},
	{"positive", 0.5},
	{"optimistic", 0.5},
}

var negativeKeywords = []keyword{
	{"misses expectations", 3},
	{"profit warning", 3},
	{"downgrade", 3},
	{"plunge", 3},
	{"crash", 3},
	{"fraud", 3},
	{"investigation", 3},
	{"lawsuit", 2},
	{"layoffs", 2},
	{"dividend cut", 2},
	{"lowered guidance", 2},
	{"underperform", 2},
	{"selloff", 2},
	{"recall", 2},
	{"default", 2},
	{"miss", 1},
	{"decline", 1},
	{"loss", 1},
	{"drop", 1},
	{"fall", 1},
	{"down", 0.5},
	{"negative", 0.5},
	{"concern", 0.5},
}

// negationPatterns are phrases that invert an otherwise negative reading;
// each match adds a fixed bonus to the positive total.
var negationPatterns = []string{
	"not a decline",
	"no longer falling",
	"despite the concern",
	"despite concerns",
	"better than feared",
	"less than expected loss",
	"narrower loss",
}

const negationBonus = 1.5
