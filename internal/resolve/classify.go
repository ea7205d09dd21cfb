package resolve

import "strings"

// Mode tags how a query should be answered.
type Mode int

const (
	// ModeDetail asks about one specific bill.
	ModeDetail Mode = iota
	// ModeList asks for an enumeration of known bills.
	ModeList
	// ModeGeneral is a detail request that no indexed bill matched; it is
	// produced by the resolver, never by Classify.
	ModeGeneral
)

func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeGeneral:
		return "general"
	default:
		return "detail"
	}
}

// listPhrases are the enumeration-intent markers. Plain substrings, matched
// case-insensitively; no tokenization.
var listPhrases = []string{
	"list of bills",
	"bills in kenya",
	"all bills",
	"list bills",
	"what bills",
	"which bills",
	"bills passed",
	"bills available",
	"bills proposed",
	"bills introduced",
	"bills currently",
	"bills in parliament",
	"give me a list of bills",
	"provide list of bills",
	"what are the bills",
}

// Classify labels a query as a list-enumeration request or a detail request.
// Deterministic and side-effect-free.
func Classify(query string) Mode {
	q := strings.ToLower(query)
	for _, phrase := range listPhrases {
		if strings.Contains(q, phrase) {
			return ModeList
		}
	}
	return ModeDetail
}
