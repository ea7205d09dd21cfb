package resolve

import (
	"log"

	"github.com/bunge-labs/billbot/internal/kb"
)

const (
	// DefaultThreshold is the minimum partial-alignment score a candidate
	// must reach before a fuzzy match is accepted.
	DefaultThreshold = 70

	// descriptionLimit caps how much of a bill's description is embedded in
	// a prompt; anything longer is cut to descriptionKeep runes plus an
	// ellipsis.
	descriptionLimit = 16000
	descriptionKeep  = 15970
)

// Catalog is the read side of the bill index.
type Catalog interface {
	All() ([]kb.Node, error)
}

// Match is an accepted fuzzy-resolution result. Title is the original
// indexed title, not the normalized form.
type Match struct {
	ID          int
	Title       string
	Description string
	Score       int
}

// Resolver finds the indexed bill best matching a detail query.
type Resolver struct {
	Catalog   Catalog
	Threshold int
	Logger    *log.Logger
}

// NewResolver builds a Resolver with the default acceptance threshold.
func NewResolver(c Catalog, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(log.Writer(), "[RESOLVE] ", log.LstdFlags)
	}
	return &Resolver{Catalog: c, Threshold: DefaultThreshold, Logger: logger}
}

// Resolve scores every indexed title against the query and returns the best
// match when it clears the threshold. Candidates arrive sorted by id, so a
// score tie always resolves to the lowest id. A miss is not an error; it
// demotes the request to a general answer.
func (r *Resolver) Resolve(query string) (Match, bool, error) {
	nodes, err := r.Catalog.All()
	if err != nil {
		return Match{}, false, err
	}
	if len(nodes) == 0 {
		return Match{}, false, nil
	}

	normQuery := NormalizeTitle(query)
	best := -1
	var bestNode kb.Node
	for _, n := range nodes {
		score := PartialRatio(normQuery, NormalizeTitle(n.Title))
		if score > best {
			best = score
			bestNode = n
		}
	}
	r.Logger.Printf("best fuzzy match for %q: bill %d (score %d)", query, bestNode.ID, best)
	if best < r.Threshold {
		return Match{}, false, nil
	}
	return Match{
		ID:          bestNode.ID,
		Title:       bestNode.Title,
		Description: CapDescription(bestNode.Description),
		Score:       best,
	}, true, nil
}

// CapDescription truncates a description longer than the embed limit to
// descriptionKeep runes plus an ellipsis marker.
func CapDescription(s string) string {
	r := []rune(s)
	if len(r) <= descriptionLimit {
		return s
	}
	return string(r[:descriptionKeep]) + "..."
}
