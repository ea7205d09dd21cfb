package resolve

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCorpus names the bill corpus in the listing header.
const DefaultCorpus = "Bills in Kenya"

// Aggregator renders the deduplicated, year-grouped listing of all indexed
// bills. Its output is a final answer; it never goes through generation.
type Aggregator struct {
	Catalog Catalog
	Corpus  string
}

// NewAggregator builds an Aggregator over c. An empty corpus name falls back
// to DefaultCorpus.
func NewAggregator(c Catalog, corpus string) *Aggregator {
	if corpus == "" {
		corpus = DefaultCorpus
	}
	return &Aggregator{Catalog: c, Corpus: corpus}
}

// ListAll groups normalized titles by the year found in their raw title and
// renders them newest-first, "Unknown" last, titles ascending within a year.
// Titles that normalize identically collapse to one entry.
func (a *Aggregator) ListAll() (string, error) {
	nodes, err := a.Catalog.All()
	if err != nil {
		return "", err
	}

	seen := make(map[string]bool)
	buckets := make(map[string][]string)
	for _, n := range nodes {
		norm := NormalizeTitle(n.Title)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		year := ExtractYear(n.Title)
		buckets[year] = append(buckets[year], norm)
	}

	years := make([]string, 0, len(buckets))
	for y := range buckets {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool {
		if years[i] == "Unknown" {
			return false
		}
		if years[j] == "Unknown" {
			return true
		}
		return years[i] > years[j]
	})

	var b strings.Builder
	fmt.Fprintf(&b, "List of %s grouped by year:\n", a.Corpus)
	for _, y := range years {
		titles := buckets[y]
		sort.Strings(titles)
		fmt.Fprintf(&b, "\nYear %s:\n", y)
		for _, t := range titles {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	return b.String(), nil
}
