// Package kb mirrors relational bill records into a searchable full-text
// index. The index is the only data source the resolution path reads from.
package kb

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/mapping"
)

// Node is the indexed mirror of one bill record, keyed by the bill id.
type Node struct {
	ID          int
	Title       string
	Description string
	URL         string
	FilePath    string
}

// indexedBill is the stored document shape. Field names double as the
// searchable field names.
type indexedBill struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	FilePath    string `json:"file_path"`
}

// Index wraps a bleve index over bill titles and descriptions.
type Index struct {
	idx bleve.Index
}

// Open opens the index at path, creating it with the bill mapping when it
// does not exist yet. Existence is asked of bleve itself, not tracked here.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open bill index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// NewMemOnly builds an in-memory index with the same mapping, for tests and
// one-shot commands.
func NewMemOnly() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("open in-memory bill index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	m := bleve.NewIndexMapping()
	bill := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	bill.AddFieldMappingsAt("title", text)
	bill.AddFieldMappingsAt("description", text)
	m.DefaultMapping = bill
	return m
}

// Upsert merges the node into the index keyed by its id. Re-indexing an
// existing id replaces its fields; it never duplicates the node.
func (ix *Index) Upsert(n Node) error {
	doc := indexedBill{
		Title:       n.Title,
		Description: n.Description,
		URL:         n.URL,
		FilePath:    n.FilePath,
	}
	return ix.idx.Index(strconv.Itoa(n.ID), doc)
}

// All returns every indexed node sorted by ascending id. The scan is
// unbounded; the corpus is small enough that paging would be noise.
func (ix *Index) All() ([]Node, error) {
	count, err := ix.idx.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count indexed bills: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	req.Fields = []string{"title", "description", "url", "file_path"}
	res, err := ix.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("scan bill index: %w", err)
	}
	nodes := make([]Node, 0, len(res.Hits))
	for _, hit := range res.Hits {
		nodes = append(nodes, nodeFromFields(hit.ID, hit.Fields))
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}

// Search runs a ranked full-text query over titles and descriptions.
func (ix *Index) Search(query string, k int) ([]Node, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), k, 0, false)
	req.Fields = []string{"title", "description", "url", "file_path"}
	res, err := ix.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search bill index: %w", err)
	}
	nodes := make([]Node, 0, len(res.Hits))
	for _, hit := range res.Hits {
		nodes = append(nodes, nodeFromFields(hit.ID, hit.Fields))
	}
	return nodes, nil
}

// Count returns the number of indexed nodes.
func (ix *Index) Count() (uint64, error) {
	return ix.idx.DocCount()
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	return ix.idx.Close()
}

func nodeFromFields(id string, fields map[string]interface{}) Node {
	n := Node{}
	n.ID, _ = strconv.Atoi(id)
	n.Title, _ = fields["title"].(string)
	n.Description, _ = fields["description"].(string)
	n.URL, _ = fields["url"].(string)
	n.FilePath, _ = fields["file_path"].(string)
	return n
}
