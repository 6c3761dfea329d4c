package keyword

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/shashin/internal/models"
)

const (
	fieldDescription = "description"
	fieldDate        = "date"
)

// BleveIndex implements KeywordIndex with an in-memory Bleve index.
// The embedding index file is the source of truth, so nothing is written to disk.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates an empty in-memory index.
func NewBleveIndex() (*BleveIndex, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// standard analyzer: lowercase + tokenize, no stemming, so dish names match literally
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(fieldDescription, textFieldMapping)
	docMapping.AddFieldMappingsAt(fieldDate, textFieldMapping)
	im.AddDocumentMapping("caption", docMapping)
	im.DefaultType = "caption"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Build indexes all records in one batch.
func (b *BleveIndex) Build(ctx context.Context, records []models.EmbeddingRecord) error {
	batch := b.index.NewBatch()
	for i := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(docID(records[i].ID), captionDoc(&records[i])); err != nil {
			return fmt.Errorf("batch record %d: %w", records[i].ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}
	return nil
}

// Index adds or replaces one record.
func (b *BleveIndex) Index(ctx context.Context, rec *models.EmbeddingRecord) error {
	return b.index.Index(docID(rec.ID), captionDoc(rec))
}

// Search runs a match query over captions and dates and returns up to limit results.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	var q blevequery.Query
	if opts != nil && opts.FuzzyEnabled {
		fuzziness := opts.Fuzziness
		if fuzziness <= 0 {
			fuzziness = 1
		}
		q = buildFuzzyQuery(query, fuzziness)
	} else {
		desc := bleve.NewMatchQuery(query)
		desc.SetField(fieldDescription)
		date := bleve.NewMatchQuery(query)
		date.SetField(fieldDate)
		q = bleve.NewDisjunctionQuery(desc, date)
	}
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		out = append(out, &KeywordResult{ID: id, Score: hit.Score})
	}
	return out, nil
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// buildFuzzyQuery ORs one FuzzyQuery per term over the description field.
func buildFuzzyQuery(queryStr string, fuzziness int) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(fieldDescription)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(fieldDescription)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a record from the index.
func (b *BleveIndex) Delete(ctx context.Context, id int) error {
	return b.index.Delete(docID(id))
}

// DocCount returns the number of indexed captions.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

func docID(id int) string { return strconv.Itoa(id) }

func captionDoc(rec *models.EmbeddingRecord) map[string]interface{} {
	return map[string]interface{}{
		fieldDescription: rec.Description,
		fieldDate:        rec.Date,
	}
}
