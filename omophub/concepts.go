package omophub

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// MaxBatchConcepts is the most concept ids one batch lookup accepts.
const MaxBatchConcepts = 1000

// GetConceptOptions selects extra data for a concept lookup.
type GetConceptOptions struct {
	IncludeRelationships bool
	IncludeSynonyms      bool
}

// BatchOptions tunes a batch concept lookup.
type BatchOptions struct {
	IncludeRelationships bool
	IncludeSynonyms      bool
	IncludeMappings      bool
	VocabularyFilter     []string
	StandardOnly         bool
}

// SuggestOptions narrows concept suggestions. Limit defaults to 10.
type SuggestOptions struct {
	Vocabulary string
	Domain     string
	Limit      int
}

// RelatedOptions tunes a related-concepts query. MaxResults defaults to 50.
type RelatedOptions struct {
	RelatednessTypes     []string
	VocabularyIDs        []string
	DomainIDs            []string
	MinRelatednessScore  *float64
	MaxResults           int
	OmitScores           bool
	StandardConceptsOnly bool
}

// RelationshipOptions filters and pages the relationships of a concept.
type RelationshipOptions struct {
	RelationshipType string
	TargetVocabulary string
	IncludeInvalid   bool
	Page             int
	PageSize         int
}

func conceptPath(id int64, suffix string) string {
	return "/concepts/" + strconv.FormatInt(id, 10) + suffix
}

func getConceptCall(id int64, o *GetConceptOptions) call {
	if o == nil {
		o = &GetConceptOptions{}
	}
	params := Params{}.
		Flag("include_relationships", o.IncludeRelationships).
		Flag("include_synonyms", o.IncludeSynonyms)
	return getCall(conceptPath(id, ""), params)
}

func getByCodeCall(vocabularyID, code string) call {
	return getCall("/concepts/by-code/"+url.PathEscape(vocabularyID)+"/"+url.PathEscape(code), nil)
}

func batchCall(ids []int64, o *BatchOptions) call {
	if len(ids) == 0 || len(ids) > MaxBatchConcepts {
		return rejected(&Error{
			Kind:    ErrValidation,
			Message: fmt.Sprintf("batch lookup needs between 1 and %d concept ids, got %d", MaxBatchConcepts, len(ids)),
		})
	}
	if o == nil {
		o = &BatchOptions{}
	}
	body := map[string]any{"concept_ids": ids}
	setTrue(body, "include_relationships", o.IncludeRelationships)
	setTrue(body, "include_synonyms", o.IncludeSynonyms)
	setTrue(body, "include_mappings", o.IncludeMappings)
	if len(o.VocabularyFilter) > 0 {
		body["vocabulary_filter"] = o.VocabularyFilter
	}
	setTrue(body, "standard_only", o.StandardOnly)
	return postCall("/concepts/batch", body)
}

func suggestCall(query string, o *SuggestOptions) call {
	if o == nil {
		o = &SuggestOptions{}
	}
	limit := o.Limit
	if limit <= 0 {
		limit = 10
	}
	params := Params{"query": query, "limit": limit}.
		Opt("vocabulary", o.Vocabulary).
		Opt("domain", o.Domain)
	return getCall("/concepts/suggest", params)
}

func relatedCall(id int64, o *RelatedOptions) call {
	if o == nil {
		o = &RelatedOptions{}
	}
	maxResults := o.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}
	params := Params{
		"max_results":    maxResults,
		"include_scores": strconv.FormatBool(!o.OmitScores),
	}.
		Opt("relatedness_types", o.RelatednessTypes).
		Opt("vocabulary_ids", o.VocabularyIDs).
		Opt("domain_ids", o.DomainIDs).
		Flag("standard_concepts_only", o.StandardConceptsOnly)
	if o.MinRelatednessScore != nil {
		params.Set("min_relatedness_score", *o.MinRelatednessScore)
	}
	return getCall(conceptPath(id, "/related"), params)
}

func conceptRelationshipsCall(id int64, o *RelationshipOptions, defaultPageSize int) call {
	if o == nil {
		o = &RelationshipOptions{}
	}
	params := pageParams(o.Page, o.PageSize, defaultPageSize).
		Opt("relationship_type", o.RelationshipType).
		Opt("target_vocabulary", o.TargetVocabulary).
		Flag("include_invalid", o.IncludeInvalid)
	return getCall(conceptPath(id, "/relationships"), params)
}

// pageParams starts a parameter set with page and page_size, applying the
// endpoint's default size when none is given.
func pageParams(page, pageSize, defaultPageSize int) Params {
	page, pageSize = pageNumbers(page, pageSize, defaultPageSize)
	return Params{"page": page, "page_size": pageSize}
}

func pageNumbers(page, pageSize, defaultPageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func setTrue(body map[string]any, key string, on bool) {
	if on {
		body[key] = true
	}
}

// Concepts looks up individual concepts.
type Concepts struct {
	r *Requester
}

// Get returns the concept with the given id.
func (c *Concepts) Get(ctx context.Context, id int64, opts *GetConceptOptions) (*Concept, error) {
	return run[*Concept](ctx, c.r, getConceptCall(id, opts))
}

// GetByCode returns the concept identified by a vocabulary-specific code,
// e.g. ("SNOMED", "44054006").
func (c *Concepts) GetByCode(ctx context.Context, vocabularyID, code string) (*Concept, error) {
	return run[*Concept](ctx, c.r, getByCodeCall(vocabularyID, code))
}

// Batch looks up to MaxBatchConcepts concepts in one request.
func (c *Concepts) Batch(ctx context.Context, ids []int64, opts *BatchOptions) (*BatchResult, error) {
	return run[*BatchResult](ctx, c.r, batchCall(ids, opts))
}

// Suggest returns concept name suggestions for a partial query.
func (c *Concepts) Suggest(ctx context.Context, query string, opts *SuggestOptions) ([]Suggestion, error) {
	return run[[]Suggestion](ctx, c.r, suggestCall(query, opts))
}

// Related returns concepts related to id, with relatedness scores.
func (c *Concepts) Related(ctx context.Context, id int64, opts *RelatedOptions) (Object, error) {
	return run[Object](ctx, c.r, relatedCall(id, opts))
}

// Relationships returns one page of the relationships of id.
func (c *Concepts) Relationships(ctx context.Context, id int64, opts *RelationshipOptions) (Object, error) {
	return run[Object](ctx, c.r, conceptRelationshipsCall(id, opts, DefaultPageSize))
}

// AsyncConcepts is the concurrent form of Concepts.
type AsyncConcepts struct {
	a *AsyncRequester
}

// Get starts a concept lookup.
func (c *AsyncConcepts) Get(ctx context.Context, id int64, opts *GetConceptOptions) *Future[*Concept] {
	return runAsync[*Concept](ctx, c.a, getConceptCall(id, opts))
}

// GetByCode starts a lookup by vocabulary code.
func (c *AsyncConcepts) GetByCode(ctx context.Context, vocabularyID, code string) *Future[*Concept] {
	return runAsync[*Concept](ctx, c.a, getByCodeCall(vocabularyID, code))
}

// Batch starts a batch lookup.
func (c *AsyncConcepts) Batch(ctx context.Context, ids []int64, opts *BatchOptions) *Future[*BatchResult] {
	return runAsync[*BatchResult](ctx, c.a, batchCall(ids, opts))
}

// Suggest starts a suggestion query.
func (c *AsyncConcepts) Suggest(ctx context.Context, query string, opts *SuggestOptions) *Future[[]Suggestion] {
	return runAsync[[]Suggestion](ctx, c.a, suggestCall(query, opts))
}

// Related starts a related-concepts query.
func (c *AsyncConcepts) Related(ctx context.Context, id int64, opts *RelatedOptions) *Future[Object] {
	return runAsync[Object](ctx, c.a, relatedCall(id, opts))
}

// Relationships starts a relationships query.
func (c *AsyncConcepts) Relationships(ctx context.Context, id int64, opts *RelationshipOptions) *Future[Object] {
	return runAsync[Object](ctx, c.a, conceptRelationshipsCall(id, opts, DefaultPageSize))
}

// GetMany fetches every id concurrently and returns the concepts in the
// order of ids. The first failure is returned and the rest are abandoned.
func (c *AsyncConcepts) GetMany(ctx context.Context, ids []int64, opts *GetConceptOptions) ([]*Concept, error) {
	futures := make([]*Future[*Concept], len(ids))
	for i, id := range ids {
		futures[i] = c.Get(ctx, id, opts)
	}
	return Gather(ctx, futures...)
}
