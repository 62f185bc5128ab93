package omophub

import (
	"context"
	"iter"
)

// BasicSearchOptions filters and pages a basic concept search.
type BasicSearchOptions struct {
	VocabularyIDs   []string
	DomainIDs       []string
	ConceptClassIDs []string
	StandardConcept string
	IncludeSynonyms bool
	IncludeInvalid  bool
	MinScore        *float64
	ExactMatch      bool
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
}

func (o *BasicSearchOptions) params(query string, page, pageSize int) Params {
	params := Params{"query": query, "page": page, "page_size": pageSize}.
		Opt("vocabulary_ids", o.VocabularyIDs).
		Opt("domain_ids", o.DomainIDs).
		Opt("concept_class_ids", o.ConceptClassIDs).
		Opt("standard_concept", o.StandardConcept).
		Flag("include_synonyms", o.IncludeSynonyms).
		Flag("include_invalid", o.IncludeInvalid).
		Flag("exact_match", o.ExactMatch).
		Opt("sort_by", o.SortBy).
		Opt("sort_order", o.SortOrder)
	if o.MinScore != nil {
		params.Set("min_score", *o.MinScore)
	}
	return params
}

// AdvancedSearchOptions filters an advanced search.
type AdvancedSearchOptions struct {
	VocabularyIDs        []string
	DomainIDs            []string
	ConceptClassIDs      []string
	StandardConceptsOnly bool
	IncludeInvalid       bool
	RelationshipFilters  []Object
	Page                 int
	PageSize             int
}

// AutocompleteOptions narrows autocomplete suggestions. PageSize defaults to 10.
type AutocompleteOptions struct {
	VocabularyIDs []string
	Domains       []string
	PageSize      int
}

// SemanticSearchOptions filters a semantic search. StandardConcept is "S" or "C".
type SemanticSearchOptions struct {
	VocabularyIDs   []string
	DomainIDs       []string
	StandardConcept string
	ConceptClassID  string
	Threshold       *float64
	Page            int
	PageSize        int
}

func (o *SemanticSearchOptions) params(query string, page, pageSize int) Params {
	params := Params{"query": query, "page": page, "page_size": pageSize}.
		Opt("vocabulary_ids", o.VocabularyIDs).
		Opt("domain_ids", o.DomainIDs).
		Opt("standard_concept", o.StandardConcept).
		Opt("concept_class_id", o.ConceptClassID)
	if o.Threshold != nil {
		params.Set("threshold", *o.Threshold)
	}
	return params
}

// SimilarQuery names the reference for a similarity search. Exactly one of
// ConceptID, ConceptName and Query must be set.
type SimilarQuery struct {
	ConceptID   *int64
	ConceptName *string
	Query       *string

	// Algorithm is "semantic", "lexical" or "hybrid" (the default).
	Algorithm string
	// SimilarityThreshold defaults to 0.7.
	SimilarityThreshold float64
	PageSize            int
	VocabularyIDs       []string
	DomainIDs           []string
	StandardConcept     string

	IncludeInvalid      *bool
	IncludeScores       *bool
	IncludeExplanations *bool
}

func basicSearchCall(query string, o *BasicSearchOptions) call {
	if o == nil {
		o = &BasicSearchOptions{}
	}
	page, size := pageNumbers(o.Page, o.PageSize, DefaultPageSize)
	return getCall("/search/concepts", o.params(query, page, size))
}

func advancedSearchCall(query string, o *AdvancedSearchOptions) call {
	if o == nil {
		o = &AdvancedSearchOptions{}
	}
	body := map[string]any{"query": query}
	setList(body, "vocabulary_ids", o.VocabularyIDs)
	setList(body, "domain_ids", o.DomainIDs)
	setList(body, "concept_class_ids", o.ConceptClassIDs)
	setTrue(body, "standard_concepts_only", o.StandardConceptsOnly)
	setTrue(body, "include_invalid", o.IncludeInvalid)
	if len(o.RelationshipFilters) > 0 {
		body["relationship_filters"] = o.RelationshipFilters
	}
	if o.Page > 1 {
		body["page"] = o.Page
	}
	if o.PageSize > 0 && o.PageSize != DefaultPageSize {
		body["page_size"] = o.PageSize
	}
	return postCall("/search/advanced", body)
}

func autocompleteCall(query string, o *AutocompleteOptions) call {
	if o == nil {
		o = &AutocompleteOptions{}
	}
	size := o.PageSize
	if size <= 0 {
		size = 10
	}
	params := Params{"query": query, "page_size": size}.
		Opt("vocabulary_ids", o.VocabularyIDs).
		Opt("domains", o.Domains)
	return getCall("/search/suggest", params)
}

func semanticSearchCall(query string, o *SemanticSearchOptions) call {
	if o == nil {
		o = &SemanticSearchOptions{}
	}
	page, size := pageNumbers(o.Page, o.PageSize, DefaultPageSize)
	return getCall("/concepts/semantic-search", o.params(query, page, size))
}

func similarCall(q SimilarQuery) call {
	inputs := 0
	for _, set := range []bool{q.ConceptID != nil, q.ConceptName != nil, q.Query != nil} {
		if set {
			inputs++
		}
	}
	if inputs != 1 {
		return rejected(&Error{
			Kind:    ErrValidation,
			Message: "Exactly one of concept_id, concept_name, or query must be provided",
		})
	}

	algorithm := q.Algorithm
	if algorithm == "" {
		algorithm = "hybrid"
	}
	threshold := q.SimilarityThreshold
	if threshold == 0 {
		threshold = 0.7
	}
	body := map[string]any{
		"algorithm":            algorithm,
		"similarity_threshold": threshold,
	}
	switch {
	case q.ConceptID != nil:
		body["concept_id"] = *q.ConceptID
	case q.ConceptName != nil:
		body["concept_name"] = *q.ConceptName
	default:
		body["query"] = *q.Query
	}
	if q.PageSize > 0 && q.PageSize != DefaultPageSize {
		body["page_size"] = q.PageSize
	}
	setList(body, "vocabulary_ids", q.VocabularyIDs)
	setList(body, "domain_ids", q.DomainIDs)
	if q.StandardConcept != "" {
		body["standard_concept"] = q.StandardConcept
	}
	for key, v := range map[string]*bool{
		"include_invalid":      q.IncludeInvalid,
		"include_scores":       q.IncludeScores,
		"include_explanations": q.IncludeExplanations,
	} {
		if v != nil {
			body[key] = *v
		}
	}
	return postCall("/search/similar", body)
}

func basicSearchListing(query string, o *BasicSearchOptions) listing {
	if o == nil {
		o = &BasicSearchOptions{}
	}
	return listing{
		path: "/search/concepts",
		key:  "concepts",
		params: func(page, pageSize int) Params {
			return o.params(query, page, pageSize)
		},
	}
}

func semanticSearchListing(query string, o *SemanticSearchOptions) listing {
	if o == nil {
		o = &SemanticSearchOptions{}
	}
	return listing{
		path: "/concepts/semantic-search",
		key:  "results",
		params: func(page, pageSize int) Params {
			return o.params(query, page, pageSize)
		},
	}
}

func setList(body map[string]any, key string, values []string) {
	if len(values) > 0 {
		body[key] = values
	}
}

// Search runs concept searches.
type Search struct {
	r *Requester
}

// Basic returns one page of a text search.
func (s *Search) Basic(ctx context.Context, query string, opts *BasicSearchOptions) (*SearchPage, error) {
	return run[*SearchPage](ctx, s.r, basicSearchCall(query, opts))
}

// BasicIter walks every page of a text search lazily. opts.Page is ignored.
func (s *Search) BasicIter(ctx context.Context, query string, opts *BasicSearchOptions) iter.Seq2[Concept, error] {
	size := 0
	if opts != nil {
		size = opts.PageSize
	}
	return Paginate(ctx, listPages[Concept](s.r, basicSearchListing(query, opts)), capPageSize(size))
}

// Advanced runs a faceted search.
func (s *Search) Advanced(ctx context.Context, query string, opts *AdvancedSearchOptions) (*SearchResult, error) {
	return run[*SearchResult](ctx, s.r, advancedSearchCall(query, opts))
}

// Autocomplete returns suggestions for a partial query.
func (s *Search) Autocomplete(ctx context.Context, query string, opts *AutocompleteOptions) ([]Suggestion, error) {
	return run[[]Suggestion](ctx, s.r, autocompleteCall(query, opts))
}

// Semantic returns one page of an embedding search.
func (s *Search) Semantic(ctx context.Context, query string, opts *SemanticSearchOptions) (*SemanticPage, error) {
	return run[*SemanticPage](ctx, s.r, semanticSearchCall(query, opts))
}

// SemanticIter walks every page of an embedding search lazily.
func (s *Search) SemanticIter(ctx context.Context, query string, opts *SemanticSearchOptions) iter.Seq2[SemanticResult, error] {
	size := 0
	if opts != nil {
		size = opts.PageSize
	}
	return Paginate(ctx, listPages[SemanticResult](s.r, semanticSearchListing(query, opts)), capPageSize(size))
}

// Similar finds concepts similar to a concept or a free-text query. A query
// without exactly one reference fails with ErrValidation and sends nothing.
func (s *Search) Similar(ctx context.Context, q SimilarQuery) (*SimilarResult, error) {
	return run[*SimilarResult](ctx, s.r, similarCall(q))
}

// AsyncSearch is the concurrent form of Search.
type AsyncSearch struct {
	a *AsyncRequester
}

// Basic starts a text search.
func (s *AsyncSearch) Basic(ctx context.Context, query string, opts *BasicSearchOptions) *Future[*SearchPage] {
	return runAsync[*SearchPage](ctx, s.a, basicSearchCall(query, opts))
}

// BasicIter streams every page of a text search.
func (s *AsyncSearch) BasicIter(query string, opts *BasicSearchOptions) *Stream[Concept] {
	size := 0
	if opts != nil {
		size = opts.PageSize
	}
	return PaginateAsync(listPagesAsync[Concept](s.a, basicSearchListing(query, opts)), capPageSize(size))
}

// Advanced starts a faceted search.
func (s *AsyncSearch) Advanced(ctx context.Context, query string, opts *AdvancedSearchOptions) *Future[*SearchResult] {
	return runAsync[*SearchResult](ctx, s.a, advancedSearchCall(query, opts))
}

// Autocomplete starts a suggestion query.
func (s *AsyncSearch) Autocomplete(ctx context.Context, query string, opts *AutocompleteOptions) *Future[[]Suggestion] {
	return runAsync[[]Suggestion](ctx, s.a, autocompleteCall(query, opts))
}

// Semantic starts an embedding search.
func (s *AsyncSearch) Semantic(ctx context.Context, query string, opts *SemanticSearchOptions) *Future[*SemanticPage] {
	return runAsync[*SemanticPage](ctx, s.a, semanticSearchCall(query, opts))
}

// SemanticIter streams every page of an embedding search.
func (s *AsyncSearch) SemanticIter(query string, opts *SemanticSearchOptions) *Stream[SemanticResult] {
	size := 0
	if opts != nil {
		size = opts.PageSize
	}
	return PaginateAsync(listPagesAsync[SemanticResult](s.a, semanticSearchListing(query, opts)), capPageSize(size))
}

// Similar starts a similarity search.
func (s *AsyncSearch) Similar(ctx context.Context, q SimilarQuery) *Future[*SimilarResult] {
	return runAsync[*SimilarResult](ctx, s.a, similarCall(q))
}
