package omophub

import (
	"context"
	"net/url"
)

// ListVocabulariesOptions sorts and pages the vocabulary listing. SortBy
// defaults to "name", SortOrder to "asc" and PageSize to 100.
type ListVocabulariesOptions struct {
	IncludeStats    bool
	IncludeInactive bool
	SortBy          string
	SortOrder       string
	Page            int
	PageSize        int
}

// GetVocabularyOptions selects extra data for a vocabulary lookup.
type GetVocabularyOptions struct {
	IncludeStats   bool
	IncludeDomains bool
}

// VocabularyDomainsOptions filters the per-vocabulary domain statistics.
type VocabularyDomainsOptions struct {
	VocabularyIDs []string
	Page          int
	PageSize      int
}

// VocabularyConceptsOptions filters the concepts of one vocabulary.
type VocabularyConceptsOptions struct {
	DomainID       string
	ConceptClassID string
	StandardOnly   bool
	Page           int
	PageSize       int
}

func vocabularyPath(id, suffix string) string {
	return "/vocabularies/" + url.PathEscape(id) + suffix
}

func listVocabulariesCall(o *ListVocabulariesOptions) call {
	if o == nil {
		o = &ListVocabulariesOptions{}
	}
	params := pageParams(o.Page, o.PageSize, 100).
		Set("sort_by", orDefault(o.SortBy, "name")).
		Set("sort_order", orDefault(o.SortOrder, "asc")).
		Flag("include_stats", o.IncludeStats).
		Flag("include_inactive", o.IncludeInactive)
	return getCall("/vocabularies", params)
}

func getVocabularyCall(id string, o *GetVocabularyOptions) call {
	if o == nil {
		o = &GetVocabularyOptions{}
	}
	params := Params{}.
		Flag("include_stats", o.IncludeStats).
		Flag("include_domains", o.IncludeDomains)
	return getCall(vocabularyPath(id, ""), params)
}

func vocabularyStatsCall(id string) call {
	return getCall(vocabularyPath(id, "/stats"), nil)
}

func vocabularyDomainsCall(o *VocabularyDomainsOptions) call {
	if o == nil {
		o = &VocabularyDomainsOptions{}
	}
	params := pageParams(o.Page, o.PageSize, 50).
		Opt("vocabulary_ids", o.VocabularyIDs)
	return getCall("/vocabularies/domains", params)
}

func vocabularyConceptsCall(id string, o *VocabularyConceptsOptions) call {
	if o == nil {
		o = &VocabularyConceptsOptions{}
	}
	params := pageParams(o.Page, o.PageSize, 50).
		Opt("domain_id", o.DomainID).
		Opt("concept_class_id", o.ConceptClassID).
		Flag("standard_only", o.StandardOnly)
	return getCall(vocabularyPath(id, "/concepts"), params)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Vocabularies reads vocabulary metadata.
type Vocabularies struct {
	r *Requester
}

// List returns one page of vocabularies.
func (v *Vocabularies) List(ctx context.Context, opts *ListVocabulariesOptions) (Object, error) {
	return run[Object](ctx, v.r, listVocabulariesCall(opts))
}

// Get returns the vocabulary with the given id.
func (v *Vocabularies) Get(ctx context.Context, id string, opts *GetVocabularyOptions) (*Vocabulary, error) {
	return run[*Vocabulary](ctx, v.r, getVocabularyCall(id, opts))
}

// Stats returns concept counts for a vocabulary.
func (v *Vocabularies) Stats(ctx context.Context, id string) (*VocabularyStats, error) {
	return run[*VocabularyStats](ctx, v.r, vocabularyStatsCall(id))
}

// Domains returns domain statistics across vocabularies.
func (v *Vocabularies) Domains(ctx context.Context, opts *VocabularyDomainsOptions) (Object, error) {
	return run[Object](ctx, v.r, vocabularyDomainsCall(opts))
}

// Concepts returns one page of the concepts of a vocabulary.
func (v *Vocabularies) Concepts(ctx context.Context, id string, opts *VocabularyConceptsOptions) (Object, error) {
	return run[Object](ctx, v.r, vocabularyConceptsCall(id, opts))
}

// AsyncVocabularies is the concurrent form of Vocabularies.
type AsyncVocabularies struct {
	a *AsyncRequester
}

// List starts a vocabulary listing.
func (v *AsyncVocabularies) List(ctx context.Context, opts *ListVocabulariesOptions) *Future[Object] {
	return runAsync[Object](ctx, v.a, listVocabulariesCall(opts))
}

// Get starts a vocabulary lookup.
func (v *AsyncVocabularies) Get(ctx context.Context, id string, opts *GetVocabularyOptions) *Future[*Vocabulary] {
	return runAsync[*Vocabulary](ctx, v.a, getVocabularyCall(id, opts))
}

// Stats starts a statistics lookup.
func (v *AsyncVocabularies) Stats(ctx context.Context, id string) *Future[*VocabularyStats] {
	return runAsync[*VocabularyStats](ctx, v.a, vocabularyStatsCall(id))
}

// Domains starts a domain statistics query.
func (v *AsyncVocabularies) Domains(ctx context.Context, opts *VocabularyDomainsOptions) *Future[Object] {
	return runAsync[Object](ctx, v.a, vocabularyDomainsCall(opts))
}

// Concepts starts a vocabulary concept listing.
func (v *AsyncVocabularies) Concepts(ctx context.Context, id string, opts *VocabularyConceptsOptions) *Future[Object] {
	return runAsync[Object](ctx, v.a, vocabularyConceptsCall(id, opts))
}
