package omophub

import (
	"context"
	"net/url"
)

// ListDomainsOptions filters the domain listing.
type ListDomainsOptions struct {
	VocabularyIDs     []string
	OmitConceptCounts bool
	IncludeStatistics bool
	IncludeExamples   bool
	StandardOnly      bool
	IncludeInactive   bool
	SortBy            string
	SortOrder         string
}

// DomainConceptsOptions filters the concepts of one domain.
type DomainConceptsOptions struct {
	VocabularyIDs   []string
	ConceptClassIDs []string
	StandardOnly    bool
	Page            int
	PageSize        int
}

func listDomainsCall(o *ListDomainsOptions) call {
	if o == nil {
		o = &ListDomainsOptions{}
	}
	params := Params{
		"sort_by":    orDefault(o.SortBy, "domain_id"),
		"sort_order": orDefault(o.SortOrder, "asc"),
	}.
		Opt("vocabulary_ids", o.VocabularyIDs).
		Flag("include_concept_counts", !o.OmitConceptCounts).
		Flag("include_statistics", o.IncludeStatistics).
		Flag("include_examples", o.IncludeExamples).
		Flag("standard_only", o.StandardOnly)
	if o.IncludeInactive {
		params.Set("active_only", "false")
	}
	return getCall("/domains", params)
}

func domainConceptsCall(id string, o *DomainConceptsOptions) call {
	if o == nil {
		o = &DomainConceptsOptions{}
	}
	params := pageParams(o.Page, o.PageSize, 50).
		Opt("vocabulary_ids", o.VocabularyIDs).
		Opt("concept_class_ids", o.ConceptClassIDs).
		Flag("standard_only", o.StandardOnly)
	return getCall("/domains/"+url.PathEscape(id)+"/concepts", params)
}

// Domains reads OMOP domains such as Condition or Drug.
type Domains struct {
	r *Requester
}

// List returns all domains with a summary.
func (d *Domains) List(ctx context.Context, opts *ListDomainsOptions) (Object, error) {
	return run[Object](ctx, d.r, listDomainsCall(opts))
}

// Concepts returns one page of the concepts of a domain.
func (d *Domains) Concepts(ctx context.Context, id string, opts *DomainConceptsOptions) (Object, error) {
	return run[Object](ctx, d.r, domainConceptsCall(id, opts))
}

// AsyncDomains is the concurrent form of Domains.
type AsyncDomains struct {
	a *AsyncRequester
}

// List starts a domain listing.
func (d *AsyncDomains) List(ctx context.Context, opts *ListDomainsOptions) *Future[Object] {
	return runAsync[Object](ctx, d.a, listDomainsCall(opts))
}

// Concepts starts a domain concept listing.
func (d *AsyncDomains) Concepts(ctx context.Context, id string, opts *DomainConceptsOptions) *Future[Object] {
	return runAsync[Object](ctx, d.a, domainConceptsCall(id, opts))
}
