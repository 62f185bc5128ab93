package omophub

import (
	"context"
	"strconv"
)

// RelationshipTypeOptions filters the relationship type catalogue.
type RelationshipTypeOptions struct {
	VocabularyIDs     []string
	IncludeReverse    bool
	IncludeUsageStats bool
	IncludeExamples   bool
	Category          string
	IsDefining        *bool
	StandardOnly      bool
	Page              int
	PageSize          int
}

func relationshipTypesCall(o *RelationshipTypeOptions) call {
	if o == nil {
		o = &RelationshipTypeOptions{}
	}
	params := pageParams(o.Page, o.PageSize, 100).
		Opt("vocabulary_ids", o.VocabularyIDs).
		Flag("include_reverse", o.IncludeReverse).
		Flag("include_usage_stats", o.IncludeUsageStats).
		Flag("include_examples", o.IncludeExamples).
		Opt("category", o.Category).
		Flag("standard_only", o.StandardOnly)
	if o.IsDefining != nil {
		params.Set("is_defining", strconv.FormatBool(*o.IsDefining))
	}
	return getCall("/relationships/types", params)
}

// Relationships reads concept relationships and the relationship catalogue.
type Relationships struct {
	r *Requester
}

// Get returns one page of the relationships of id. PageSize defaults to 50.
func (r *Relationships) Get(ctx context.Context, id int64, opts *RelationshipOptions) (Object, error) {
	return run[Object](ctx, r.r, conceptRelationshipsCall(id, opts, 50))
}

// Types lists the available relationship types.
func (r *Relationships) Types(ctx context.Context, opts *RelationshipTypeOptions) (Object, error) {
	return run[Object](ctx, r.r, relationshipTypesCall(opts))
}

// AsyncRelationships is the concurrent form of Relationships.
type AsyncRelationships struct {
	a *AsyncRequester
}

// Get starts a relationships query.
func (r *AsyncRelationships) Get(ctx context.Context, id int64, opts *RelationshipOptions) *Future[Object] {
	return runAsync[Object](ctx, r.a, conceptRelationshipsCall(id, opts, 50))
}

// Types starts a relationship type listing.
func (r *AsyncRelationships) Types(ctx context.Context, opts *RelationshipTypeOptions) *Future[Object] {
	return runAsync[Object](ctx, r.a, relationshipTypesCall(opts))
}
