package omophub

import "context"

// MaxHierarchyLevels is the deepest descendant traversal the service allows.
const MaxHierarchyLevels = 10

const hierarchyPageSize = 100

// AncestorOptions tunes an ancestor query. MaxLevels of zero means unlimited.
type AncestorOptions struct {
	VocabularyID      string
	MaxLevels         int
	RelationshipTypes []string
	IncludePaths      bool
	OmitDistance      bool
	StandardOnly      bool
	IncludeDeprecated bool
	Page              int
	PageSize          int
}

// DescendantOptions tunes a descendant query. MaxLevels defaults to, and is
// capped at, MaxHierarchyLevels.
type DescendantOptions struct {
	VocabularyID      string
	MaxLevels         int
	RelationshipTypes []string
	OmitDistance      bool
	StandardOnly      bool
	IncludeDeprecated bool
	DomainIDs         []string
	ConceptClassIDs   []string
	IncludeSynonyms   bool
	Page              int
	PageSize          int
}

func ancestorsCall(id int64, o *AncestorOptions) call {
	if o == nil {
		o = &AncestorOptions{}
	}
	params := pageParams(o.Page, o.PageSize, hierarchyPageSize).
		Opt("vocabulary_id", o.VocabularyID).
		Opt("max_levels", o.MaxLevels).
		Opt("relationship_types", o.RelationshipTypes).
		Flag("include_paths", o.IncludePaths).
		Flag("include_distance", !o.OmitDistance).
		Flag("standard_only", o.StandardOnly).
		Flag("include_deprecated", o.IncludeDeprecated)
	return getCall(conceptPath(id, "/ancestors"), params)
}

func descendantsCall(id int64, o *DescendantOptions) call {
	if o == nil {
		o = &DescendantOptions{}
	}
	levels := o.MaxLevels
	if levels <= 0 || levels > MaxHierarchyLevels {
		levels = MaxHierarchyLevels
	}
	params := pageParams(o.Page, o.PageSize, hierarchyPageSize).
		Set("max_levels", levels).
		Opt("vocabulary_id", o.VocabularyID).
		Opt("relationship_types", o.RelationshipTypes).
		Flag("include_distance", !o.OmitDistance).
		Flag("standard_only", o.StandardOnly).
		Flag("include_deprecated", o.IncludeDeprecated).
		Opt("domain_ids", o.DomainIDs).
		Opt("concept_class_ids", o.ConceptClassIDs).
		Flag("include_synonyms", o.IncludeSynonyms)
	return getCall(conceptPath(id, "/descendants"), params)
}

// Hierarchy navigates is-a relationships between concepts.
type Hierarchy struct {
	r *Requester
}

// Ancestors returns the ancestors of id with a hierarchy summary.
func (h *Hierarchy) Ancestors(ctx context.Context, id int64, opts *AncestorOptions) (Object, error) {
	return run[Object](ctx, h.r, ancestorsCall(id, opts))
}

// Descendants returns the descendants of id with a hierarchy summary.
func (h *Hierarchy) Descendants(ctx context.Context, id int64, opts *DescendantOptions) (Object, error) {
	return run[Object](ctx, h.r, descendantsCall(id, opts))
}

// AsyncHierarchy is the concurrent form of Hierarchy.
type AsyncHierarchy struct {
	a *AsyncRequester
}

// Ancestors starts an ancestor query.
func (h *AsyncHierarchy) Ancestors(ctx context.Context, id int64, opts *AncestorOptions) *Future[Object] {
	return runAsync[Object](ctx, h.a, ancestorsCall(id, opts))
}

// Descendants starts a descendant query.
func (h *AsyncHierarchy) Descendants(ctx context.Context, id int64, opts *DescendantOptions) *Future[Object] {
	return runAsync[Object](ctx, h.a, descendantsCall(id, opts))
}
