package omophub

import "context"

// MappingOptions filters the mappings of a concept. Direction defaults to
// "both" and PageSize to 50.
type MappingOptions struct {
	TargetVocabularies    []string
	MappingTypes          []string
	Direction             string
	IncludeIndirect       bool
	StandardOnly          bool
	IncludeMappingQuality bool
	IncludeSynonyms       bool
	IncludeContext        bool
	// IncludeInactive also returns mappings that are no longer active.
	IncludeInactive bool
	SortBy          string
	SortOrder       string
	Page            int
	PageSize        int
}

// MapOptions tunes a bulk mapping request.
type MapOptions struct {
	MappingType    string
	IncludeInvalid bool
}

func mappingsCall(id int64, o *MappingOptions) call {
	if o == nil {
		o = &MappingOptions{}
	}
	direction := o.Direction
	if direction == "" {
		direction = "both"
	}
	params := pageParams(o.Page, o.PageSize, 50).
		Set("direction", direction).
		Opt("target_vocabularies", o.TargetVocabularies).
		Opt("mapping_types", o.MappingTypes).
		Flag("include_indirect", o.IncludeIndirect).
		Flag("standard_only", o.StandardOnly).
		Flag("include_mapping_quality", o.IncludeMappingQuality).
		Flag("include_synonyms", o.IncludeSynonyms).
		Flag("include_context", o.IncludeContext).
		Opt("sort_by", o.SortBy).
		Opt("sort_order", o.SortOrder)
	if o.IncludeInactive {
		params.Set("active_only", "false")
	}
	return getCall(conceptPath(id, "/mappings"), params)
}

func mapCall(sourceConcepts []int64, targetVocabulary string, o *MapOptions) call {
	if o == nil {
		o = &MapOptions{}
	}
	body := map[string]any{
		"source_concepts":   sourceConcepts,
		"target_vocabulary": targetVocabulary,
	}
	if o.MappingType != "" {
		body["mapping_type"] = o.MappingType
	}
	setTrue(body, "include_invalid", o.IncludeInvalid)
	return postCall("/concepts/map", body)
}

// Mappings translates concepts between vocabularies.
type Mappings struct {
	r *Requester
}

// Get returns the mappings of id.
func (m *Mappings) Get(ctx context.Context, id int64, opts *MappingOptions) (Object, error) {
	return run[Object](ctx, m.r, mappingsCall(id, opts))
}

// Map maps each source concept into targetVocabulary.
func (m *Mappings) Map(ctx context.Context, sourceConcepts []int64, targetVocabulary string, opts *MapOptions) (Object, error) {
	return run[Object](ctx, m.r, mapCall(sourceConcepts, targetVocabulary, opts))
}

// AsyncMappings is the concurrent form of Mappings.
type AsyncMappings struct {
	a *AsyncRequester
}

// Get starts a mappings query.
func (m *AsyncMappings) Get(ctx context.Context, id int64, opts *MappingOptions) *Future[Object] {
	return runAsync[Object](ctx, m.a, mappingsCall(id, opts))
}

// Map starts a bulk mapping request.
func (m *AsyncMappings) Map(ctx context.Context, sourceConcepts []int64, targetVocabulary string, opts *MapOptions) *Future[Object] {
	return runAsync[Object](ctx, m.a, mapCall(sourceConcepts, targetVocabulary, opts))
}
