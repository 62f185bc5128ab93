package omophub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/omophub/internal/fakeapi"
)

func newFakeClient(t *testing.T) (*Client, *fakeapi.Server) {
	t.Helper()
	fake := fakeapi.New()
	t.Cleanup(fake.Close)

	client, err := NewClient(fakeapi.APIKey, WithBaseURL(fake.BaseURL()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, fake
}

func TestConcepts(t *testing.T) {
	client, fake := newFakeClient(t)
	ctx := context.Background()

	c, err := client.Concepts.Get(ctx, 201826, &GetConceptOptions{IncludeSynonyms: true})
	require.NoError(t, err)
	assert.Equal(t, "Type 2 diabetes mellitus", c.ConceptName)
	assert.Equal(t, "44054006", c.ConceptCode)
	assert.True(t, c.IsStandard())
	q := fake.Last().Query
	assert.Equal(t, "true", q.Get("include_synonyms"))
	assert.False(t, q.Has("include_relationships"))

	c, err = client.Concepts.GetByCode(ctx, "SNOMED", "44054006")
	require.NoError(t, err)
	assert.Equal(t, int64(201826), c.ConceptID)

	_, err = client.Concepts.Get(ctx, 1, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	batch, err := client.Concepts.Batch(ctx, []int64{201826, 1503297, 7}, &BatchOptions{StandardOnly: true})
	require.NoError(t, err)
	assert.Len(t, batch.Concepts, 2)
	assert.Equal(t, []int64{7}, batch.Failed)
	assert.JSONEq(t, `{"concept_ids":[201826,1503297,7],"standard_only":true}`, string(fake.Last().Body))
}

func TestConceptsBatchValidation(t *testing.T) {
	client, fake := newFakeClient(t)

	_, err := client.Concepts.Batch(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = client.Concepts.Batch(context.Background(), make([]int64, MaxBatchConcepts+1), nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, fake.Requests())
}

func TestSearchBasicIter(t *testing.T) {
	client, fake := newFakeClient(t)

	var names []string
	for c, err := range client.Search.BasicIter(context.Background(), "diabetes", &BasicSearchOptions{PageSize: 3}) {
		require.NoError(t, err)
		names = append(names, c.ConceptName)
	}
	assert.Equal(t, []string{
		"Type 2 diabetes mellitus",
		"Type 1 diabetes mellitus",
		"Diabetes mellitus",
		"Type 2 diabetes mellitus",
	}, names)
	assert.Equal(t, 2, fake.Count("/v1/search/concepts"))

	last := fake.Last().Query
	assert.Equal(t, "2", last.Get("page"))
	assert.Equal(t, "3", last.Get("page_size"))
	assert.Equal(t, "diabetes", last.Get("query"))
}

func TestSearchBasicIterCapsPageSize(t *testing.T) {
	client, fake := newFakeClient(t)

	for _, err := range client.Search.BasicIter(context.Background(), "metformin", &BasicSearchOptions{PageSize: 1000}) {
		require.NoError(t, err)
	}
	assert.Equal(t, "100", fake.Last().Query.Get("page_size"))
}

func TestSearchSemanticIter(t *testing.T) {
	client, _ := newFakeClient(t)

	var ids []int64
	for r, err := range client.Search.SemanticIter(context.Background(), "diabetes mellitus", &SemanticSearchOptions{PageSize: 1}) {
		require.NoError(t, err)
		ids = append(ids, r.ConceptID)
		assert.InDelta(t, 0.9, r.SimilarityScore, 1e-9)
	}
	assert.Equal(t, []int64{201826, 201254, 4008576, 1567956}, ids)
}

func TestSearchBasicParams(t *testing.T) {
	client, fake := newFakeClient(t)
	minScore := 0.5

	page, err := client.Search.Basic(context.Background(), "diabetes", &BasicSearchOptions{
		VocabularyIDs: []string{"SNOMED", "ICD10CM"},
		ExactMatch:    true,
		MinScore:      &minScore,
	})
	require.NoError(t, err)
	require.Len(t, page.Concepts, 4)
	assert.Equal(t, int64(201826), page.Concepts[0].ConceptID)

	q := fake.Last().Query
	assert.Equal(t, "SNOMED,ICD10CM", q.Get("vocabulary_ids"))
	assert.Equal(t, "true", q.Get("exact_match"))
	assert.Equal(t, "0.5", q.Get("min_score"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "20", q.Get("page_size"))
	assert.False(t, q.Has("include_invalid"))
	assert.False(t, q.Has("domain_ids"))
}

func TestSearchSimilarRequiresOneReference(t *testing.T) {
	client, fake := newFakeClient(t)
	id := int64(201826)
	name := "Type 2 diabetes mellitus"

	for _, q := range []SimilarQuery{
		{},
		{ConceptID: &id, ConceptName: &name},
	} {
		_, err := client.Search.Similar(context.Background(), q)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = client.Async().Search.Similar(context.Background(), q).Await(context.Background())
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, fake.Requests())
}

func TestSimilarCallBody(t *testing.T) {
	id := int64(201826)
	yes := true
	c := similarCall(SimilarQuery{ConceptID: &id, IncludeScores: &yes, VocabularyIDs: []string{"SNOMED"}})
	require.NoError(t, c.err)
	assert.Equal(t, "/search/similar", c.path)
	assert.Equal(t, map[string]any{
		"algorithm":            "hybrid",
		"similarity_threshold": 0.7,
		"concept_id":           id,
		"include_scores":       true,
		"vocabulary_ids":       []string{"SNOMED"},
	}, c.body)
}

func TestCallBuilders(t *testing.T) {
	threshold := 0.6
	defining := false

	tests := []struct {
		name string
		call call
		path string
		want Params
	}{
		{
			name: "suggest defaults",
			call: suggestCall("diab", nil),
			path: "/concepts/suggest",
			want: Params{"query": "diab", "limit": 10},
		},
		{
			name: "related sends include_scores",
			call: relatedCall(201826, &RelatedOptions{OmitScores: true, VocabularyIDs: []string{"SNOMED"}}),
			path: "/concepts/201826/related",
			want: Params{"max_results": 50, "include_scores": "false", "vocabulary_ids": []string{"SNOMED"}},
		},
		{
			name: "descendants caps levels",
			call: descendantsCall(201826, &DescendantOptions{MaxLevels: 25}),
			path: "/concepts/201826/descendants",
			want: Params{"max_levels": 10, "page": 1, "page_size": 100, "include_distance": "true"},
		},
		{
			name: "ancestors without distance",
			call: ancestorsCall(201826, &AncestorOptions{OmitDistance: true, MaxLevels: 3}),
			path: "/concepts/201826/ancestors",
			want: Params{"page": 1, "page_size": 100, "max_levels": 3},
		},
		{
			name: "mappings inactive",
			call: mappingsCall(201826, &MappingOptions{IncludeInactive: true, TargetVocabularies: []string{"ICD10CM"}}),
			path: "/concepts/201826/mappings",
			want: Params{"direction": "both", "page": 1, "page_size": 50, "active_only": "false", "target_vocabularies": []string{"ICD10CM"}},
		},
		{
			name: "semantic threshold",
			call: semanticSearchCall("heart attack", &SemanticSearchOptions{Threshold: &threshold, StandardConcept: "S"}),
			path: "/concepts/semantic-search",
			want: Params{"query": "heart attack", "page": 1, "page_size": 20, "threshold": 0.6, "standard_concept": "S"},
		},
		{
			name: "relationship types",
			call: relationshipTypesCall(&RelationshipTypeOptions{IsDefining: &defining}),
			path: "/relationships/types",
			want: Params{"page": 1, "page_size": 100, "is_defining": "false"},
		},
		{
			name: "vocabulary listing defaults",
			call: listVocabulariesCall(nil),
			path: "/vocabularies",
			want: Params{"page": 1, "page_size": 100, "sort_by": "name", "sort_order": "asc"},
		},
		{
			name: "domain listing defaults",
			call: listDomainsCall(nil),
			path: "/domains",
			want: Params{"sort_by": "domain_id", "sort_order": "asc", "include_concept_counts": "true"},
		},
		{
			name: "vocabulary path is escaped",
			call: vocabularyConceptsCall("ICD10 CM", nil),
			path: "/vocabularies/ICD10%20CM/concepts",
			want: Params{"page": 1, "page_size": 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.path, tt.call.path)
			assert.Equal(t, tt.want, tt.call.params)
		})
	}
}

func TestHierarchyAndMappings(t *testing.T) {
	client, _ := newFakeClient(t)
	ctx := context.Background()

	ancestors, err := client.Hierarchy.Ancestors(ctx, 201826, nil)
	require.NoError(t, err)
	require.Len(t, ancestors["ancestors"], 1)

	_, err = client.Hierarchy.Descendants(ctx, 99, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	mappings, err := client.Mappings.Get(ctx, 201826, nil)
	require.NoError(t, err)
	assert.Len(t, mappings["mappings"], 1)
}

func TestVocabulariesAndDomains(t *testing.T) {
	client, _ := newFakeClient(t)
	ctx := context.Background()

	v, err := client.Vocabularies.Get(ctx, "SNOMED", nil)
	require.NoError(t, err)
	assert.Equal(t, "SNOMED CT", v.VocabularyName)
	assert.Equal(t, int64(485000), v.ConceptCount)

	stats, err := client.Vocabularies.Stats(ctx, "SNOMED")
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalConcepts)

	list, err := client.Vocabularies.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list["vocabularies"], 4)

	domains, err := client.Domains.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, domains["domains"], 3)
}

func TestAsyncResourcesMatchBlocking(t *testing.T) {
	client, _ := newFakeClient(t)
	async := client.Async()
	ctx := context.Background()

	want, err := client.Concepts.Get(ctx, 201826, nil)
	require.NoError(t, err)
	got, err := async.Concepts.Get(ctx, 201826, nil).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, syncErr := client.Vocabularies.Get(ctx, "NOPE", nil)
	_, asyncErr := async.Vocabularies.Get(ctx, "NOPE", nil).Await(ctx)
	assert.ErrorIs(t, syncErr, ErrNotFound)
	assert.ErrorIs(t, asyncErr, ErrNotFound)

	var syncIDs, asyncIDs []int64
	for c, err := range client.Search.BasicIter(ctx, "diabetes", &BasicSearchOptions{PageSize: 2}) {
		require.NoError(t, err)
		syncIDs = append(syncIDs, c.ConceptID)
	}
	stream := async.Search.BasicIter("diabetes", &BasicSearchOptions{PageSize: 2})
	for stream.Next(ctx) {
		asyncIDs = append(asyncIDs, stream.Item().ConceptID)
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, syncIDs, asyncIDs)
	assert.Equal(t, 2, stream.Pages())
}

func TestSearchSinglePage(t *testing.T) {
	client, _ := newFakeClient(t)
	async := client.Async()
	ctx := context.Background()

	semantic, err := client.Search.Semantic(ctx, "diabetes mellitus", &SemanticSearchOptions{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, semantic.Results, 2)
	assert.Equal(t, int64(201826), semantic.Results[0].ConceptID)
	assert.InDelta(t, 0.9, semantic.Results[0].SimilarityScore, 1e-9)

	asyncSemantic, err := async.Search.Semantic(ctx, "diabetes mellitus", &SemanticSearchOptions{PageSize: 2}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, semantic, asyncSemantic)

	basic, err := client.Search.Basic(ctx, "metformin", nil)
	require.NoError(t, err)
	asyncBasic, err := async.Search.Basic(ctx, "metformin", nil).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, basic, asyncBasic)
	require.NotEmpty(t, basic.Concepts)
	assert.Equal(t, "Metformin", basic.Concepts[0].ConceptName)
}

func TestSearchPageShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		ids   []int64
		extra Object
	}{
		{"bare list", `[{"concept_id":1},{"concept_id":2}]`, []int64{1, 2}, nil},
		{"wrapped", `{"concepts":[{"concept_id":3}]}`, []int64{3}, nil},
		{"wrapped with extra fields", `{"concepts":[{"concept_id":4}],"total":1}`, []int64{4}, Object{"total": float64(1)}},
		{"object without hits", `{"total":0}`, nil, Object{"total": float64(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodeInto[*SearchPage]([]byte(tt.body))
			require.NoError(t, err)
			var ids []int64
			for _, c := range page.Concepts {
				ids = append(ids, c.ConceptID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.extra, page.Extra)
		})
	}

	semantic, err := decodeInto[*SemanticPage]([]byte(`[{"concept_id":5,"similarity_score":0.8}]`))
	require.NoError(t, err)
	require.Len(t, semantic.Results, 1)
	assert.Equal(t, int64(5), semantic.Results[0].ConceptID)

	semantic, err = decodeInto[*SemanticPage]([]byte(`{"results":[{"concept_id":6}]}`))
	require.NoError(t, err)
	require.Len(t, semantic.Results, 1)
	assert.Equal(t, int64(6), semantic.Results[0].ConceptID)

	_, err = decodeInto[*SearchPage]([]byte(`{"concepts":"oops"}`))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNullDataIsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":null}`))
	}))
	defer server.Close()

	client, err := NewClient("secret", WithBaseURL(server.URL+"/v1"), WithMaxRetries(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	concept, err := client.Concepts.Get(ctx, 201826, nil)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Nil(t, concept)

	concepts, err := client.Async().Concepts.GetMany(ctx, []int64{201826, 1567956}, nil)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Nil(t, concepts)
}

func TestAsyncGetMany(t *testing.T) {
	client, _ := newFakeClient(t)
	ctx := context.Background()

	concepts, err := client.Async().Concepts.GetMany(ctx, []int64{3004410, 201826, 1503297}, nil)
	require.NoError(t, err)
	require.Len(t, concepts, 3)
	assert.Equal(t, "Hemoglobin A1c/Hemoglobin.total in Blood", concepts[0].ConceptName)
	assert.Equal(t, "Type 2 diabetes mellitus", concepts[1].ConceptName)
	assert.Equal(t, "Metformin", concepts[2].ConceptName)

	_, err = client.Async().Concepts.GetMany(ctx, []int64{201826, 5}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
