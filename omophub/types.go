package omophub

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Object is a response payload without a fixed schema.
type Object = map[string]any

// Concept is an OMOP standardized vocabulary concept.
type Concept struct {
	ConceptID       int64     `json:"concept_id"`
	ConceptName     string    `json:"concept_name"`
	DomainID        string    `json:"domain_id"`
	VocabularyID    string    `json:"vocabulary_id"`
	ConceptClassID  string    `json:"concept_class_id"`
	StandardConcept *string   `json:"standard_concept"`
	ConceptCode     string    `json:"concept_code"`
	ValidStartDate  string    `json:"valid_start_date,omitempty"`
	ValidEndDate    string    `json:"valid_end_date,omitempty"`
	InvalidReason   *string   `json:"invalid_reason"`
	Synonyms        []Synonym `json:"synonyms,omitempty"`
	Relationships   Object    `json:"relationships,omitempty"`
	Score           float64   `json:"score,omitempty"`
}

// IsStandard reports whether the concept is a standard concept.
func (c Concept) IsStandard() bool {
	return c.StandardConcept != nil && *c.StandardConcept == "S"
}

// Synonym is an alternative name for a concept.
type Synonym struct {
	ConceptSynonymName string `json:"concept_synonym_name"`
	LanguageConceptID  int64  `json:"language_concept_id,omitempty"`
}

// BatchResult is the answer to a batch concept lookup.
type BatchResult struct {
	Concepts []Concept `json:"concepts"`
	Failed   []int64   `json:"failed_concepts,omitempty"`
	Summary  Object    `json:"summary,omitempty"`
}

// Suggestion is an autocomplete or concept suggestion entry.
type Suggestion struct {
	Suggestion   string  `json:"suggestion"`
	Type         string  `json:"type,omitempty"`
	MatchType    string  `json:"match_type,omitempty"`
	MatchScore   float64 `json:"match_score,omitempty"`
	ConceptID    int64   `json:"concept_id,omitempty"`
	VocabularyID string  `json:"vocabulary_id,omitempty"`
}

// SemanticResult is one hit of a semantic (embedding) search.
type SemanticResult struct {
	ConceptID       int64   `json:"concept_id"`
	ConceptName     string  `json:"concept_name"`
	DomainID        string  `json:"domain_id"`
	VocabularyID    string  `json:"vocabulary_id"`
	ConceptClassID  string  `json:"concept_class_id"`
	StandardConcept *string `json:"standard_concept"`
	ConceptCode     string  `json:"concept_code"`
	SimilarityScore float64 `json:"similarity_score"`
	MatchedText     string  `json:"matched_text"`
}

// SimilarConcept is a concept returned by a similarity search.
type SimilarConcept struct {
	SemanticResult
	SimilarityExplanation string `json:"similarity_explanation,omitempty"`
}

// SimilarResult is the answer to a similarity search.
type SimilarResult struct {
	SimilarConcepts []SimilarConcept `json:"similar_concepts"`
	SearchMetadata  SimilarMetadata  `json:"search_metadata"`
}

// SimilarMetadata describes how a similarity search was run.
type SimilarMetadata struct {
	OriginalQuery       string  `json:"original_query,omitempty"`
	AlgorithmUsed       string  `json:"algorithm_used,omitempty"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
	TotalCandidates     int     `json:"total_candidates,omitempty"`
	ResultsReturned     int     `json:"results_returned,omitempty"`
	ProcessingTimeMS    int     `json:"processing_time_ms,omitempty"`
}

// Facet is a value and its hit count.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SearchPage is one page of a basic search. The service sends the hits
// either as a bare list or under "concepts"; other fields of the object
// form land in Extra.
type SearchPage struct {
	Concepts []Concept
	Extra    Object
}

func (p *SearchPage) UnmarshalJSON(data []byte) error {
	hits, extra, err := unmarshalHits[Concept](data, "concepts")
	if err != nil {
		return err
	}
	*p = SearchPage{Concepts: hits, Extra: extra}
	return nil
}

// SemanticPage is one page of a semantic search, sent as a bare list or
// under "results".
type SemanticPage struct {
	Results []SemanticResult
	Extra   Object
}

func (p *SemanticPage) UnmarshalJSON(data []byte) error {
	hits, extra, err := unmarshalHits[SemanticResult](data, "results")
	if err != nil {
		return err
	}
	*p = SemanticPage{Results: hits, Extra: extra}
	return nil
}

// unmarshalHits reads a list that is either the whole payload or the key
// field of an object payload.
func unmarshalHits[T any](data []byte, key string) ([]T, Object, error) {
	body := gjson.ParseBytes(data)
	var extra Object
	if body.IsObject() {
		if err := json.Unmarshal(data, &extra); err != nil {
			return nil, nil, err
		}
		delete(extra, key)
		if len(extra) == 0 {
			extra = nil
		}
		body = body.Get(key)
		if !body.Exists() || body.Type == gjson.Null {
			return nil, extra, nil
		}
	}
	var hits []T
	if err := json.Unmarshal([]byte(body.Raw), &hits); err != nil {
		return nil, nil, err
	}
	return hits, extra, nil
}

// SearchResult is the answer to an advanced search.
type SearchResult struct {
	Concepts []Concept `json:"concepts"`
	Facets   struct {
		Vocabularies   []Facet `json:"vocabularies,omitempty"`
		Domains        []Facet `json:"domains,omitempty"`
		ConceptClasses []Facet `json:"concept_classes,omitempty"`
	} `json:"facets"`
	SearchMetadata struct {
		QueryTimeMS       int     `json:"query_time_ms,omitempty"`
		TotalResults      int     `json:"total_results,omitempty"`
		MaxRelevanceScore float64 `json:"max_relevance_score,omitempty"`
		SearchAlgorithm   string  `json:"search_algorithm,omitempty"`
	} `json:"search_metadata"`
}

// Vocabulary describes a source vocabulary such as SNOMED or ICD10CM.
type Vocabulary struct {
	VocabularyID        string             `json:"vocabulary_id"`
	VocabularyName      string             `json:"vocabulary_name"`
	VocabularyReference string             `json:"vocabulary_reference,omitempty"`
	VocabularyVersion   string             `json:"vocabulary_version,omitempty"`
	VocabularyConceptID int64              `json:"vocabulary_concept_id,omitempty"`
	ConceptCount        int64              `json:"concept_count,omitempty"`
	Domains             []VocabularyDomain `json:"domains,omitempty"`
	LastUpdated         string             `json:"last_updated,omitempty"`
	Statistics          *VocabularyStats   `json:"statistics,omitempty"`
}

// VocabularyDomain holds per-domain counts inside a vocabulary.
type VocabularyDomain struct {
	DomainID            string `json:"domain_id"`
	ConceptCount        int64  `json:"concept_count"`
	StandardCount       int64  `json:"standard_count,omitempty"`
	ClassificationCount int64  `json:"classification_count,omitempty"`
}

// VocabularyStats holds counts for a vocabulary.
type VocabularyStats struct {
	TotalConcepts          int64 `json:"total_concepts"`
	StandardConcepts       int64 `json:"standard_concepts,omitempty"`
	ClassificationConcepts int64 `json:"classification_concepts,omitempty"`
	InvalidConcepts        int64 `json:"invalid_concepts,omitempty"`
	RelationshipsCount     int64 `json:"relationships_count,omitempty"`
	SynonymsCount          int64 `json:"synonyms_count,omitempty"`
}
