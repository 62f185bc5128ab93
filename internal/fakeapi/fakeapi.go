// Package fakeapi is an in-process stand-in for the OMOPHub vocabulary
// service. It serves a small fixed catalogue through the same envelope the
// real service uses and records every request it receives.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// APIKey is the only key the fake accepts.
const APIKey = "oh_test_key_12345"

// Concept is the fake's view of a concept.
type Concept struct {
	ConceptID       int64   `json:"concept_id"`
	ConceptName     string  `json:"concept_name"`
	DomainID        string  `json:"domain_id"`
	VocabularyID    string  `json:"vocabulary_id"`
	ConceptClassID  string  `json:"concept_class_id"`
	StandardConcept *string `json:"standard_concept"`
	ConceptCode     string  `json:"concept_code"`
	ValidStartDate  string  `json:"valid_start_date"`
	ValidEndDate    string  `json:"valid_end_date"`
	InvalidReason   *string `json:"invalid_reason"`
}

// Recorded is a request as the fake saw it.
type Recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is a running fake.
type Server struct {
	*httptest.Server

	router   chi.Router
	concepts []Concept

	mu       sync.Mutex
	requests []Recorded
}

func standard(s string) *string { return &s }

// Catalogue returns the concepts every fake starts with.
func Catalogue() []Concept {
	return []Concept{
		{201826, "Type 2 diabetes mellitus", "Condition", "SNOMED", "Clinical Finding", standard("S"), "44054006", "1970-01-01", "2099-12-31", nil},
		{201254, "Type 1 diabetes mellitus", "Condition", "SNOMED", "Clinical Finding", standard("S"), "46635009", "1970-01-01", "2099-12-31", nil},
		{4008576, "Diabetes mellitus", "Condition", "SNOMED", "Clinical Finding", standard("S"), "73211009", "1970-01-01", "2099-12-31", nil},
		{443238, "Diabetic renal disease", "Condition", "SNOMED", "Clinical Finding", standard("S"), "127013003", "1970-01-01", "2099-12-31", nil},
		{1567956, "Type 2 diabetes mellitus", "Condition", "ICD10CM", "4-char nonbill code", nil, "E11", "2007-01-01", "2099-12-31", nil},
		{316866, "Hypertensive disorder", "Condition", "SNOMED", "Clinical Finding", standard("S"), "38341003", "1970-01-01", "2099-12-31", nil},
		{1503297, "Metformin", "Drug", "RxNorm", "Ingredient", standard("S"), "6809", "1970-01-01", "2099-12-31", nil},
		{3004410, "Hemoglobin A1c/Hemoglobin.total in Blood", "Measurement", "LOINC", "Lab Test", standard("S"), "4548-4", "1970-01-01", "2099-12-31", nil},
	}
}

// New starts a fake serving Catalogue under /v1.
func New() *Server {
	s := &Server{
		router:   chi.NewRouter(),
		concepts: Catalogue(),
	}
	s.routes()
	s.Server = httptest.NewServer(s.router)
	return s
}

// BaseURL is the versioned root to hand to a client.
func (s *Server) BaseURL() string {
	return s.URL + "/v1"
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Last returns the most recent request.
func (s *Server) Last() Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}
	}
	return s.requests[len(s.requests)-1]
}

// Count returns the number of requests whose path equals path.
func (s *Server) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		w.Header().Set("X-Request-Id", "req_"+uuid.New().String()[:8])
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+APIKey {
			respondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.record)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/concepts/{id}", s.handleGetConcept)
		r.Get("/concepts/by-code/{vocab}/{code}", s.handleGetByCode)
		r.Post("/concepts/batch", s.handleBatch)
		r.Get("/concepts/semantic-search", s.handleSemanticSearch)
		r.Get("/concepts/{id}/ancestors", s.handleHierarchy("ancestors"))
		r.Get("/concepts/{id}/descendants", s.handleHierarchy("descendants"))
		r.Get("/concepts/{id}/mappings", s.handleMappings)
		r.Get("/search/concepts", s.handleSearch)
		r.Get("/vocabularies", s.handleVocabularies)
		r.Get("/vocabularies/{id}", s.handleVocabulary)
		r.Get("/vocabularies/{id}/stats", s.handleVocabularyStats)
		r.Get("/domains", s.handleDomains)

		// Fixtures for error handling.
		r.Get("/status/{code}", s.handleStatus)
		r.Get("/garbage", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html>not json</html>"))
		})
	})
}

func (s *Server) find(id int64) (Concept, bool) {
	for _, c := range s.concepts {
		if c.ConceptID == id {
			return c, true
		}
	}
	return Concept{}, false
}

func (s *Server) handleGetConcept(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_concept_id", "Concept ID must be an integer")
		return
	}
	c, ok := s.find(id)
	if !ok {
		respondError(w, http.StatusNotFound, "concept_not_found", "Concept not found")
		return
	}
	respondOK(w, c, nil)
}

func (s *Server) handleGetByCode(w http.ResponseWriter, r *http.Request) {
	vocab, code := chi.URLParam(r, "vocab"), chi.URLParam(r, "code")
	for _, c := range s.concepts {
		if c.VocabularyID == vocab && c.ConceptCode == code {
			respondOK(w, c, nil)
			return
		}
	}
	respondError(w, http.StatusNotFound, "concept_not_found", "Concept not found")
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConceptIDs []int64 `json:"concept_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Request body must be JSON")
		return
	}
	found := []Concept{}
	failed := []int64{}
	for _, id := range req.ConceptIDs {
		if c, ok := s.find(id); ok {
			found = append(found, c)
		} else {
			failed = append(failed, id)
		}
	}
	respondOK(w, map[string]any{"concepts": found, "failed_concepts": failed}, nil)
}

func (s *Server) matching(query string) []Concept {
	query = strings.ToLower(query)
	out := []Concept{}
	for _, c := range s.concepts {
		if strings.Contains(strings.ToLower(c.ConceptName), query) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	hits := s.matching(r.URL.Query().Get("query"))
	pageItems, pg := paginate(hits, r.URL.Query())
	respondOK(w, pageItems, pg)
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	hits := s.matching(r.URL.Query().Get("query"))
	pageItems, pg := paginate(hits, r.URL.Query())
	results := make([]map[string]any, 0, len(pageItems))
	for _, c := range pageItems {
		results = append(results, map[string]any{
			"concept_id":       c.ConceptID,
			"concept_name":     c.ConceptName,
			"domain_id":        c.DomainID,
			"vocabulary_id":    c.VocabularyID,
			"concept_class_id": c.ConceptClassID,
			"standard_concept": c.StandardConcept,
			"concept_code":     c.ConceptCode,
			"similarity_score": 0.9,
			"matched_text":     c.ConceptName,
		})
	}
	respondOK(w, map[string]any{"results": results}, pg)
}

func (s *Server) handleHierarchy(direction string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if _, ok := s.find(id); !ok {
			respondError(w, http.StatusNotFound, "concept_not_found", "Concept not found")
			return
		}
		related := []map[string]any{}
		if id == 201826 {
			c, _ := s.find(4008576)
			related = append(related, map[string]any{
				"concept_id":   c.ConceptID,
				"concept_name": c.ConceptName,
				"level":        1,
			})
		}
		respondOK(w, map[string]any{
			"concept_id": id,
			direction:    related,
			"hierarchy_summary": map[string]any{
				"total_" + direction: len(related),
			},
		}, nil)
	}
}

func (s *Server) handleMappings(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	mappings := []map[string]any{}
	if id == 201826 {
		mappings = append(mappings, map[string]any{
			"target_concept_id":    1567956,
			"target_concept_name":  "Type 2 diabetes mellitus",
			"target_vocabulary_id": "ICD10CM",
			"relationship_id":      "Maps to",
		})
	}
	respondOK(w, map[string]any{"source_concept_id": id, "mappings": mappings}, nil)
}

var vocabularies = []map[string]any{
	{"vocabulary_id": "ICD10CM", "vocabulary_name": "ICD-10-CM", "vocabulary_version": "2024", "concept_count": 98000},
	{"vocabulary_id": "LOINC", "vocabulary_name": "Logical Observation Identifiers Names and Codes", "vocabulary_version": "2.76", "concept_count": 250000},
	{"vocabulary_id": "RxNorm", "vocabulary_name": "RxNorm", "vocabulary_version": "2024-03-04", "concept_count": 310000},
	{"vocabulary_id": "SNOMED", "vocabulary_name": "SNOMED CT", "vocabulary_version": "2024-03-01", "vocabulary_concept_id": 44819096, "concept_count": 485000},
}

func (s *Server) handleVocabularies(w http.ResponseWriter, r *http.Request) {
	pageItems, pg := paginate(vocabularies, r.URL.Query())
	respondOK(w, map[string]any{"vocabularies": pageItems}, pg)
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, v := range vocabularies {
		if v["vocabulary_id"] == id {
			respondOK(w, v, nil)
			return
		}
	}
	respondError(w, http.StatusNotFound, "vocabulary_not_found", "Vocabulary not found")
}

func (s *Server) handleVocabularyStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var total, standard int
	for _, c := range s.concepts {
		if c.VocabularyID != id {
			continue
		}
		total++
		if c.StandardConcept != nil && *c.StandardConcept == "S" {
			standard++
		}
	}
	respondOK(w, map[string]any{"total_concepts": total, "standard_concepts": standard}, nil)
}

func (s *Server) handleDomains(w http.ResponseWriter, _ *http.Request) {
	counts := map[string]int{}
	var order []string
	for _, c := range s.concepts {
		if _, seen := counts[c.DomainID]; !seen {
			order = append(order, c.DomainID)
		}
		counts[c.DomainID]++
	}
	domains := make([]map[string]any, 0, len(order))
	for _, d := range order {
		domains = append(domains, map[string]any{"domain_id": d, "domain_name": d, "concept_count": counts[d]})
	}
	respondOK(w, map[string]any{"domains": domains}, nil)
}

// handleStatus answers with the requested status and an error envelope.
// retry_after and message query parameters shape the response.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		code = http.StatusInternalServerError
	}
	if ra := r.URL.Query().Get("retry_after"); ra != "" {
		w.Header().Set("Retry-After", ra)
	}
	respondError(w, code, "status_"+strconv.Itoa(code), r.URL.Query().Get("message"))
}
