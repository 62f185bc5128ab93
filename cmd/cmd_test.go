package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/omophub/internal/fakeapi"
	"github.com/s0up4200/omophub/omophub"
)

// setupCLI points the CLI at a fresh fake service with no config file
func setupCLI(t *testing.T) *fakeapi.Server {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("OMOPHUB_API_KEY", fakeapi.APIKey)
	t.Setenv("OMOPHUB_BASE_URL", srv.BaseURL())
	return srv
}

// resetFlags restores every flag to its default between runs
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func conceptIDs(t *testing.T, out string) []int64 {
	t.Helper()
	var concepts []struct {
		ConceptID int64 `json:"concept_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &concepts))
	ids := make([]int64, len(concepts))
	for i, c := range concepts {
		ids[i] = c.ConceptID
	}
	return ids
}

func TestConceptGet(t *testing.T) {
	srv := setupCLI(t)

	out, err := execute(t, "concept", "get", "3004410", "201826", "1503297", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []int64{3004410, 201826, 1503297}, conceptIDs(t, out))
	assert.Equal(t, 1, srv.Count("/v1/concepts/201826"))
}

func TestConceptGetTable(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "concept", "get", "1567956")
	require.NoError(t, err)
	assert.Contains(t, out, "VOCABULARY")
	assert.Contains(t, out, "Type 2 diabetes mellitus")
	assert.Contains(t, out, "ICD10CM")
}

func TestConceptGetErrors(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "concept", "get", "abc")
	assert.ErrorContains(t, err, "invalid concept id 'abc'")

	_, err = execute(t, "concept", "get", "999")
	assert.ErrorIs(t, err, omophub.ErrNotFound)
}

func TestConceptCodeWithPath(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "concept", "code", "ICD10CM", "E11", "-o", "json", "--path", "concept_id")
	require.NoError(t, err)
	assert.Equal(t, "1567956\n", out)

	out, err = execute(t, "concept", "code", "SNOMED", "44054006", "--path", "concept_name")
	require.NoError(t, err)
	assert.Equal(t, "Type 2 diabetes mellitus\n", out)

	_, err = execute(t, "concept", "code", "SNOMED", "44054006", "--path", "nope")
	assert.ErrorContains(t, err, "path 'nope' not found")
}

func TestSearchLimit(t *testing.T) {
	srv := setupCLI(t)

	out, err := execute(t, "search", "diabetes", "--limit", "3", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []int64{201826, 201254, 4008576}, conceptIDs(t, out))

	require.Equal(t, 1, srv.Count("/v1/search/concepts"))
	assert.Equal(t, "3", srv.Last().Query.Get("page_size"))
}

func TestSearchAllWithFilter(t *testing.T) {
	srv := setupCLI(t)

	out, err := execute(t, "search", "diabetes", "--all", "-o", "json", "--where", `inVocab("SNOMED") and isStandard()`)
	require.NoError(t, err)
	assert.Equal(t, []int64{201826, 201254, 4008576}, conceptIDs(t, out))
	assert.Equal(t, "100", srv.Last().Query.Get("page_size"))
}

func TestSearchFilterTextHelper(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "search", "diabetes", "--all", "-o", "json", "--where",
		`isStandard() and inVocab("SNOMED", "LOINC") and !hasText(concept_name, "TYPE 1")`)
	require.NoError(t, err)
	assert.Equal(t, []int64{201826, 4008576}, conceptIDs(t, out))
}

func TestSearchInvalidFilterMakesNoRequest(t *testing.T) {
	srv := setupCLI(t)

	_, err := execute(t, "search", "diabetes", "--where", `isStandard(`)
	assert.ErrorContains(t, err, "invalid filter expression")
	assert.Empty(t, srv.Requests())
}

func TestSearchPreset(t *testing.T) {
	setupCLI(t)

	config := filepath.Join(t.TempDir(), "omophub.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
filter:
  presets:
    non-standard: "!isStandard()"
`), 0o600))

	out, err := execute(t, "--config", config, "search", "diabetes", "-o", "json", "--preset", "non-standard")
	require.NoError(t, err)
	assert.Equal(t, []int64{1567956}, conceptIDs(t, out))

	_, err = execute(t, "--config", config, "search", "diabetes", "--preset", "missing")
	assert.ErrorContains(t, err, "preset 'missing' not found")
}

func TestSearchTableFooter(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "search", "metformin")
	require.NoError(t, err)
	assert.Contains(t, out, "Metformin")
	assert.Contains(t, out, "Found 1 concept")
}

func TestHierarchyAndMappings(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "hierarchy", "ancestors", "201826")
	require.NoError(t, err)
	assert.Contains(t, out, "Diabetes mellitus")
	assert.Contains(t, out, "1 concept ancestors")

	out, err = execute(t, "mappings", "201826", "--target", "ICD10CM")
	require.NoError(t, err)
	assert.Contains(t, out, "Maps to")
	assert.Contains(t, out, "1 mapping for concept 201826")
}

func TestVocabAndDomains(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "vocab", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "485,000")
	assert.Contains(t, out, "4 vocabularies")

	out, err = execute(t, "vocab", "stats", "SNOMED", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "total_concepts: 5")

	out, err = execute(t, "domains", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Measurement")
	assert.Contains(t, out, "3 domains")
}

func TestInvalidOutputFormat(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "vocab", "list", "-o", "xml")
	assert.ErrorContains(t, err, "invalid output format")
}

func TestRenderTable(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	renderTable(&buf, view{
		columns: []string{"ID", "NAME"},
		rows:    [][]string{{"1", "short"}, {"22", "longer name"}},
		footer:  "2 rows",
	})
	assert.Equal(t, "ID  NAME\n1   short\n22  longer name\n\n2 rows\n", buf.String())

	buf.Reset()
	renderTable(&buf, view{columns: []string{"ID"}})
	assert.Equal(t, "No results.\n", buf.String())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "1 concept", plural(1, "concept"))
	assert.Equal(t, "1,200 concepts", plural(1200, "concept"))
	assert.Equal(t, "2 vocabularies", plural(2, "vocabulary"))
	assert.Equal(t, "Hemoglo...", truncate("Hemoglobin A1c", 10))
	assert.Equal(t, "short", truncate("short", 10))
}
