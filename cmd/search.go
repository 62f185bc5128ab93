package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/omophub/filter"
	"github.com/s0up4200/omophub/omophub"
)

var (
	searchVocabs   []string
	searchDomains  []string
	searchStandard bool
	searchAll      bool
	searchLimit    int
	filterExpr     string
	preset         string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search concepts by name",
	Long: `Search concepts by name. Results are fetched page by page; --limit bounds how
many concepts are fetched and --all follows every page. --where and --preset
filter the fetched concepts client-side with an expression such as

  isStandard() and inVocab("SNOMED", "LOINC") and !hasText(concept_name, "history")`,
	Example: `  omophub search "type 2 diabetes" --vocab SNOMED --standard
  omophub search metformin --all --where 'domain_id == "Drug"'
  omophub search hba1c -o json --path '#.concept_id'`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVar(&searchVocabs, "vocab", nil, "restrict to vocabularies (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchDomains, "domain", nil, "restrict to domains (repeatable)")
	searchCmd.Flags().BoolVar(&searchStandard, "standard", false, "only standard concepts")
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "follow every result page")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", omophub.DefaultPageSize, "maximum number of concepts to fetch")
	searchCmd.Flags().StringVarP(&filterExpr, "where", "w", "", "filter expression applied to results")
	searchCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit := searchLimit
	if searchAll && !cmd.Flags().Changed("limit") {
		limit = 0
	}
	if limit < 0 {
		return fmt.Errorf("invalid limit %d: must not be negative", limit)
	}

	// Compile the filter before any request is made
	selected, err := getFilter()
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	opts := &omophub.BasicSearchOptions{
		VocabularyIDs: searchVocabs,
		DomainIDs:     searchDomains,
		PageSize:      omophub.MaxPageSize,
	}
	if limit > 0 {
		opts.PageSize = min(limit, omophub.MaxPageSize)
	}
	if searchStandard {
		opts.StandardConcept = "S"
	}

	logger.Info().Str("query", args[0]).Int("limit", limit).Msg("Searching concepts")

	concepts := []omophub.Concept{}
	for concept, err := range client.Search.BasicIter(cmd.Context(), args[0], opts) {
		if err != nil {
			return err
		}
		concepts = append(concepts, concept)
		if limit > 0 && len(concepts) >= limit {
			break
		}
	}
	fetched := len(concepts)

	if selected != nil {
		concepts, err = applyFilter(cmd, selected, concepts)
		if err != nil {
			return err
		}
	}

	footer := fmt.Sprintf("Found %s", plural(len(concepts), "concept"))
	if selected != nil {
		footer += fmt.Sprintf(" (%d fetched, filter: %s)", fetched, selected.Expression())
	}

	ptrs := make([]*omophub.Concept, len(concepts))
	for i := range concepts {
		ptrs[i] = &concepts[i]
	}
	return output(cmd, conceptView(concepts, ptrs, footer))
}

// getFilter determines the filter to use: --where wins over --preset
func getFilter() (filter.CompiledFilter, error) {
	compiler := filter.NewCompiler()

	if filterExpr != "" {
		f, err := compiler.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset != "" {
		presets := filter.NewPresets(compiler)
		if err := presets.Load(cfg.Filter.Presets); err != nil {
			return nil, fmt.Errorf("invalid filter presets: %w", err)
		}
		return presets.Lookup(preset)
	}

	return nil, nil
}

// applyFilter keeps the concepts matched by f, preserving order
func applyFilter(cmd *cobra.Command, f filter.Filter, concepts []omophub.Concept) ([]omophub.Concept, error) {
	items, err := toItems(concepts)
	if err != nil {
		return nil, err
	}
	matched, err := filter.Selector{}.Select(cmd.Context(), f, items)
	if err != nil {
		return nil, err
	}

	keep := make(map[int64]bool, len(matched))
	for _, item := range matched {
		if id, ok := item["concept_id"].(float64); ok {
			keep[int64(id)] = true
		}
	}
	filtered := make([]omophub.Concept, 0, len(matched))
	for _, c := range concepts {
		if keep[c.ConceptID] {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// toItems converts concepts into filter items keyed by their wire names
func toItems(concepts []omophub.Concept) ([]filter.Item, error) {
	doc, err := json.Marshal(concepts)
	if err != nil {
		return nil, err
	}
	var items []filter.Item
	if err := json.Unmarshal(doc, &items); err != nil {
		return nil, err
	}
	return items, nil
}
