package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/omophub/omophub"
)

var (
	withSynonyms      bool
	withRelationships bool
)

// conceptCmd groups the concept lookups
var conceptCmd = &cobra.Command{
	Use:   "concept",
	Short: "Look up concepts by id or source code",
}

var conceptGetCmd = &cobra.Command{
	Use:   "get <concept-id>...",
	Short: "Fetch one or more concepts by OMOP concept id",
	Long: `Fetch concepts by OMOP concept id. Several ids are fetched concurrently and
printed in the order given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConceptGet,
}

var conceptCodeCmd = &cobra.Command{
	Use:   "code <vocabulary> <code>",
	Short: "Fetch a concept by its vocabulary-specific code",
	Example: `  omophub concept code SNOMED 44054006
  omophub concept code ICD10CM E11`,
	Args: cobra.ExactArgs(2),
	RunE: runConceptCode,
}

func init() {
	rootCmd.AddCommand(conceptCmd)
	conceptCmd.AddCommand(conceptGetCmd, conceptCodeCmd)

	conceptGetCmd.Flags().BoolVar(&withSynonyms, "synonyms", false, "include concept synonyms")
	conceptGetCmd.Flags().BoolVar(&withRelationships, "relationships", false, "include concept relationships")
}

func runConceptGet(cmd *cobra.Command, args []string) error {
	ids, err := parseConceptIDs(args)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Debug().Ints64("concept_ids", ids).Msg("Fetching concepts")

	concepts, err := client.Async().Concepts.GetMany(cmd.Context(), ids, &omophub.GetConceptOptions{
		IncludeSynonyms:      withSynonyms,
		IncludeRelationships: withRelationships,
	})
	if err != nil {
		return err
	}

	var data any = concepts
	if len(concepts) == 1 {
		data = concepts[0]
	}
	return output(cmd, conceptView(data, concepts, ""))
}

func runConceptCode(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	concept, err := client.Concepts.GetByCode(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	return output(cmd, conceptView(concept, []*omophub.Concept{concept}, ""))
}

func parseConceptIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid concept id '%s': must be a positive integer", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseConceptID(arg string) (int64, error) {
	ids, err := parseConceptIDs([]string{arg})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func conceptView(data any, concepts []*omophub.Concept, footer string) view {
	v := view{
		data:    data,
		columns: []string{"ID", "NAME", "DOMAIN", "VOCABULARY", "CLASS", "STD", "CODE"},
		footer:  footer,
	}
	for _, c := range concepts {
		v.rows = append(v.rows, []string{
			strconv.FormatInt(c.ConceptID, 10),
			truncate(c.ConceptName, 50),
			c.DomainID,
			c.VocabularyID,
			c.ConceptClassID,
			standardLabel(c.StandardConcept),
			c.ConceptCode,
		})
	}
	return v
}
