package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/omophub/omophub"
)

var (
	targetVocabs    []string
	mappingStandard bool
)

// mappingsCmd represents the mappings command
var mappingsCmd = &cobra.Command{
	Use:     "mappings <concept-id>",
	Short:   "Show how a concept maps to other vocabularies",
	Example: `  omophub mappings 201826 --target ICD10CM`,
	Args:    cobra.ExactArgs(1),
	RunE:    runMappings,
}

func init() {
	rootCmd.AddCommand(mappingsCmd)

	mappingsCmd.Flags().StringSliceVarP(&targetVocabs, "target", "t", nil, "target vocabularies (repeatable)")
	mappingsCmd.Flags().BoolVar(&mappingStandard, "standard", false, "only mappings to standard concepts")
}

func runMappings(cmd *cobra.Command, args []string) error {
	id, err := parseConceptID(args[0])
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Mappings.Get(cmd.Context(), id, &omophub.MappingOptions{
		TargetVocabularies: targetVocabs,
		StandardOnly:       mappingStandard,
	})
	if err != nil {
		return err
	}

	v, err := listView(result, "mappings",
		[]string{"TARGET ID", "TARGET NAME", "VOCABULARY", "RELATIONSHIP"},
		[]string{"target_concept_id", "target_concept_name", "target_vocabulary_id", "relationship_id"},
	)
	if err != nil {
		return err
	}
	v.footer = fmt.Sprintf("%s for concept %d", plural(len(v.rows), "mapping"), id)
	return output(cmd, v)
}
