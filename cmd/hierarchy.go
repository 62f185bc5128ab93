package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/omophub/omophub"
)

var (
	maxLevels      int
	hierarchyVocab string
	standardOnly   bool
)

// hierarchyCmd groups the ancestor and descendant queries
var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Walk the concept hierarchy",
}

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <concept-id>",
	Short: "List the ancestors of a concept",
	Args:  cobra.ExactArgs(1),
	RunE:  runAncestors,
}

var descendantsCmd = &cobra.Command{
	Use:   "descendants <concept-id>",
	Short: "List the descendants of a concept",
	Long:  fmt.Sprintf("List the descendants of a concept, at most %d levels deep.", omophub.MaxHierarchyLevels),
	Args:  cobra.ExactArgs(1),
	RunE:  runDescendants,
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
	hierarchyCmd.AddCommand(ancestorsCmd, descendantsCmd)

	for _, c := range []*cobra.Command{ancestorsCmd, descendantsCmd} {
		c.Flags().IntVar(&maxLevels, "max-levels", 0, "maximum hierarchy levels to traverse")
		c.Flags().StringVar(&hierarchyVocab, "vocab", "", "restrict to a vocabulary")
		c.Flags().BoolVar(&standardOnly, "standard", false, "only standard concepts")
	}
}

func runAncestors(cmd *cobra.Command, args []string) error {
	id, err := parseConceptID(args[0])
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Hierarchy.Ancestors(cmd.Context(), id, &omophub.AncestorOptions{
		VocabularyID: hierarchyVocab,
		MaxLevels:    maxLevels,
		StandardOnly: standardOnly,
	})
	if err != nil {
		return err
	}
	return outputHierarchy(cmd, result, "ancestors")
}

func runDescendants(cmd *cobra.Command, args []string) error {
	id, err := parseConceptID(args[0])
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Hierarchy.Descendants(cmd.Context(), id, &omophub.DescendantOptions{
		VocabularyID: hierarchyVocab,
		MaxLevels:    maxLevels,
		StandardOnly: standardOnly,
	})
	if err != nil {
		return err
	}
	return outputHierarchy(cmd, result, "descendants")
}

func outputHierarchy(cmd *cobra.Command, result omophub.Object, key string) error {
	v, err := listView(result, key,
		[]string{"ID", "NAME", "VOCABULARY", "LEVEL"},
		[]string{"concept_id", "concept_name", "vocabulary_id", "level"},
	)
	if err != nil {
		return err
	}
	v.footer = fmt.Sprintf("%s %s", plural(len(v.rows), "concept"), key)
	return output(cmd, v)
}
