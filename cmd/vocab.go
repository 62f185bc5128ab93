package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/omophub/omophub"
)

var includeStats bool

// vocabCmd groups the vocabulary commands
var vocabCmd = &cobra.Command{
	Use:     "vocab",
	Aliases: []string{"vocabularies"},
	Short:   "Inspect source vocabularies",
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available vocabularies",
	Args:  cobra.NoArgs,
	RunE:  runVocabList,
}

var vocabGetCmd = &cobra.Command{
	Use:   "get <vocabulary>",
	Short: "Show one vocabulary",
	Args:  cobra.ExactArgs(1),
	RunE:  runVocabGet,
}

var vocabStatsCmd = &cobra.Command{
	Use:   "stats <vocabulary>",
	Short: "Show concept counts for a vocabulary",
	Args:  cobra.ExactArgs(1),
	RunE:  runVocabStats,
}

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.AddCommand(vocabListCmd, vocabGetCmd, vocabStatsCmd)

	vocabListCmd.Flags().BoolVar(&includeStats, "stats", false, "include per-vocabulary statistics")
}

func runVocabList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Vocabularies.List(cmd.Context(), &omophub.ListVocabulariesOptions{IncludeStats: includeStats})
	if err != nil {
		return err
	}

	v, err := listView(result, "vocabularies",
		[]string{"ID", "NAME", "VERSION", "CONCEPTS"},
		[]string{"vocabulary_id", "vocabulary_name", "vocabulary_version", "concept_count"},
	)
	if err != nil {
		return err
	}
	v.footer = plural(len(v.rows), "vocabulary")
	return output(cmd, v)
}

func runVocabGet(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	vocab, err := client.Vocabularies.Get(cmd.Context(), args[0], nil)
	if err != nil {
		return err
	}

	return output(cmd, view{
		data:    vocab,
		columns: []string{"FIELD", "VALUE"},
		rows: [][]string{
			{"ID", vocab.VocabularyID},
			{"Name", vocab.VocabularyName},
			{"Version", orDash(vocab.VocabularyVersion)},
			{"Concept ID", strconv.FormatInt(vocab.VocabularyConceptID, 10)},
			{"Concepts", count(vocab.ConceptCount)},
			{"Updated", orDash(vocab.LastUpdated)},
		},
	})
}

func runVocabStats(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	stats, err := client.Vocabularies.Stats(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return output(cmd, view{
		data:    stats,
		columns: []string{"METRIC", "COUNT"},
		rows: [][]string{
			{"Total concepts", count(stats.TotalConcepts)},
			{"Standard", count(stats.StandardConcepts)},
			{"Classification", count(stats.ClassificationConcepts)},
			{"Invalid", count(stats.InvalidConcepts)},
			{"Relationships", count(stats.RelationshipsCount)},
			{"Synonyms", count(stats.SynonymsCount)},
		},
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
