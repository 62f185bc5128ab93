package cmd

import (
	"github.com/spf13/cobra"

	"github.com/s0up4200/omophub/omophub"
)

var domainVocabs []string

// domainsCmd groups the domain commands
var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Inspect OMOP domains",
}

var domainsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List domains with concept counts",
	Args:  cobra.NoArgs,
	RunE:  runDomainsList,
}

func init() {
	rootCmd.AddCommand(domainsCmd)
	domainsCmd.AddCommand(domainsListCmd)

	domainsListCmd.Flags().StringSliceVar(&domainVocabs, "vocab", nil, "count only concepts from these vocabularies")
}

func runDomainsList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Domains.List(cmd.Context(), &omophub.ListDomainsOptions{VocabularyIDs: domainVocabs})
	if err != nil {
		return err
	}

	v, err := listView(result, "domains",
		[]string{"ID", "NAME", "CONCEPTS"},
		[]string{"domain_id", "domain_name", "concept_count"},
	)
	if err != nil {
		return err
	}
	v.footer = plural(len(v.rows), "domain")
	return output(cmd, v)
}
