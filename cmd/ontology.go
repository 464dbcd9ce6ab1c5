package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "Maintain the skill vector index",
}

var ontologyReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-embed every skill into the vector index",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.ontology.Reindex(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d skills indexed into %s\n", n, e.cfg.Vector.Backend)
		return nil
	},
}

func init() {
	ontologyCmd.AddCommand(ontologyReindexCmd)
}
