package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "skillmap",
	Short:         "Skill gap analysis and learning plans",
	Long:          "skillmap measures employee skills against strategic goals, runs adaptive assessments and builds time-boxed learning plans.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SKILLMAP_DB and database.dsn)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides SKILLMAP_CONFIG)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(employeeCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(gapCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(ontologyCmd)
	rootCmd.AddCommand(versionCmd)
}
