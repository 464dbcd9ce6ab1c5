package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillmap/internal/ontology"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Browse and extend the skill ontology",
}

var skillAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a skill, reusing a similar existing one when found",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		d := ontology.SkillDraft{Name: args[0]}
		d.Description, _ = cmd.Flags().GetString("description")
		d.Category, _ = cmd.Flags().GetString("category")
		d.Domain, _ = cmd.Flags().GetString("domain")
		d.Future, _ = cmd.Flags().GetBool("future")
		threshold, _ := cmd.Flags().GetFloat64("threshold")

		m, err := e.ontology.Resolve(cmd.Context(), d, threshold)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(m)
		}
		if m.Reused {
			fmt.Printf("reused %s (%s, similarity %.3f)\n", m.Skill.ID, m.Skill.Name, m.Score)
			return nil
		}
		fmt.Println(m.Skill.ID)
		return nil
	},
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		skills, err := st.Skills().List(cmd.Context())
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(skills)
		}

		fmt.Printf("%-36s  %-32s  %-18s  %-18s  %s\n", "ID", "Name", "Category", "Domain", "Future")
		rule(118)
		for _, s := range skills {
			future := ""
			if s.IsFutureSkill {
				future = "yes"
			}
			fmt.Printf("%-36s  %-32s  %-18s  %-18s  %s\n",
				s.ID, truncate(s.Name, 32), truncate(s.Category, 18), truncate(s.Domain, 18), future)
		}
		fmt.Printf("\n%d skills\n", len(skills))
		return nil
	},
}

var skillMatchCmd = &cobra.Command{
	Use:   "match <name>",
	Short: "Find the closest existing skill above a similarity threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		description, _ := cmd.Flags().GetString("description")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		m, err := e.ontology.Match(cmd.Context(), args[0], description, threshold)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(m)
		}
		if m == nil {
			fmt.Printf("No skill above %.2f similarity.\n", threshold)
			return nil
		}
		fmt.Printf("%s  %s  (similarity %.3f)\n", m.Skill.ID, m.Skill.Name, m.Score)
		return nil
	},
}

func init() {
	skillAddCmd.Flags().String("description", "", "What the skill covers")
	skillAddCmd.Flags().String("category", "", "Category, e.g. technical")
	skillAddCmd.Flags().String("domain", "", "Domain, e.g. cloud")
	skillAddCmd.Flags().Bool("future", false, "Mark as an emerging skill")
	skillAddCmd.Flags().Float64("threshold", ontology.GoalMatchThreshold, "Reuse an existing skill above this similarity")

	skillMatchCmd.Flags().String("description", "", "Description used alongside the name")
	skillMatchCmd.Flags().Float64("threshold", ontology.EmployeeMatchThreshold, "Minimum similarity (exclusive)")

	skillCmd.AddCommand(skillAddCmd)
	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillMatchCmd)
}
