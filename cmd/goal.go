package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillmap/internal/store"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage strategic goals and their required skills",
}

var goalAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a goal",
	Args:  cobra.ExactArgs(1),
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

		g := &store.Goal{Title: args[0]}
		g.Description, _ = cmd.Flags().GetString("description")
		g.TimeHorizonYear, _ = cmd.Flags().GetInt("horizon")
		g.BusinessUnit, _ = cmd.Flags().GetString("unit")
		g.Priority, _ = cmd.Flags().GetInt("priority")
		g.OwnerEmployeeID, _ = cmd.Flags().GetString("owner")

		if err := st.Goals().Upsert(cmd.Context(), g); err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(g)
		}
		fmt.Println(g.ID)
		return nil
	},
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals",
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

		goals, err := st.Goals().List(cmd.Context())
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(goals)
		}

		fmt.Printf("%-36s  %-40s  %7s  %8s  %s\n", "ID", "Title", "Horizon", "Priority", "Unit")
		rule(110)
		for _, g := range goals {
			horizon := "-"
			if g.TimeHorizonYear > 0 {
				horizon = fmt.Sprint(g.TimeHorizonYear)
			}
			fmt.Printf("%-36s  %-40s  %7s  %8d  %s\n",
				g.ID, truncate(g.Title, 40), horizon, g.Priority, g.BusinessUnit)
		}
		fmt.Printf("\n%d goals\n", len(goals))
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a goal and its required skills",
	Args:  cobra.ExactArgs(1),
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

		ctx := cmd.Context()
		g, err := st.Goals().Get(ctx, args[0])
		if err != nil {
			return err
		}
		reqs, err := st.Goals().Requirements(ctx, g.ID)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(map[string]any{"goal": g, "requirements": reqs})
		}

		fmt.Printf("ID:        %s\n", g.ID)
		fmt.Printf("Title:     %s\n", g.Title)
		if g.Description != "" {
			fmt.Printf("About:     %s\n", g.Description)
		}
		if g.TimeHorizonYear > 0 {
			fmt.Printf("Horizon:   %d\n", g.TimeHorizonYear)
		}
		fmt.Println()

		if len(reqs) == 0 {
			fmt.Println("No required skills yet. Use `skillmap goal require` or `skillmap goal skills`.")
			return nil
		}
		fmt.Printf("%-32s  %6s  %6s  %s\n", "Skill", "Target", "Weight", "By")
		rule(60)
		for _, r := range reqs {
			name := r.SkillID
			if s, err := st.Skills().Get(ctx, r.SkillID); err == nil {
				name = s.Name
			}
			by := "-"
			if r.RequiredByYear > 0 {
				by = fmt.Sprint(r.RequiredByYear)
			}
			fmt.Printf("%-32s  %6d  %6.2f  %s\n", truncate(name, 32), r.TargetLevel, r.ImportanceWeight, by)
		}
		return nil
	},
}

var goalRequireCmd = &cobra.Command{
	Use:   "require <goal-id> <skill-id>",
	Short: "Set a required skill level for a goal",
	Args:  cobra.ExactArgs(2),
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

		r := &store.RequiredSkill{GoalID: args[0], SkillID: args[1]}
		r.TargetLevel, _ = cmd.Flags().GetInt("level")
		r.ImportanceWeight, _ = cmd.Flags().GetFloat64("weight")
		r.RequiredByYear, _ = cmd.Flags().GetInt("by")

		if err := st.Goals().UpsertRequirement(cmd.Context(), r); err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(r)
		}
		fmt.Printf("goal %s requires %s at level %d\n", r.GoalID, r.SkillID, r.TargetLevel)
		return nil
	},
}

var goalSkillsCmd = &cobra.Command{
	Use:   "skills <goal-id>",
	Short: "Infer the skills a goal requires",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.ontology.ExtractForGoal(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%d required skills attached\n", n)
		return nil
	},
}

var goalExtractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Create goals from a strategy document (stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		owner, _ := cmd.Flags().GetString("owner")
		res, err := e.ontology.ExtractGoals(cmd.Context(), string(raw), owner)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(res)
		}
		if res.Heuristic {
			fmt.Println("Goal extraction unavailable; goals were split from the text.")
		}
		for _, g := range res.Goals {
			fmt.Printf("%s  %s\n", g.ID, g.Title)
		}
		return nil
	},
}

func init() {
	goalAddCmd.Flags().String("description", "", "What the goal is about")
	goalAddCmd.Flags().Int("horizon", 0, "Target year")
	goalAddCmd.Flags().String("unit", "", "Business unit")
	goalAddCmd.Flags().Int("priority", 0, "Priority (higher first)")
	goalAddCmd.Flags().String("owner", "", "Owning employee id")

	goalRequireCmd.Flags().Int("level", 3, "Target proficiency level (1-5)")
	goalRequireCmd.Flags().Float64("weight", 1, "Importance weight")
	goalRequireCmd.Flags().Int("by", 0, "Year the level is needed by")

	goalExtractCmd.Flags().String("owner", "", "Owning employee id for created goals")

	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalShowCmd)
	goalCmd.AddCommand(goalRequireCmd)
	goalCmd.AddCommand(goalSkillsCmd)
	goalCmd.AddCommand(goalExtractCmd)
}
