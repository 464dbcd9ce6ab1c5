package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillmap/internal/gaps"
)

var gapCmd = &cobra.Command{
	Use:   "gap",
	Short: "Measure skill gaps against a goal",
}

var gapScoreCmd = &cobra.Command{
	Use:   "score <employee-id> <goal-id>",
	Short: "Score one employee against a goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.gaps.Score(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(res)
		}
		printGapResult(res)
		return nil
	},
}

var gapTeamCmd = &cobra.Command{
	Use:   "team <manager-id> <goal-id>",
	Short: "Score a manager's direct reports against a goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		team, err := e.gaps.ScoreTeam(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(team)
		}

		fmt.Printf("Team of %d, mean gap index %.3f\n\n", team.TeamSize, team.GapIndex)
		if team.TeamSize == 0 {
			return nil
		}
		fmt.Printf("%-36s  %10s  %9s  %s\n", "Employee", "Similarity", "Gap index", "Open gaps")
		rule(ruleWidth)
		for _, m := range team.Members {
			open := 0
			for _, s := range m.Skills {
				if s.Gap > 0 {
					open++
				}
			}
			fmt.Printf("%-36s  %10.3f  %9.3f  %d\n", m.EmployeeID, m.Similarity, m.GapIndex, open)
		}
		return nil
	},
}

var gapAnalyzeCmd = &cobra.Command{
	Use:   "analyze <employee-id> <goal-id>",
	Short: "Ask the text model for a narrative gap analysis",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := e.gaps.Analyze(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(a)
		}
		if a.GapAnalysis == nil {
			fmt.Println(a.Message)
			return nil
		}

		fmt.Printf("Overall readiness: %.0f%%\n\n", a.OverallReadiness*100)
		fmt.Println(a.Summary)
		if len(a.MissingSkills) > 0 {
			fmt.Println("\nMissing skills")
			rule(ruleWidth)
			for _, m := range a.MissingSkills {
				fmt.Printf("%-28s  gap %.1f  %s\n", truncate(m.Skill, 28), m.GapValue, m.Reason)
			}
		}
		if len(a.SkillMatches) > 0 {
			fmt.Println("\nMatched skills")
			rule(ruleWidth)
			for _, m := range a.SkillMatches {
				fmt.Printf("%-28s  <- %-28s  %.2f\n", truncate(m.RequiredSkill, 28), truncate(m.EmployeeSkill, 28), m.Similarity)
			}
		}
		return nil
	},
}

func printGapResult(res *gaps.Result) {
	if res.Status == gaps.StatusNoRequirements {
		fmt.Println(res.Message)
		return
	}
	fmt.Printf("Similarity:  %.3f\n", res.Similarity)
	fmt.Printf("Gap index:   %.3f\n\n", res.GapIndex)

	fmt.Printf("%-32s  %6s  %7s  %6s  %5s\n", "Skill", "Target", "Current", "Weight", "Gap")
	rule(ruleWidth)
	for _, s := range res.Skills {
		fmt.Printf("%-32s  %6d  %7.2f  %6.2f  %5.2f\n",
			truncate(s.SkillName, 32), s.TargetLevel, s.CurrentLevel, s.Weight, s.Gap)
	}
	if !res.HasGaps() {
		fmt.Println("\nAll required levels are met.")
	}
}

func init() {
	gapCmd.AddCommand(gapScoreCmd)
	gapCmd.AddCommand(gapTeamCmd)
	gapCmd.AddCommand(gapAnalyzeCmd)
}
