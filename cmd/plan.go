package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillmap/internal/pathplan"
	"github.com/abhisek/skillmap/internal/report"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build time-boxed learning plans",
}

var planBuildCmd = &cobra.Command{
	Use:   "build <employee-id> <goal-id>",
	Short: "Build a learning plan that closes the largest gaps first",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		hours, _ := cmd.Flags().GetFloat64("hours")
		plan, err := e.paths.Build(ctx, args[0], args[1], int(math.Round(hours*60)))
		if err != nil {
			return err
		}

		if out, _ := cmd.Flags().GetString("pdf"); out != "" {
			if err := writePlanPDF(cmd, e, plan, out); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", out)
		}

		if wantJSON(cmd) {
			return printJSON(plan)
		}
		printPlan(plan)
		return nil
	},
}

func writePlanPDF(cmd *cobra.Command, e *env, plan *pathplan.Plan, path string) error {
	ctx := cmd.Context()
	emp, err := e.store.Employees().Get(ctx, plan.EmployeeID)
	if err != nil {
		return err
	}
	goal, err := e.store.Goals().Get(ctx, plan.GoalID)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.LearningPlanPDF(f, plan, emp, goal); err != nil {
		f.Close()
		return fmt.Errorf("render pdf: %w", err)
	}
	return f.Close()
}

func printPlan(plan *pathplan.Plan) {
	if len(plan.Items) == 0 {
		fmt.Println(plan.Meta.Message)
		return
	}

	fmt.Printf("%3s  %-24s  %-36s  %6s  %5s\n", "#", "Skill", "Module", "Min", "Gain")
	rule(84)
	for _, it := range plan.Items {
		title := it.Title
		if it.IsGenerated {
			title += " *"
		}
		mins := fmt.Sprint(it.DurationMinutes)
		if it.Truncated {
			mins += "~"
		}
		fmt.Printf("%3d  %-24s  %-36s  %6s  %5.1f\n",
			it.Order, truncate(it.SkillName, 24), truncate(title, 36), mins, it.ExpectedGain)
	}
	rule(84)
	fmt.Printf("Total %d min (%.2f h), %.1f%% of %d min budget\n",
		plan.TotalMinutes, plan.TotalHours, plan.Meta.UtilizationPercent, plan.Meta.MaxMinutes)
	fmt.Printf("Similarity %.3f, gap index %.3f\n", plan.Meta.Similarity, plan.Meta.GapIndex)
	if plan.Meta.YearsLeft != nil {
		fmt.Printf("Years left to goal horizon: %.1f\n", *plan.Meta.YearsLeft)
	}
	if plan.Meta.Message != "" {
		fmt.Println(plan.Meta.Message)
	}
	fmt.Println("\n* generated module, ~ shortened to fit the budget")
}

func init() {
	planBuildCmd.Flags().Float64("hours", pathplan.DefaultMaxHours, "Time budget in hours")
	planBuildCmd.Flags().String("pdf", "", "Also write the plan as a PDF to this path")

	planCmd.AddCommand(planBuildCmd)
}
