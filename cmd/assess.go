package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillmap/internal/app"
	"github.com/abhisek/skillmap/internal/assessment"
	"github.com/abhisek/skillmap/internal/store"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Generate, take and grade adaptive skill assessments",
}

var assessNewCmd = &cobra.Command{
	Use:   "new <employee-id> <skill-id>",
	Short: "Generate an assessment pitched at the employee's readiness",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		in := assessment.GenerateInput{EmployeeID: args[0], SkillID: args[1]}
		in.NumQuestions, _ = cmd.Flags().GetInt("questions")
		if cmd.Flags().Changed("readiness") {
			r, _ := cmd.Flags().GetFloat64("readiness")
			in.ReadinessScore = &r
		}

		res, err := e.assessments.Generate(cmd.Context(), in)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(res)
		}

		a := res.Assessment
		fmt.Printf("Assessment:  %s\n", a.ID)
		fmt.Printf("Questions:   %d of %d requested\n", res.Generated, res.Requested)
		fmt.Printf("Difficulty:  %.2f (band %.2f-%.2f)\n", res.BaseDifficulty, res.Band.Min, res.Band.Max)
		fmt.Printf("Duration:    ~%d min\n", a.EstimatedDurationMinutes)
		if res.Degraded {
			fmt.Println("Note: duplicate questions were dropped.")
		}
		fmt.Printf("\nRun `skillmap assess take %s` to answer it.\n", a.ID)
		return nil
	},
}

var assessTakeCmd = &cobra.Command{
	Use:   "take <assessment-id>",
	Short: "Answer a pending assessment in the terminal and submit it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		a, err := e.assessments.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if a.Status != store.StatusPending {
			return fmt.Errorf("assessment %s is already %s", a.ID, a.Status)
		}

		title := a.SkillID
		if s, err := e.store.Skills().Get(ctx, a.SkillID); err == nil {
			title = s.Name
		}

		answers, err := app.RunQuiz(title, a)
		if errors.Is(err, app.ErrAborted) {
			fmt.Println("Assessment left pending; nothing was submitted.")
			return nil
		}
		if err != nil {
			return err
		}

		res, err := e.assessments.Submit(ctx, a.ID, a.EmployeeID, answers)
		if err != nil {
			return err
		}
		return printSubmitResult(cmd, res)
	},
}

var assessSubmitCmd = &cobra.Command{
	Use:   "submit <assessment-id>",
	Short: "Submit answers non-interactively",
	Long: `Submit answers non-interactively. Each --answer is question_id=option_id.
Unanswered questions count as wrong.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringArray("answer")
		answers := make(map[string]string, len(raw))
		for _, kv := range raw {
			q, opt, ok := strings.Cut(kv, "=")
			if !ok || q == "" {
				return fmt.Errorf("invalid answer %q: want question_id=option_id", kv)
			}
			answers[q] = opt
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		employeeID, _ := cmd.Flags().GetString("employee")
		res, err := e.assessments.Submit(cmd.Context(), args[0], employeeID, answers)
		if err != nil {
			return err
		}
		return printSubmitResult(cmd, res)
	},
}

var assessShowCmd = &cobra.Command{
	Use:   "show <assessment-id>",
	Short: "Show an assessment (answers stay hidden while pending)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := e.assessments.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(a)
		}

		fmt.Printf("ID:        %s\n", a.ID)
		fmt.Printf("Employee:  %s\n", a.EmployeeID)
		fmt.Printf("Skill:     %s\n", a.SkillID)
		fmt.Printf("Status:    %s\n", a.Status)
		fmt.Printf("Score:     %s\n", fmtOptional(a.Score, "%.1f%%"))
		fmt.Println()
		for i, q := range a.Questions {
			fmt.Printf("%d. %s  (difficulty %.1f)\n", i+1, q.Text, q.Difficulty)
			for _, o := range q.Options {
				mark := " "
				switch {
				case q.CorrectAnswerID != "" && o.ID == q.CorrectAnswerID:
					mark = "*"
				case a.Answers[q.ID] == o.ID:
					mark = ">"
				}
				fmt.Printf("   %s %s) %s\n", mark, o.ID, o.Text)
			}
			if q.Explanation != "" {
				fmt.Printf("     %s\n", q.Explanation)
			}
		}
		return nil
	},
}

var assessHistoryCmd = &cobra.Command{
	Use:   "history <employee-id>",
	Short: "List an employee's assessments, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		skillID, _ := cmd.Flags().GetString("skill")
		list, err := e.assessments.History(cmd.Context(), args[0], skillID)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(list)
		}
		if len(list) == 0 {
			fmt.Println("No assessments found.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-36s  %-9s  %s\n", "ID", "Created", "Skill", "Status", "Score")
		rule(118)
		for _, a := range list {
			fmt.Printf("%-36s  %-19s  %-36s  %-9s  %s\n",
				a.ID, a.CreatedAt.Local().Format("2006-01-02 15:04:05"), a.SkillID, a.Status,
				fmtOptional(a.Score, "%.1f%%"))
		}
		return nil
	},
}

func printSubmitResult(cmd *cobra.Command, res *assessment.SubmitResult) error {
	if wantJSON(cmd) {
		return printJSON(res)
	}
	fmt.Printf("Correct:      %d/%d (%.1f%%)\n", res.CorrectCount, res.Total, res.PercentageCorrect)
	fmt.Printf("IRT level:    %.2f (theta %.3f)\n", res.IRTLevel, res.Theta)
	fmt.Printf("Proficiency:  %.2f\n", res.UpdatedProficiency)
	fmt.Println()
	for i, f := range res.Feedback {
		mark := "✗"
		if f.IsCorrect {
			mark = "✓"
		}
		fmt.Printf("%s %d. %s\n", mark, i+1, f.QuestionText)
		if !f.IsCorrect {
			fmt.Printf("     answered %q, correct %q\n", f.Submitted, f.Correct)
		}
		if f.Explanation != "" {
			fmt.Printf("     %s\n", f.Explanation)
		}
	}
	return nil
}

func init() {
	assessNewCmd.Flags().IntP("questions", "n", assessment.DefaultNumQuestions, "Number of questions")
	assessNewCmd.Flags().Float64("readiness", 0, "Readiness in [0,1] (defaults to the employee's profile)")

	assessSubmitCmd.Flags().StringArrayP("answer", "a", nil, "Answer question_id=option_id (repeatable)")
	assessSubmitCmd.Flags().String("employee", "", "Submitting employee id")
	_ = assessSubmitCmd.MarkFlagRequired("employee")

	assessHistoryCmd.Flags().String("skill", "", "Only assessments for this skill id")

	assessCmd.AddCommand(assessNewCmd)
	assessCmd.AddCommand(assessTakeCmd)
	assessCmd.AddCommand(assessSubmitCmd)
	assessCmd.AddCommand(assessShowCmd)
	assessCmd.AddCommand(assessHistoryCmd)
}
