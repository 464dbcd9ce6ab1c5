package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillmap/internal/irt"
	"github.com/abhisek/skillmap/internal/store"
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manage employees and their skill profiles",
}

var employeeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an employee",
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

		emp := &store.Employee{}
		emp.Email, _ = cmd.Flags().GetString("email")
		emp.Name, _ = cmd.Flags().GetString("name")
		emp.Role, _ = cmd.Flags().GetString("role")
		emp.Description, _ = cmd.Flags().GetString("description")
		emp.ManagerID, _ = cmd.Flags().GetString("manager")
		emp.Location, _ = cmd.Flags().GetString("location")
		if hired, _ := cmd.Flags().GetString("hired"); hired != "" {
			t, err := time.Parse(time.DateOnly, hired)
			if err != nil {
				return fmt.Errorf("invalid --hired %q: %w", hired, err)
			}
			emp.HireDate = &t
		}

		if err := st.Employees().Upsert(cmd.Context(), emp); err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(emp)
		}
		fmt.Println(emp.ID)
		return nil
	},
}

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
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

		var list []store.Employee
		if manager, _ := cmd.Flags().GetString("manager"); manager != "" {
			list, err = st.Employees().ListByManager(cmd.Context(), manager)
		} else {
			list, err = st.Employees().List(cmd.Context())
		}
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(list)
		}
		if len(list) == 0 {
			fmt.Println("No employees found.")
			return nil
		}

		fmt.Printf("%-36s  %-24s  %-28s  %-16s  %s\n", "ID", "Name", "Email", "Role", "Skills")
		rule(116)
		for _, e := range list {
			fmt.Printf("%-36s  %-24s  %-28s  %-16s  %d\n",
				e.ID, truncate(e.Name, 24), truncate(e.Email, 28), truncate(e.Role, 16), len(e.Profile))
		}
		fmt.Printf("\n%d employees\n", len(list))
		return nil
	},
}

var employeeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an employee and their proficiency profile",
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
		emp, err := st.Employees().Get(ctx, args[0])
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(emp)
		}

		fmt.Printf("ID:        %s\n", emp.ID)
		fmt.Printf("Name:      %s\n", emp.Name)
		fmt.Printf("Email:     %s\n", emp.Email)
		if emp.Role != "" {
			fmt.Printf("Role:      %s\n", emp.Role)
		}
		if emp.ManagerID != "" {
			fmt.Printf("Manager:   %s\n", emp.ManagerID)
		}
		fmt.Println()

		if len(emp.Profile) == 0 {
			fmt.Println("No skills recorded.")
			return nil
		}
		fmt.Printf("%-32s  %7s  %7s  %6s  %9s\n", "Skill", "Theta", "Alpha", "Level", "Readiness")
		rule(ruleWidth)
		for _, id := range slices.Sorted(maps.Keys(emp.Profile)) {
			entry := emp.Profile[id]
			name := id
			if s, err := st.Skills().Get(ctx, id); err == nil {
				name = s.Name
			}
			fmt.Printf("%-32s  %7.3f  %7.2f  %6.2f  %8.0f%%\n",
				truncate(name, 32), entry.Theta, entry.Alpha, entry.Level, irt.Readiness(entry.Theta)*100)
		}
		return nil
	},
}

var employeeExtractCmd = &cobra.Command{
	Use:   "extract <id>",
	Short: "Infer skills from the employee's role and description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.ontology.ExtractForEmployee(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%d skills added or raised\n", n)
		return nil
	},
}

var employeeRecordCmd = &cobra.Command{
	Use:   "record <id>",
	Short: "Apply graded responses to the employee's profile",
	Long: `Apply graded responses gathered outside an assessment.
Each --response is skill_id:difficulty:correct, for example go:1.5:1.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringArray("response")
		if len(raw) == 0 {
			return fmt.Errorf("at least one --response is required")
		}
		batch := make([]irt.SkillResponse, 0, len(raw))
		for _, r := range raw {
			sr, err := parseResponse(r)
			if err != nil {
				return err
			}
			batch = append(batch, sr)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		profile, err := irt.NewEstimator(st.Employees(), log).UpdateEmployee(cmd.Context(), args[0], batch)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(profile)
		}
		for _, id := range slices.Sorted(maps.Keys(profile)) {
			fmt.Printf("%-36s  theta %.3f  level %.2f\n", id, profile[id].Theta, profile[id].Level)
		}
		return nil
	},
}

func parseResponse(s string) (irt.SkillResponse, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" {
		return irt.SkillResponse{}, fmt.Errorf("invalid response %q: want skill_id:difficulty:correct", s)
	}
	difficulty, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return irt.SkillResponse{}, fmt.Errorf("invalid difficulty in %q: %w", s, err)
	}
	correct, err := strconv.ParseBool(parts[2])
	if err != nil {
		return irt.SkillResponse{}, fmt.Errorf("invalid correct flag in %q: %w", s, err)
	}
	return irt.SkillResponse{
		SkillID:  parts[0],
		Response: irt.Response{Alpha: irt.DefaultAlpha, Difficulty: difficulty, Correct: correct},
	}, nil
}

func init() {
	employeeAddCmd.Flags().String("email", "", "Email address (unique)")
	employeeAddCmd.Flags().String("name", "", "Full name")
	employeeAddCmd.Flags().String("role", "", "Job title")
	employeeAddCmd.Flags().String("description", "", "Free-text background used for skill extraction")
	employeeAddCmd.Flags().String("manager", "", "Manager employee id")
	employeeAddCmd.Flags().String("location", "", "Location")
	employeeAddCmd.Flags().String("hired", "", "Hire date (YYYY-MM-DD)")
	_ = employeeAddCmd.MarkFlagRequired("email")
	_ = employeeAddCmd.MarkFlagRequired("name")

	employeeListCmd.Flags().String("manager", "", "Only direct reports of this manager id")

	employeeRecordCmd.Flags().StringArrayP("response", "r", nil, "Graded response skill_id:difficulty:correct (repeatable)")

	employeeCmd.AddCommand(employeeAddCmd)
	employeeCmd.AddCommand(employeeListCmd)
	employeeCmd.AddCommand(employeeShowCmd)
	employeeCmd.AddCommand(employeeExtractCmd)
	employeeCmd.AddCommand(employeeRecordCmd)
}
