package cmd

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillmap/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect logged text model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent text model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		calls, err := s.LLMCalls().List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query calls: %w", err)
		}
		if purpose != "" {
			calls = slices.DeleteFunc(calls, func(c store.LLMCall) bool { return c.Purpose != purpose })
		}
		if wantJSON(cmd) {
			return printJSON(calls)
		}
		if len(calls) == 0 {
			fmt.Println("No LLM calls found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-20s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		rule(106)
		for _, c := range calls {
			ok := "✓"
			if !c.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-20s  %-28s  %-6d  %-6d  %-7d  %s\n",
				c.ID,
				c.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(c.Purpose, 20),
				truncate(c.Model, 28),
				c.InputTokens,
				c.OutputTokens,
				c.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request and response of a call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		c, err := s.LLMCalls().Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(c)
		}

		sep := strings.Repeat("─", 60)
		fmt.Printf("ID:        %d\n", c.ID)
		fmt.Printf("Time:      %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", c.Provider)
		fmt.Printf("Model:     %s\n", c.Model)
		fmt.Printf("Purpose:   %s\n", c.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", c.InputTokens, c.OutputTokens)
		fmt.Printf("Latency:   %dms\n", c.LatencyMs)
		fmt.Printf("Success:   %v\n", c.Success)
		if c.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", c.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", c.RequestBody},
			{"RESPONSE", c.ResponseBody},
		} {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println(part.title)
			fmt.Println(sep)
			if part.body != "" {
				fmt.Println(part.body)
			} else {
				fmt.Println("(not captured)")
			}
		}
		return nil
	},
}

type purposeUsage struct {
	Purpose      string `json:"purpose"`
	Calls        int    `json:"calls"`
	Failures     int    `json:"failures"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	AvgLatencyMs int64  `json:"avg_latency_ms"`
}

func usageByPurpose(calls []store.LLMCall) []purposeUsage {
	byPurpose := map[string]*purposeUsage{}
	var latency = map[string]int64{}
	for _, c := range calls {
		u, ok := byPurpose[c.Purpose]
		if !ok {
			u = &purposeUsage{Purpose: c.Purpose}
			byPurpose[c.Purpose] = u
		}
		u.Calls++
		if !c.Success {
			u.Failures++
		}
		u.InputTokens += c.InputTokens
		u.OutputTokens += c.OutputTokens
		latency[c.Purpose] += c.LatencyMs
	}

	out := make([]purposeUsage, 0, len(byPurpose))
	for p, u := range byPurpose {
		u.AvgLatencyMs = latency[p] / int64(u.Calls)
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b purposeUsage) int { return cmp.Compare(a.Purpose, b.Purpose) })
	return out
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage by purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		calls, err := s.LLMCalls().List(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query calls: %w", err)
		}
		stats := usageByPurpose(calls)
		if wantJSON(cmd) {
			return printJSON(stats)
		}
		if len(stats) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		fmt.Printf("%-20s  %6s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
		rule(ruleWidth)
		var totalCalls, totalIn, totalOut int
		for _, st := range stats {
			fmt.Printf("%-20s  %6d  %6d  %10d  %10d  %8d\n",
				truncate(st.Purpose, 20), st.Calls, st.Failures, st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
			totalCalls += st.Calls
			totalIn += st.InputTokens
			totalOut += st.OutputTokens
		}
		rule(ruleWidth)
		fmt.Printf("%-20s  %6d  %6s  %10d  %10d\n", "TOTAL", totalCalls, "", totalIn, totalOut)
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. assessment-questions, module-content, gap-analysis)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
