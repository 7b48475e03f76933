package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/torosent/llmbench/internal/sessionanalyzer"
	"github.com/torosent/llmbench/internal/sessionstore"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past sessions: list, summarize, and compare",
	}
	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryTrendCommand())
	cmd.AddCommand(newHistoryCompareCommand())
	return cmd
}

func openStore(cmd *cobra.Command) (*sessionstore.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	return sessionstore.Open(dbPath)
}

func newHistoryListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			headers, err := store.ListSessions(limit)
			if err != nil {
				return err
			}
			for _, h := range headers {
				fmt.Printf("%s  %-20s  %-20s  requests=%-6d success=%.1f%%\n",
					h.SessionID, h.ProfileName, h.ConfigName, h.TotalRequests,
					successPercent(h.SuccessfulRequests, h.TotalRequests))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to list")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Summarize one session's stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			analyzer := sessionanalyzer.New(store)
			summary, err := analyzer.Summarize(args[0])
			if err != nil {
				return err
			}
			printSummary(args[0], summary, jsonOutput)

			impact, err := analyzer.AnalyzeConcurrencyImpact(args[0])
			if err != nil {
				return err
			}
			if impact.HasData {
				fmt.Printf("optimal concurrency: %d (rps=%.2f, mean latency=%.3fs)\n",
					impact.OptimalConcurrency.Concurrency,
					impact.OptimalConcurrency.ThroughputRPS,
					impact.OptimalConcurrency.MeanLatency)
				if impact.HasThroughputDecline {
					fmt.Printf("throughput decline observed after concurrency=%d\n",
						impact.ThroughputDecline.Concurrency)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the summary as JSON")
	return cmd
}

func newHistoryTrendCommand() *cobra.Command {
	var profileName string
	var windowDays int
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show the multi-day latency/success-rate trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := sessionanalyzer.New(store).AnalyzeTrend(profileName, windowDays)
			if err != nil {
				return err
			}
			enc, _ := json.MarshalIndent(report, "", "  ")
			fmt.Println(string(enc))
			return nil
		},
	}
	cmd.Flags().StringVar(&profileName, "profile", "", "Restrict the trend to one endpoint profile")
	cmd.Flags().IntVar(&windowDays, "window-days", 30, "Number of trailing days to include")
	return cmd
}

func newHistoryCompareCommand() *cobra.Command {
	var windowDays int
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank endpoint profiles by latency and success rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			comparison, err := sessionanalyzer.New(store).CompareAPIs(windowDays)
			if err != nil {
				return err
			}
			enc, _ := json.MarshalIndent(comparison, "", "  ")
			fmt.Println(string(enc))
			return nil
		},
	}
	cmd.Flags().IntVar(&windowDays, "window-days", 30, "Number of trailing days to include")
	return cmd
}

func successPercent(success, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(success) / float64(total) * 100
}
