// Command llmbench drives the load/stress harness core from the terminal.
// It is deliberately thin: it loads a profile-config file, builds an
// Endpoint Profile and TestConfig, runs the Load or Stress Engine, persists
// the result, and prints a plain-text (or JSON) summary. Chart rendering,
// HTML/PDF report generation, and opening a browser are out of scope here.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "llmbench",
		Short:         "Load and stress test harness for HTTP LLM inference endpoints",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().String("profiles", "profiles.yaml", "Path to the endpoint-profile configuration file")
	root.PersistentFlags().String("db", "llmbench.db", "Path to the SQLite session store")

	// Every persistent flag can also be set via LLMBENCH_<FLAG_NAME>, so a
	// CI pipeline can configure a run without editing a command line.
	v := viper.New()
	v.SetEnvPrefix("LLMBENCH")
	v.AutomaticEnv()
	root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			envKey := strings.ReplaceAll(f.Name, "-", "_")
			if !f.Changed && v.IsSet(envKey) {
				_ = f.Value.Set(v.GetString(envKey))
			}
		})
	}

	root.AddCommand(newLoadCommand())
	root.AddCommand(newStressCommand())
	root.AddCommand(newHistoryCommand())
	return root
}
