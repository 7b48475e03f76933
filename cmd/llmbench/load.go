package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/torosent/llmbench/internal/hostprobe"
	"github.com/torosent/llmbench/internal/livestats"
	"github.com/torosent/llmbench/internal/loadengine"
	"github.com/torosent/llmbench/internal/model"
	"github.com/torosent/llmbench/internal/sessionanalyzer"
	"github.com/torosent/llmbench/internal/tracing"
)

func newLoadCommand() *cobra.Command {
	var profileName, configName, sessionID, prompt, kind, apiKey string
	var jsonOutput, dashboard, traceEnabled bool
	var traceEndpoint, probeHost string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Run a staged concurrency ramp against an endpoint profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			rc, closeFn, err := loadRunContext(cmd, profileName, configName, sessionID)
			if err != nil {
				return err
			}
			defer closeFn()

			plan := loadengine.Plan{
				ConcurrencyLevels: rc.testConfig.ConcurrentLevels,
				RequestsPerLevel:  rc.testConfig.RequestsPerLevel,
				RampUp:            rc.testConfig.RampUpTime,
				CoolDown:          rc.testConfig.CoolDownTime,
			}

			params := map[string]string{}
			if apiKey != "" {
				params["api_key"] = apiKey
			}
			attempter, err := newAttempter(rc, []string{prompt}, kind, params, rc.testConfig.Timeout)
			if err != nil {
				return err
			}

			tp, err := tracing.Init(ctx, tracing.Config{Enabled: traceEnabled, Endpoint: traceEndpoint})
			if err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}
			defer tp.Shutdown(ctx)

			var collector *livestats.Collector
			if dashboard {
				collector = livestats.New()
				dash, err := livestats.NewDashboard(collector, fmt.Sprintf("load: %s/%s", profileName, configName))
				if err != nil {
					return err
				}
				dash.Start()
				defer dash.Stop()
			}

			var prober *hostprobe.Prober
			if probeHost != "" {
				prober = hostprobe.New(0, 0)
				probeCtx, stopProbe := context.WithCancel(ctx)
				defer stopProbe()
				go prober.Start(probeCtx, []hostprobe.Target{{Host: probeHost, Method: hostprobe.MethodTCP}})
			}

			instrumented := &instrumentedAttempter{
				inner:     attempter,
				tracer:    tp.Tracer(),
				sessionID: rc.sessionID,
				collector: collector,
			}

			progress := func(concurrency, completed, total int) {
				fmt.Printf("\rconcurrency=%d %d/%d", concurrency, completed, total)
			}
			start := time.Now()
			stages := loadengine.Run(ctx, plan, instrumented, progress)
			fmt.Println()
			end := time.Now()

			hostStats := map[string]model.ReachabilityAggregate{}
			if prober != nil {
				hostStats = prober.AllAggregates()
			}

			session := model.Session{
				SessionID:   rc.sessionID,
				ProfileName: profileName,
				ConfigName:  configName,
				StartTime:   start,
				EndTime:     end,
				Stages:      stages,
				HostStats:   hostStats,
			}
			if err := rc.store.SaveSession(session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			analyzer := sessionanalyzer.New(rc.store)
			summary, err := analyzer.Summarize(rc.sessionID)
			if err != nil {
				return err
			}
			printSummary(rc.sessionID, summary, jsonOutput)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "", "Endpoint profile name (required)")
	cmd.Flags().StringVar(&configName, "config", "", "Test config name (required)")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session identifier (generated if omitted)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Prompt text to send (every request in the run uses this one prompt)")
	cmd.Flags().StringVar(&kind, "endpoint-kind", "chat", "Endpoint kind to invoke")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key substituted into the endpoint profile's {api_key} placeholder")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the summary as JSON")
	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "Show a live (non-authoritative) terminal dashboard while the test runs")
	cmd.Flags().BoolVar(&traceEnabled, "trace", false, "Emit an OTLP/gRPC span per attempt")
	cmd.Flags().StringVar(&traceEndpoint, "trace-endpoint", "", "OTLP/gRPC collector endpoint (falls back to OTEL_EXPORTER_OTLP_ENDPOINT)")
	cmd.Flags().StringVar(&probeHost, "probe-host", "", "Host to sample for TCP reachability alongside the test")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
