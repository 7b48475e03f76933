package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/torosent/llmbench/internal/endpoint"
	"github.com/torosent/llmbench/internal/executor"
	"github.com/torosent/llmbench/internal/httpclient"
	"github.com/torosent/llmbench/internal/profileconfig"
	"github.com/torosent/llmbench/internal/promptsource"
	"github.com/torosent/llmbench/internal/sessionid"
	"github.com/torosent/llmbench/internal/sessionstore"
)

// runContext bundles the pieces shared by the load and stress subcommands:
// the resolved profile/config, a shared HTTP client, a prompt source, and
// an open session store.
type runContext struct {
	sessionID  string
	profile    *endpoint.Profile
	testConfig profileconfig.TestConfig
	client     *http.Client
	store      *sessionstore.Store
}

func loadRunContext(cmd *cobra.Command, profileName, configName, sessionIDFlag string) (*runContext, func(), error) {
	profilesPath, _ := cmd.Flags().GetString("profiles")
	dbPath, _ := cmd.Flags().GetString("db")

	result, err := profileconfig.Load(profilesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load profile config: %w", err)
	}

	profile, ok := result.Profiles[profileName]
	if !ok {
		return nil, nil, fmt.Errorf("unknown endpoint profile %q", profileName)
	}
	testConfig, ok := result.Configs[configName]
	if !ok {
		return nil, nil, fmt.Errorf("unknown test config %q", configName)
	}

	store, err := sessionstore.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}

	sessID := sessionIDFlag
	if sessID == "" {
		sessID = sessionid.New()
	}

	rc := &runContext{
		sessionID:  sessID,
		profile:    &profile,
		testConfig: testConfig,
		client:     httpclient.New(testConfig.Timeout),
		store:      store,
	}
	return rc, func() { store.Close() }, nil
}

// newAttempter builds an executor.Executor for a given kind/params against
// rc's shared client, profile, and a fresh prompt source built from
// prompts.
func newAttempter(rc *runContext, prompts []string, kind string, params map[string]string, timeout time.Duration) (*executor.Executor, error) {
	source, err := promptsource.New(prompts)
	if err != nil {
		return nil, err
	}
	return executor.New(rc.client, rc.profile, source, kind, params, timeout), nil
}
