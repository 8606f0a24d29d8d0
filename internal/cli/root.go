package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pendergraft/evmscan/internal/observability/metrics"
	"github.com/pendergraft/evmscan/pkg/etherscan"
)

var (
	cfgFile  string
	endpoint string
	apiKey   string
)

// Execute runs the CLI
func Execute(version string) error {
	rootCmd := &cobra.Command{
		Use:     "evmscan",
		Short:   "Query contract metadata from Etherscan-compatible explorers",
		Long:    `evmscan fetches verified source code, ABIs, and account state from Etherscan-compatible block explorer APIs.`,
		Version: version,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: evmscan.toml)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "explorer API endpoint (default from config)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "explorer API key")

	metrics.Init(os.Getenv("EVMSCAN_METRICS") == "1")

	// Add subcommands
	rootCmd.AddCommand(createSourceCmd())
	rootCmd.AddCommand(createABICmd())
	rootCmd.AddCommand(createAccountCmd())
	rootCmd.AddCommand(createContractCmd())
	rootCmd.AddCommand(createAuthCmd())
	rootCmd.AddCommand(createConfigCmd())

	return rootCmd.Execute()
}

// getEndpoint returns the explorer endpoint from flag, env, config file, or default
func getEndpoint() string {
	// 1. Command line flag
	if endpoint != "" {
		return endpoint
	}

	// 2. Environment variable
	if env := os.Getenv("ETHERSCAN_ENDPOINT"); env != "" {
		return env
	}

	// 3. Project config file (TOML)
	if config := loadProjectConfigSilent(); config != nil && config.Endpoint != "" {
		return config.Endpoint
	}

	// 4. Default
	return etherscan.DefaultBaseURL
}

// getAPIKey returns the API key from flag, env, or credentials file
func getAPIKey() string {
	// 1. Command line flag
	if apiKey != "" {
		return apiKey
	}

	// 2. Environment variable
	if env := os.Getenv("ETHERSCAN_API_KEY"); env != "" {
		return env
	}

	// 3. Credentials file (keyed by endpoint URL)
	if cred := getCredential(getEndpoint()); cred != "" {
		return cred
	}

	return ""
}

func requireAPIKey() (string, error) {
	if key := getAPIKey(); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no API key configured: set ETHERSCAN_API_KEY, pass --api-key, or run 'evmscan auth login'")
}

// newExplorerClient builds a client for the effective endpoint and key, with
// the instrumented transport.
func newExplorerClient() (*etherscan.Client, error) {
	key, err := requireAPIKey()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout:   5 * time.Second,
		Transport: metrics.Transport(nil),
	}

	return etherscan.New(key,
		etherscan.WithBaseURL(getEndpoint()),
		etherscan.WithHTTPClient(httpClient),
	), nil
}
