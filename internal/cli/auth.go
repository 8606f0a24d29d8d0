package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Credentials stores API keys per explorer endpoint
type Credentials struct {
	Endpoints map[string]EndpointCredential `yaml:"endpoints"`
}

// EndpointCredential stores credentials for a single explorer endpoint
type EndpointCredential struct {
	APIKey string `yaml:"api_key"`
	Name   string `yaml:"name,omitempty"` // Optional name/description
}

func createAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(createAuthLoginCmd())
	cmd.AddCommand(createAuthLogoutCmd())
	cmd.AddCommand(createAuthStatusCmd())

	return cmd
}

func createAuthLoginCmd() *cobra.Command {
	var endpointFlag string
	var apiKeyFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an explorer API key",
		Long: `Save an API key for an explorer endpoint.

The key is stored in ~/.evmscan/credentials with secure file permissions,
keyed by the endpoint URL.

EXAMPLES:
  # Interactive login (prompts for API key)
  evmscan auth login

  # Login to a specific explorer
  evmscan auth login --endpoint https://api.bscscan.com/api

  # Non-interactive login (for CI)
  evmscan auth login --api-key $ETHERSCAN_API_KEY
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(endpointFlag, apiKeyFlag)
		},
	}

	cmd.Flags().StringVar(&endpointFlag, "endpoint", "", "explorer endpoint (default from config)")
	cmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key (prompts if not provided)")

	return cmd
}

func createAuthLogoutCmd() *cobra.Command {
	var endpointFlag string
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear credentials",
		Long: `Remove saved credentials for an explorer endpoint.

EXAMPLES:
  # Logout from the default endpoint
  evmscan auth logout

  # Logout from a specific explorer
  evmscan auth logout --endpoint https://api.bscscan.com/api

  # Clear all credentials
  evmscan auth logout --all
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout(endpointFlag, allFlag)
		},
	}

	cmd.Flags().StringVar(&endpointFlag, "endpoint", "", "explorer endpoint (default from config)")
	cmd.Flags().BoolVar(&allFlag, "all", false, "clear all credentials")

	return cmd
}

func createAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long: `Show saved credentials for all configured explorer endpoints.

EXAMPLES:
  evmscan auth status
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus()
		},
	}

	return cmd
}

func runAuthLogin(endpointURL, apiKeyInput string) error {
	// Determine endpoint
	if endpointURL == "" {
		endpointURL = getEndpoint()
	}

	// Get API key
	key := apiKeyInput
	if key == "" {
		fmt.Printf("Enter API key for %s: ", endpointURL)

		// Try to read the key without echo
		stdinFd := int(os.Stdin.Fd())
		if term.IsTerminal(stdinFd) {
			byteKey, err := term.ReadPassword(stdinFd)
			fmt.Println() // New line after hidden input
			if err != nil {
				return fmt.Errorf("failed to read API key: %w", err)
			}
			key = string(byteKey)
		} else {
			// Non-terminal, read from stdin
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil && err != io.EOF {
				return fmt.Errorf("failed to read API key: %w", err)
			}
			key = strings.TrimSpace(line)
		}
	}

	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	// Validate the key with a cheap request
	fmt.Printf("Validating credentials with %s...\n", endpointURL)
	valid, err := validateAPIKey(endpointURL, key)
	if err != nil {
		return fmt.Errorf("failed to validate credentials: %w", err)
	}
	if !valid {
		return fmt.Errorf("invalid API key")
	}

	// Save credentials
	if err := saveCredential(endpointURL, key); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	masked := maskAPIKey(key)
	fmt.Printf("✅ Authenticated to %s (key: %s)\n", endpointURL, masked)
	fmt.Printf("   Credentials saved to %s\n", credentialsFilePath())

	return nil
}

func runAuthLogout(endpointURL string, all bool) error {
	if all {
		path := credentialsFilePath()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		fmt.Println("✅ All credentials cleared")
		return nil
	}

	if endpointURL == "" {
		endpointURL = getEndpoint()
	}

	creds, err := loadCredentials()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	if _, exists := creds.Endpoints[endpointURL]; !exists {
		fmt.Printf("No credentials found for %s\n", endpointURL)
		return nil
	}

	delete(creds.Endpoints, endpointURL)

	if err := writeCredentials(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Printf("✅ Logged out from %s\n", endpointURL)
	return nil
}

func runAuthStatus() error {
	creds, err := loadCredentials()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Not authenticated to any explorers")
			fmt.Println("\nRun 'evmscan auth login' to authenticate")
			return nil
		}
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	if len(creds.Endpoints) == 0 {
		fmt.Println("Not authenticated to any explorers")
		fmt.Println("\nRun 'evmscan auth login' to authenticate")
		return nil
	}

	fmt.Println("Authenticated explorers:")
	for endpointURL, cred := range creds.Endpoints {
		masked := maskAPIKey(cred.APIKey)
		if cred.Name != "" {
			fmt.Printf("  • %s (%s, key: %s)\n", endpointURL, cred.Name, masked)
		} else {
			fmt.Printf("  • %s (key: %s)\n", endpointURL, masked)
		}
	}

	return nil
}

// Credential file helpers

func credentialsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evmscan"
	}
	return filepath.Join(home, ".evmscan")
}

func credentialsFilePath() string {
	return filepath.Join(credentialsDir(), "credentials")
}

func loadCredentials() (*Credentials, error) {
	path := credentialsFilePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	if creds.Endpoints == nil {
		creds.Endpoints = make(map[string]EndpointCredential)
	}

	return &creds, nil
}

func writeCredentials(creds *Credentials) error {
	dir := credentialsDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}

	path := credentialsFilePath()
	return os.WriteFile(path, data, 0600) // Secure permissions
}

func saveCredential(endpointURL, key string) error {
	creds, err := loadCredentials()
	if err != nil {
		if os.IsNotExist(err) {
			creds = &Credentials{Endpoints: make(map[string]EndpointCredential)}
		} else {
			return err
		}
	}

	creds.Endpoints[endpointURL] = EndpointCredential{APIKey: key}
	return writeCredentials(creds)
}

func getCredential(endpointURL string) string {
	creds, err := loadCredentials()
	if err != nil {
		return ""
	}
	if cred, ok := creds.Endpoints[endpointURL]; ok {
		return cred.APIKey
	}
	return ""
}

// validateAPIKey makes a cheap proxy request; key problems come back in-band
// with status "0".
func validateAPIKey(endpointURL, key string) (bool, error) {
	q := url.Values{
		"module": {"proxy"},
		"action": {"eth_blockNumber"},
		"apikey": {key},
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, endpointURL+"?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false, nil
	}

	var body struct {
		Status string          `json:"status"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}

	return body.Status != "0", nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}
