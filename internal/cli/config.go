package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// projectConfigFiles is the search order for project config files
var projectConfigFiles = []string{"evmscan.toml", "es.toml"}

// ProjectConfig is the project-level TOML configuration
type ProjectConfig struct {
	Endpoint string `toml:"endpoint"`
	Network  string `toml:"network,omitempty"`
}

// GlobalConfig is the global configuration (stored in ~/.evmscan/config.yaml)
type GlobalConfig struct {
	Endpoint string `yaml:"endpoint"`
}

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(createConfigInitCmd())
	cmd.AddCommand(createConfigShowCmd())

	return cmd
}

func createConfigInitCmd() *cobra.Command {
	var endpointURL string
	var network string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config file",
		Long: `Create an evmscan.toml configuration file in the current directory.

This file stores project-specific settings like the explorer endpoint.

EXAMPLES:
  # Create config for the default explorer
  evmscan config init

  # Create config for a specific explorer
  evmscan config init --endpoint https://api.bscscan.com/api --network bsc

  # Overwrite existing config
  evmscan config init --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(endpointURL, network, force)
		},
	}

	cmd.Flags().StringVar(&endpointURL, "endpoint", "https://api.etherscan.io/api", "explorer API endpoint")
	cmd.Flags().StringVar(&network, "network", "ethereum", "network label for the endpoint")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")

	return cmd
}

func createConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current config",
		Long: `Display the current configuration and where each value comes from.

EXAMPLES:
  evmscan config show
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	return cmd
}

func runConfigInit(endpointURL, network string, force bool) error {
	configPath := "evmscan.toml"

	// Check if any config file already exists
	for _, name := range projectConfigFiles {
		if _, err := os.Stat(name); err == nil && !force {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", name)
		}
	}

	content := fmt.Sprintf(`# evmscan project configuration

endpoint = "%s"
network = "%s"
`, endpointURL, network)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Endpoint: %s\n", endpointURL)
	fmt.Printf("  Network:  %s\n", network)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Run 'evmscan auth login' to save an API key")
	fmt.Println("  2. Run 'evmscan source <address>' to fetch contract source")

	return nil
}

func runConfigShow() error {
	fmt.Println("Configuration sources (in order of precedence):")
	fmt.Println()

	// 1. Command line flags
	fmt.Println("1. Command line flags")
	fmt.Println("   --endpoint, --api-key, --config")
	fmt.Println()

	// 2. Environment variables
	fmt.Println("2. Environment variables")
	endpointEnv := os.Getenv("ETHERSCAN_ENDPOINT")
	keyEnv := os.Getenv("ETHERSCAN_API_KEY")
	if endpointEnv != "" {
		fmt.Printf("   ETHERSCAN_ENDPOINT=%s\n", endpointEnv)
	} else {
		fmt.Println("   ETHERSCAN_ENDPOINT=(not set)")
	}
	if keyEnv != "" {
		fmt.Printf("   ETHERSCAN_API_KEY=%s\n", maskAPIKey(keyEnv))
	} else {
		fmt.Println("   ETHERSCAN_API_KEY=(not set)")
	}
	fmt.Println()

	// 3. Local project config
	fmt.Println("3. Local project config (evmscan.toml or es.toml)")
	projectConfig, configPath, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("   (not found)")
		} else {
			fmt.Printf("   Error: %v\n", err)
		}
	} else {
		fmt.Printf("   Loaded from: %s\n", configPath)
		if projectConfig.Endpoint != "" {
			fmt.Printf("   endpoint: %s\n", projectConfig.Endpoint)
		}
		if projectConfig.Network != "" {
			fmt.Printf("   network: %s\n", projectConfig.Network)
		}
	}
	fmt.Println()

	// 4. Global config
	fmt.Println("4. Global config (~/.evmscan/config.yaml)")
	globalPath := filepath.Join(credentialsDir(), "config.yaml")
	globalData, err := os.ReadFile(globalPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("   (not found)")
		} else {
			fmt.Printf("   Error: %v\n", err)
		}
	} else {
		var globalConfig GlobalConfig
		if err := yaml.Unmarshal(globalData, &globalConfig); err == nil {
			if globalConfig.Endpoint != "" {
				fmt.Printf("   endpoint: %s\n", globalConfig.Endpoint)
			}
		}
	}
	fmt.Println()

	// 5. Credentials
	fmt.Println("5. Credentials (~/.evmscan/credentials)")
	creds, err := loadCredentials()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("   (not found)")
		} else {
			fmt.Printf("   Error: %v\n", err)
		}
	} else {
		if len(creds.Endpoints) == 0 {
			fmt.Println("   (no credentials stored)")
		} else {
			for endpointURL, cred := range creds.Endpoints {
				fmt.Printf("   %s: %s\n", endpointURL, maskAPIKey(cred.APIKey))
			}
		}
	}
	fmt.Println()

	// Effective config
	fmt.Println("Effective configuration:")
	fmt.Printf("   Endpoint: %s\n", getEndpoint())
	if key := getAPIKey(); key != "" {
		fmt.Printf("   API Key:  %s\n", maskAPIKey(key))
	} else {
		fmt.Println("   API Key:  (not set)")
	}

	return nil
}

// loadProjectConfig loads the project config from the first matching config
// file. Returns the config, the path it was loaded from, and an error.
func loadProjectConfig() (*ProjectConfig, string, error) {
	// If --config flag was provided, use that directly
	if cfgFile != "" {
		config, err := loadProjectConfigFromPath(cfgFile)
		if err != nil {
			return nil, cfgFile, err
		}
		return config, cfgFile, nil
	}

	// Search for config files in order
	for _, name := range projectConfigFiles {
		if _, err := os.Stat(name); err == nil {
			config, err := loadProjectConfigFromPath(name)
			if err != nil {
				return nil, name, err
			}
			return config, name, nil
		}
	}
	return nil, "", os.ErrNotExist
}

// loadProjectConfigFromPath loads a project config from a specific path
func loadProjectConfigFromPath(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config ProjectConfig
	if _, err := toml.Decode(string(data), &config); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	return &config, nil
}

// loadProjectConfigSilent loads the project config without returning errors
// for missing files. Returns nil if the file doesn't exist, but reports
// parse failures.
func loadProjectConfigSilent() *ProjectConfig {
	config, _, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		fmt.Fprintf(os.Stderr, "Warning: failed to load project config: %v\n", err)
		return nil
	}
	return config
}
