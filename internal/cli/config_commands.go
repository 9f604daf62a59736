package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/whcollect/whcollect/internal/api"
	"github.com/whcollect/whcollect/internal/config"
	whhttp "github.com/whcollect/whcollect/internal/http"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage whcollect configuration",
		Long: `Configuration management commands for whcollect.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test API connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for whcollect.

The configuration will be saved to ~/.config/whcollect/config and the
API key to a separate token file.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			configPath, err := config.DefaultFilePath()
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}

			if !force {
				if _, err := os.Stat(configPath); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", configPath)
					fmt.Println("Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Println("Wallhaven Configuration Setup")
			fmt.Println("=============================")
			fmt.Println()

			reader := bufio.NewReader(os.Stdin)

			fmt.Print("API Key (Enter to skip, public collections need none): ")
			keyInput, _ := reader.ReadString('\n')
			keyInput = strings.TrimSpace(keyInput)

			fmt.Printf("API Base URL [%s]: ", config.DefaultAPIBaseURL)
			urlInput, _ := reader.ReadString('\n')
			urlInput = strings.TrimSpace(urlInput)
			if urlInput == "" {
				urlInput = config.DefaultAPIBaseURL
			}

			fmt.Print("Default download directory (Enter for current directory at run time): ")
			destInput, _ := reader.ReadString('\n')
			destInput = strings.TrimSpace(destInput)

			fmt.Printf("Download workers [%d]: ", config.DefaultWorkers)
			workersInput, _ := reader.ReadString('\n')
			workersInput = strings.TrimSpace(workersInput)
			workerCount := config.DefaultWorkers
			if workersInput != "" {
				if v, err := strconv.Atoi(workersInput); err == nil && v > 0 {
					workerCount = v
				}
			}

			fc := &config.FileConfig{
				APIURL: urlInput,
				Download: config.DownloadSection{
					Destination: destInput,
					Workers:     workerCount,
				},
			}

			// The API key goes into a separate token file, not the config.
			if keyInput != "" {
				tokenPath, err := config.DefaultTokenPath()
				if err != nil {
					return fmt.Errorf("failed to resolve token path: %w", err)
				}
				if err := config.WriteTokenFile(tokenPath, keyInput); err != nil {
					return fmt.Errorf("failed to save API token file: %w", err)
				}
				log.Info().Str("path", tokenPath).Msg("API token saved")
				fmt.Printf("✓ API token saved to: %s\n", tokenPath)
			}

			if err := config.SaveFile(configPath, fc); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			log.Info().Str("path", configPath).Msg("Configuration saved")

			fmt.Printf("✓ Configuration saved to: %s\n", configPath)
			fmt.Println()
			fmt.Println("Test your configuration with: whcollect config test")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/whcollect/config)
  2. Token file (~/.config/whcollect/token)
  3. Environment variable (WALLHAVEN_API_KEY)
  4. Command-line flags (--api-key, --api-url)

Priority: flags > token file > config file > environment`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := cfgFile
			if configPath == "" {
				var err error
				configPath, err = config.DefaultFilePath()
				if err != nil {
					return fmt.Errorf("failed to resolve config path: %w", err)
				}
			}

			cfg := config.Default()
			if fc, err := config.LoadFile(configPath); err == nil {
				fc.Apply(cfg)
			}
			if apiBaseURL != "" {
				cfg.APIBaseURL = apiBaseURL
			}
			key, source := config.ResolveAPIKeySource(apiKey)
			if key == "" && cfg.APIKey != "" {
				key, source = cfg.APIKey, "config-file"
			}

			fmt.Println("Current Configuration")
			fmt.Println("=====================")
			fmt.Println()

			fmt.Println("API Settings:")
			fmt.Printf("  API Base URL: %s\n", cfg.APIBaseURL)
			if key != "" {
				// Never print the key itself.
				fmt.Printf("  API Key:      <set (%d chars, from %s)>\n", len(key), source)
			} else {
				fmt.Println("  API Key:      <not set>")
			}
			fmt.Printf("  Key In Query: %t\n", cfg.KeyInQuery)
			fmt.Println()

			fmt.Println("Download Settings:")
			if cfg.SaveDir != "" {
				fmt.Printf("  Destination: %s\n", cfg.SaveDir)
			} else {
				fmt.Println("  Destination: <current directory>")
			}
			fmt.Printf("  Flat:        %t\n", cfg.Flat)
			fmt.Printf("  Workers:     %d\n", cfg.Workers)
			fmt.Println()

			fmt.Printf("Configuration file: %s\n", configPath)
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				fmt.Println("  (file does not exist - using defaults)")
			}

			return nil
		},
	}

	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test API connection",
		Long: `Test the API connection with current configuration.

Fetches the collection index of a wallhaven user to verify the API key
and network connectivity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			fmt.Println("Testing API Connection")
			fmt.Println("======================")
			fmt.Println()

			cfg := config.Default()
			configPath := cfgFile
			if configPath == "" {
				configPath, _ = config.DefaultFilePath()
			}
			if configPath != "" {
				if fc, err := config.LoadFile(configPath); err == nil {
					fc.Apply(cfg)
				}
			}
			if apiBaseURL != "" {
				cfg.APIBaseURL = apiBaseURL
			}
			if key := config.ResolveAPIKey(apiKey); key != "" {
				cfg.APIKey = key
			}

			if username == "" {
				return fmt.Errorf("--username is required (any wallhaven user with public collections works)")
			}

			fmt.Printf("API URL: %s\n", cfg.APIBaseURL)
			fmt.Println("Testing connection...")
			fmt.Println()

			httpClient := whhttp.NewPooledClient(cfg.RequestTimeout)
			defer httpClient.CloseIdleConnections()
			apiClient := api.NewClient(httpClient, cfg.APIBaseURL, cfg.APIKey, cfg.KeyInQuery)

			ctx, cancel := context.WithTimeout(GetContext(), 10*time.Second)
			defer cancel()

			entries, err := apiClient.CollectionIndex(ctx, username)
			if err != nil {
				log.Error().Err(err).Msg("Connection test failed")
				fmt.Println("✗ Connection FAILED")
				fmt.Printf("  Error: %v\n", err)
				return fmt.Errorf("connection test failed")
			}

			log.Info().Msg("Connection test successful")

			fmt.Println("✓ Connection SUCCESSFUL")
			fmt.Println()
			fmt.Printf("Collections visible for %s: %d\n", username, len(entries))
			for _, e := range entries {
				fmt.Printf("  %s (id %s)\n", e.Label, e.ID.String())
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Wallhaven user whose collection index to fetch")

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := cfgFile
			if configPath == "" {
				var err error
				configPath, err = config.DefaultFilePath()
				if err != nil {
					return fmt.Errorf("failed to resolve config path: %w", err)
				}
				fmt.Println("Default configuration path:")
			} else {
				fmt.Println("Configuration path (from --config flag):")
			}

			fmt.Printf("  %s\n", configPath)
			fmt.Println()

			if fileInfo, err := os.Stat(configPath); err == nil {
				fmt.Println("Status: ✓ File exists")
				fmt.Printf("Size:   %d bytes\n", fileInfo.Size())
				fmt.Printf("Modified: %s\n", fileInfo.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Println("Status: File does not exist")
				fmt.Println()
				fmt.Println("Create a configuration file with: whcollect config init")
			}

			return nil
		},
	}

	return cmd
}
