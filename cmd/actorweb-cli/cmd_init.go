package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/actorweb/client"
)

func newInitCmd() *cobra.Command {
	var (
		initURL     string
		initAPIKey  string
		initProfile string
		skipCheck   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up actorweb CLI configuration",
		Long:  "Interactive setup that writes a profile to ~/.actorweb/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			nonInteractive := initURL != "" || initAPIKey != ""
			return runInit(initURL, initAPIKey, initProfile, nonInteractive, !skipCheck)
		},
	}

	cmd.Flags().StringVar(&initURL, "url", "", "Server URL (non-interactive mode)")
	cmd.Flags().StringVar(&initAPIKey, "api-key", "", "Proxy bearer token (non-interactive mode)")
	cmd.Flags().StringVar(&initProfile, "profile", "default", "Profile to write and activate")
	cmd.Flags().BoolVar(&skipCheck, "no-check", false, "Do not test the connection")
	return cmd
}

func runInit(url, apiKey, profile string, nonInteractive, check bool) error {
	if !nonInteractive {
		fmt.Println("\n  actorweb setup")
		fmt.Println("  ──────────────")
		fmt.Println()

		reader := bufio.NewReader(os.Stdin)

		fmt.Printf("  Server URL [%s]: ", defaultURL)
		line, _ := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			url = line
		}

		fmt.Print("  Proxy token (optional): ")
		keyLine, _ := reader.ReadString('\n')
		apiKey = strings.TrimSpace(keyLine)
	}

	if url == "" {
		url = defaultURL
	}

	if check {
		ver, err := testConnection(url, apiKey)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		fmt.Printf("Connected to %s (v%s)\n", url, ver)
	}

	cfgPath, err := writeConfig(profile, url, apiKey)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Config saved to %s\n", cfgPath)
	return nil
}

func testConnection(url, apiKey string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var opts []client.Option
	if apiKey != "" {
		opts = append(opts, client.WithAPIKey(apiKey))
	}

	health, err := client.New(url, opts...).Health(ctx)
	if err != nil {
		return "", err
	}
	if health.Version == "" {
		return "unknown", nil
	}
	return health.Version, nil
}

// writeConfig stores the profile and makes it active, keeping any other
// profiles already in the file.
func writeConfig(profile, url, apiKey string) (string, error) {
	cfgPath, existing, _ := loadConfigFile()
	if cfgPath == "" {
		var err error
		if cfgPath, err = configPath(); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
		return "", err
	}

	cfg := configFile{Profiles: map[string]configProfile{}}
	if existing != nil && existing.Profiles != nil {
		cfg.Profiles = existing.Profiles
	}
	cfg.Profiles[profile] = configProfile{URL: url, APIKey: apiKey}
	cfg.ActiveProfile = profile

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return "", err
	}

	return cfgPath, nil
}
