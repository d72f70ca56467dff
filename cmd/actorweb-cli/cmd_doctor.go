package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/actorweb/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, server health and readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor()
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor() error {
	fmt.Println("\nactorweb doctor")
	fmt.Println("===============")

	var results []checkResult

	cfgPath, _, cfgErr := loadConfigFile()
	if cfgErr != nil {
		results = append(results, checkResult{
			Name: "Config file", Passed: false,
			Detail: cfgPath,
			Hint:   "Run: actorweb init (optional; flags and env also work)",
		})
	} else {
		results = append(results, checkResult{
			Name: "Config file", Passed: true,
			Detail: fmt.Sprintf("found (%s)", cfgPath),
		})
	}

	// Same priority as every other command.
	resolveConfig()
	results = append(results, checkResult{Name: "Server URL", Passed: true, Detail: flagURL})

	var opts []client.Option
	if flagKey != "" {
		opts = append(opts, client.WithAPIKey(flagKey))
	}
	results = append(results, doctorCheckServer(client.New(flagURL, opts...))...)

	fmt.Println()
	allPassed := true
	for _, r := range results {
		mark := "✅"
		if !r.Passed {
			mark = "❌"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Printf("%s %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Printf("%s %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Printf("   Hint: %s\n", r.Hint)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("❌ Some checks failed.")
		return fmt.Errorf("doctor found issues")
	}
	fmt.Println("✅ All checks passed!")

	return nil
}

func doctorCheckServer(c *client.Client) []checkResult {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := c.Health(ctx)
	if err != nil {
		return []checkResult{{
			Name: "Server reachable", Passed: false,
			Hint: fmt.Sprintf("Is the actorweb server running?\n   Error: %v", err),
		}}
	}

	results := []checkResult{
		{Name: "Server reachable", Passed: true, Detail: fmt.Sprintf("v%s, up %.0fs", health.Version, health.UptimeSeconds)},
		{Name: "Catalog", Passed: health.Database != "disconnected", Detail: fmt.Sprintf("%s (database: %s)", health.Catalog, health.Database)},
		{Name: "Sessions", Passed: true, Detail: fmt.Sprintf("%d live, %d viewers", health.Sessions, health.Viewers)},
	}

	ready, err := c.Ready(ctx)
	if err != nil {
		return append(results, checkResult{
			Name: "Ready", Passed: false,
			Hint: fmt.Sprintf("Check the database and run: actorweb db migrate\n   Error: %v", err),
		})
	}

	results = append(results, checkResult{Name: "Ready", Passed: true, Detail: ready.Status})
	if p := ready.Pool; p != nil {
		results = append(results, checkResult{
			Name: "Database pool", Passed: true,
			Detail: fmt.Sprintf("%d connections (%d idle, %d in use)", p.Total, p.Idle, p.Acquired),
		})
	}

	return results
}
