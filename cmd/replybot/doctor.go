package main

import (
	"fmt"
	"net"
	"os"

	"replybot/internal/config"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your ReplyBot setup",
		Long: `Verifies that ReplyBot's configuration, credentials, and listen address
are correctly set up. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("ReplyBot Doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config loads and validates
			cfg, err := config.Load()
			if err != nil {
				printFail("Configuration", err.Error())
				failed++
				fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
				fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
				fmt.Printf("\nPlease fix the failed checks before running ReplyBot.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			printPass("Configuration", "valid")
			passed++

			// 2. Channel access token
			if cfg.Line.AccessToken == "" {
				printWarn("Access token", "CHANNEL_ACCESS_TOKEN not set, replies cannot be sent")
				warned++
			} else {
				printPass("Access token", "configured")
				passed++
			}

			// 3. Signature validation
			switch {
			case !cfg.Line.ValidateSignature:
				printWarn("Signature check", "disabled, webhook accepts unsigned requests")
				warned++
			case cfg.Line.ChannelSecret == "":
				printWarn("Signature check", "enabled but CHANNEL_SECRET not set, requests accepted unsigned")
				warned++
			default:
				printPass("Signature check", "enabled")
				passed++
			}

			// 4. Completion backend
			switch {
			case cfg.Completion.OpenRouterAPIKey != "":
				printPass("Completion", "openrouter ("+orModel(cfg)+")")
				passed++
			case cfg.Completion.AnthropicAPIKey != "":
				printPass("Completion", "anthropic ("+cfg.Completion.AnthropicModel+")")
				passed++
			default:
				printWarn("Completion", "no API key configured, keyword replies only")
				warned++
			}

			// 5. Web search
			if cfg.Search.Enabled {
				printPass("Web search", fmt.Sprintf("enabled (up to %d results)", cfg.Search.MaxResults))
			} else {
				printPass("Web search", "disabled")
			}
			passed++

			// 6. Keyword rules
			if cfg.Rules.File != "" {
				if _, err := os.Stat(cfg.Rules.File); err != nil {
					printFail("Rules file", fmt.Sprintf("not found: %s", cfg.Rules.File))
					failed++
				} else {
					printPass("Rules file", fmt.Sprintf("%s (%d rules)", cfg.Rules.File, len(cfg.Rules.Rules)))
					passed++
				}
			} else {
				printPass("Rules", fmt.Sprintf("%d built-in rules", len(cfg.Rules.Rules)))
				passed++
			}

			// 7. Listen address
			if err := checkAddr(cfg.Addr); err != nil {
				printWarn("Listen address", fmt.Sprintf("%s may be in use: %v", cfg.Addr, err))
				warned++
			} else {
				printPass("Listen address", cfg.Addr+" available")
				passed++
			}

			// Summary
			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before running ReplyBot.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nReplyBot should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed! ReplyBot is ready to run.\n")
			}
			return nil
		},
	}
}

func orModel(cfg *config.Config) string {
	if cfg.Completion.OpenRouterModel != "" {
		return cfg.Completion.OpenRouterModel
	}
	return "default model"
}

func checkAddr(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
