package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"replybot/internal/config"
	"replybot/internal/line"
	"replybot/internal/reply"
	"replybot/internal/server"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	version = "0.1.0"
	logger  *slog.Logger
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "replybot",
		Short: "ReplyBot: webhook-driven auto-reply bot for LINE",
		Long:  "ReplyBot answers LINE messages with keyword rules, AI completions, and web search.",
	}

	root.AddCommand(serveCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(daemonCmd())
	root.AddCommand(initCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		Long:  "Starts the HTTP server that receives platform webhooks and replies to messages. Press Ctrl+C to stop.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	replier := reply.Build(cfg, logger)

	if cfg.Line.AccessToken == "" {
		logger.Warn("no channel access token configured, replies will fail to send")
	}
	sender := line.NewClient(line.ClientConfig{
		AccessToken: cfg.Line.AccessToken,
		APIBase:     cfg.Line.APIBase,
		Logger:      logger,
	})

	srv := server.New(server.Config{
		Addr:              cfg.Addr,
		ChannelSecret:     cfg.Line.ChannelSecret,
		ValidateSignature: cfg.Line.ValidateSignature,
		Replier:           replier,
		Sender:            sender,
		MetricsEnabled:    cfg.Metrics.Enabled,
		Logger:            logger,
	})

	logger.Info("replybot starting", "version", version, "addr", cfg.Addr, "strategy", replier.Name())
	return srv.Start(ctx)
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the reply strategy locally (no webhook)",
		Long:  "Runs the configured reply strategy against stdin. Useful for testing rules and prompts without a channel.",
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	replier := reply.Build(cfg, logger)

	fmt.Printf("ReplyBot chat (%s). Type your message and press Enter. Type /quit to exit.\n", replier.Name())
	fmt.Print("You> ")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Print("You> ")
			continue
		}
		if text == "/quit" || text == "/exit" || text == "/q" {
			return nil
		}

		answer, err := replier.Reply(ctx, text)
		if err != nil {
			fmt.Printf("error: %v\n", err)
		} else {
			fmt.Println(answer)
		}
		fmt.Print("You> ")
	}
	return scanner.Err()
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter rules file",
		Long:  "Writes the built-in keyword rules to a YAML file you can edit and point REPLYBOT_RULES_FILE at.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "rules.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			cfg := config.Defaults()
			starter := struct {
				DefaultReply string        `yaml:"default_reply"`
				Rules        []config.Rule `yaml:"rules"`
			}{
				DefaultReply: cfg.Rules.DefaultReply,
				Rules:        cfg.Rules.Rules,
			}
			data, err := yaml.Marshal(starter)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			logger.Info("rules file written", "path", path)
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(config.Sanitize(cfg), "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("replybot " + version)
		},
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
