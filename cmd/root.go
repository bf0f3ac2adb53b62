package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kube-rca/incident-chat/internal/client"
	"github.com/kube-rca/incident-chat/internal/config"
	"github.com/kube-rca/incident-chat/internal/service"
)

// Set from main via Execute.
var (
	buildVersion = "dev"
	buildCommit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "incident-chat",
	Short: "Incident reporting chatbot with RCA assistance",
	Long: `incident-chat runs a menu-driven chatbot for reporting safety incidents,
looking them up by ID, asking for root-cause suggestions and browsing FAQs.

Run "incident-chat serve" for the HTTP API or "incident-chat chat" for a local session.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit string) {
	buildVersion = version
	buildCommit = commit
	rootCmd.Version = fmt.Sprintf("%s (%s)", buildVersion, buildCommit)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newChatbot builds the shared chatbot from configuration. The Slack notifier is attached only
// when both its token and channel are set.
func newChatbot(ctx context.Context, cfg config.Config, logger *slog.Logger) (*service.Chatbot, error) {
	faqs, err := service.DefaultFAQTable()
	if err != nil {
		return nil, fmt.Errorf("failed to load FAQ table: %w", err)
	}

	botCfg := service.ChatbotConfig{
		Assistant:       client.NewAssistantClient(ctx, cfg.Assistant, logger),
		FAQs:            faqs,
		Logger:          logger,
		DefaultAssignee: cfg.Chat.DefaultAssignee,
		TranscriptLimit: cfg.Chat.TranscriptLimit,
	}

	slack := client.NewSlackClient(cfg.Slack)
	if slack.IsConfigured() {
		botCfg.Notifier = slack
	} else {
		logger.Info("slack notifier disabled")
	}

	return service.NewChatbot(botCfg), nil
}
