package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kube-rca/incident-chat/internal/config"
	"github.com/kube-rca/incident-chat/internal/model"
	"github.com/kube-rca/incident-chat/internal/service"
)

var (
	botPrefix  = color.New(color.FgHiCyan, color.Bold).Sprint("bot ›")
	userPrefix = color.New(color.FgHiGreen, color.Bold).Sprint("you ›")
	stepLabel  = color.New(color.FgHiBlack).SprintFunc()
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session in the terminal",
	Long:  "Start a single local chat session. Type a menu number or a question; Ctrl-D exits.",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// stdout belongs to the conversation; only warnings go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if cfg.Log.File != "" {
		var closeLog func() error
		logger, closeLog = config.SetupLogger(cfg.Log)
		defer func() { _ = closeLog() }()
	}

	bot, err := newChatbot(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	session := bot.NewSession("terminal")
	defer session.Close()

	return chatLoop(cmd, session, cmd.InOrStdin(), cmd.OutOrStdout())
}

func chatLoop(cmd *cobra.Command, session *service.Session, in io.Reader, out io.Writer) error {
	for _, entry := range session.Transcript() {
		printEntry(out, entry.Role, entry.Content, session.Step())
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, userPrefix+" ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply := session.Submit(cmd.Context(), line)
		printEntry(out, model.RoleAssistant, reply.Text, reply.Step)
	}
}

func printEntry(out io.Writer, role model.Role, content string, step model.Step) {
	if role == model.RoleUser {
		fmt.Fprintf(out, "%s %s\n", userPrefix, content)
		return
	}
	fmt.Fprintf(out, "%s %s\n%s\n\n", botPrefix, content, stepLabel("["+string(step)+"]"))
}
