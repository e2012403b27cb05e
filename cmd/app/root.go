package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/meeting-notes/internal/domain/summarizer"
	"github.com/yanqian/meeting-notes/internal/infra/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	serveCmd := newServeCommand()
	rootCmd := &cobra.Command{
		Use:           "meeting-notes",
		Short:         "Summarize meeting transcripts and email the result",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFlag != "" {
				return os.Setenv("CONFIG_PATH", configFlag)
			}
			return nil
		},
		RunE: serveCmd.RunE,
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newSummarizeCommand(initializeSummarizer))
	rootCmd.AddCommand(newStatusCommand(config.Load))
	return rootCmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp()
			if err != nil {
				return fmt.Errorf("failed to wire application: %w", err)
			}
			return app.Run(cmd.Context())
		},
	}
}

func newSummarizeCommand(build func() (summarizer.Service, error)) *cobra.Command {
	var (
		transcriptPath string
		prompt         string
	)
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a transcript file (or - for stdin) and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript, err := readTranscript(cmd.InOrStdin(), transcriptPath)
			if err != nil {
				return err
			}
			svc, err := build()
			if err != nil {
				return fmt.Errorf("failed to wire summarizer: %w", err)
			}
			resp, err := svc.Summarize(cmd.Context(), summarizer.Request{Transcript: transcript, Prompt: prompt})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Summary)
			fmt.Fprintf(cmd.ErrOrStderr(), "model: %s\n", resp.Model)
			return nil
		},
	}
	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "-", "Transcript file, - reads stdin")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "Summarize the meeting with decisions and action items.", "Instruction for the summary")
	return cmd
}

func readTranscript(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("transcript is empty")
	}
	return string(data), nil
}

func newStatusCommand(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which integrations are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(cfg))
			return nil
		},
	}
}

func renderStatus(cfg *config.Config) string {
	llmState, llmDetail := "heuristic", summarizer.FallbackModel
	if cfg.LLM.Enabled() {
		llmState, llmDetail = "configured", cfg.LLM.Provider+" / "+cfg.LLM.Model
	}

	smtpState := "ready"
	smtpDetail := fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	if missing := cfg.SMTP.MissingSettings(); len(missing) > 0 {
		smtpState, smtpDetail = "not configured", "missing "+strings.Join(missing, ", ")
	}

	httpDetail := "no static files"
	if cfg.HTTP.StaticDir != "" {
		httpDetail = "static " + cfg.HTTP.StaticDir
	}

	rows := [][]string{
		{"HTTP", cfg.HTTP.Address, httpDetail},
		{"LLM", llmState, llmDetail},
		{"SMTP", smtpState, smtpDetail},
	}
	return renderTable([]string{"Component", "State", "Detail"}, rows)
}
