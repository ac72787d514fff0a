package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"labrag/internal/config"
	"labrag/internal/logging"
	"labrag/internal/service"
	"labrag/internal/tui"
)

var (
	cfgFile  string
	question string
)

var rootCmd = &cobra.Command{
	Use:   "labrag [report.pdf]",
	Short: "Explain medical lab reports in plain language",
	Long: `labrag reads a text-based PDF lab report, finds the lab values it
recognizes, retrieves their reference ranges and asks a language model to
explain them in simple words.

Without --question it starts an interactive terminal UI. With --question the
report is interpreted once and the result is printed to stdout.

This app is for educational purposes only. Always consult a doctor for
medical decisions.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.config/labrag/config.yaml)",
	)
	rootCmd.Flags().StringVarP(
		&question, "question", "q", "", "ask one question and print the answer instead of starting the UI",
	)
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return fail(cmd, err)
	}

	oneShot := cmd.Flags().Changed("question")
	logOut, err := logWriter(cfg, oneShot)
	if err != nil {
		return fail(cmd, fmt.Errorf("open log file: %w", err))
	}
	defer logOut.Close()
	if err := logging.Init(logOut, cfg.Logging.Level); err != nil {
		return fail(cmd, fmt.Errorf("logging: %w", err))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := buildService(ctx, cfg)
	if err != nil {
		return fail(cmd, err)
	}

	if oneShot {
		if len(args) == 0 {
			return fail(cmd, errors.New("--question requires a report path"))
		}
		if err := interpretOnce(ctx, cmd.OutOrStdout(), svc, args[0], question); err != nil {
			return fail(cmd, err)
		}
		return nil
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	m := tui.New(ctx, svc, service.LoadDocument, path)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fail(cmd, err)
	}
	return nil
}

func loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if cfgFile == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgFile)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logWriter sends logs to stderr in one-shot mode. The TUI owns the terminal,
// so there logs go to the configured file or nowhere.
func logWriter(cfg *config.AppConfig, oneShot bool) (io.WriteCloser, error) {
	if oneShot && cfg.Logging.File == "" {
		return nopWriteCloser{os.Stderr}, nil
	}
	return logging.OpenFile(cfg.Logging.File)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func interpretOnce(ctx context.Context, w io.Writer, svc tui.ReportPort, path, q string) error {
	doc, err := service.LoadDocument(path)
	if err != nil {
		return err
	}
	res, err := svc.Interpret(ctx, service.Request{Document: doc, Question: q})
	if err != nil {
		return err
	}
	printResult(w, res)
	return nil
}

func printResult(w io.Writer, res *service.Result) {
	fmt.Fprintln(w, "Lab values:")
	fmt.Fprintln(w, indent(tui.RenderLabs(res.Labs)))
	if res.State() == service.StateAnswered {
		fmt.Fprintf(w, "\nQ: %s\n\nExplanation:\n%s\n", res.Question, res.Answer)
	}
	fmt.Fprintf(w, "\n%s\n", tui.Disclaimer)
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

func fail(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "labrag: %v\n", err)
	return err
}
