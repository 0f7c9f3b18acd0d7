package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"templint/internal/config"
	"templint/internal/diag"
	"templint/internal/diagfmt"
	"templint/internal/lint"
	"templint/internal/ui"
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] <template-dir|template-info.json>",
	Short: "Validate a template directory",
	Long:  `Run every validation rule against a template directory: manifest structure, referenced files, variable definitions and the references to them`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().String("format", "pretty", "output format (pretty|json|short|msgpack)")
	lintCmd.Flags().Int("jobs", 0, "max parallel rule groups (0=auto)")
	lintCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	lintCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	lintCmd.Flags().Bool("with-notes", false, "include related locations in output")
	lintCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	lintCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	lintCmd.Flags().Bool("ui", false, "show interactive progress (requires a terminal)")
}

func runLint(cmd *cobra.Command, args []string) error {
	target := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	useUI, err := cmd.Flags().GetBool("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadConfigFor(target)
	if err != nil {
		return err
	}
	if jobs == 0 {
		jobs = cfg.Lint.Jobs
	}
	warningsAsErrors = warningsAsErrors || cfg.Lint.WarningsAsErrors

	linter := lint.New()
	linter.Jobs = jobs
	linter.MaxDiagnostics = maxDiagnostics
	linter.MaxCSVSize = cfg.Lint.MaxCSVSizeKB * 1024

	result, err := runWithOptionalUI(cmd, linter, target, useUI && format == "pretty")
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	if len(cfg.Lint.DisabledCodes) > 0 {
		disabled := make(map[string]bool, len(cfg.Lint.DisabledCodes))
		for _, id := range cfg.Lint.DisabledCodes {
			disabled[id] = true
		}
		result.Diagnostics.Filter(func(d *diag.Diagnostic) bool {
			return !disabled[d.Code.ID()]
		})
	}
	if noWarnings {
		result.Diagnostics.Filter(func(d *diag.Diagnostic) bool {
			return d.Severity != diag.SevWarning
		})
	}
	if warningsAsErrors {
		result.Diagnostics.Transform(func(d *diag.Diagnostic) *diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	switch format {
	case "pretty":
		diagfmt.Pretty(os.Stdout, result.Diagnostics, result.Files, diagfmt.PrettyOpts{
			Color:     useColor,
			PathMode:  pathMode,
			ShowNotes: withNotes,
			ShowFixes: suggest,
		})
	case "short":
		diagfmt.Short(os.Stdout, result.Diagnostics, result.Files, withNotes)
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     suggest,
		}
		if err := diagfmt.JSON(os.Stdout, result.Diagnostics, result.Files, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "msgpack":
		msgpackOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     suggest,
		}
		if err := diagfmt.MsgPack(os.Stdout, result.Diagnostics, result.Files, msgpackOpts); err != nil {
			return fmt.Errorf("failed to encode diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if showTimings {
		fmt.Fprint(os.Stderr, result.Timing.Summary())
	}

	if result.Diagnostics.HasErrors() {
		// Suppress cobra usage output on diagnostic errors.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

// loadConfigFor discovers templint.toml starting from the lint target.
func loadConfigFor(target string) (config.Config, error) {
	startDir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		startDir = filepath.Dir(target)
	}
	manifest, ok, err := config.Load(startDir)
	if err != nil {
		return config.Config{}, err
	}
	if !ok {
		return config.Config{}, nil
	}
	return manifest.Config, nil
}

// runWithOptionalUI runs the linter, showing a Bubble Tea progress display
// when requested and stdout is a terminal.
func runWithOptionalUI(cmd *cobra.Command, linter *lint.Linter, target string, wantUI bool) (*lint.Result, error) {
	if !wantUI || !isTerminal(os.Stdout) {
		return linter.Run(cmd.Context(), target)
	}

	events := make(chan ui.Event, 16)
	linter.Progress = func(group string, completed, total int) {
		events <- ui.Event{Group: group, Status: ui.StatusDone}
	}

	model := ui.NewProgressModel("linting "+target, lint.GroupNames(), events)
	prog := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		_, _ = prog.Run()
	}()

	result, err := linter.Run(cmd.Context(), target)
	close(events)
	<-uiDone
	return result, err
}
