package main

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/speakeasy-api/contractcompat/compat"
	"github.com/speakeasy-api/contractcompat/pkg/config"
	"github.com/speakeasy-api/contractcompat/pkg/layout"
	"github.com/speakeasy-api/contractcompat/pkg/report"
	"github.com/speakeasy-api/contractcompat/pkg/schemafile"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

// setup loads the layered config and builds the logger for a command.
func (a *app) setup(flags *globalFlags) (*config.Config, compat.Logger, error) {
	bootLevel := flags.logLevel
	if bootLevel == "" {
		bootLevel = "warn"
	}
	loader := config.NewLoader(compat.NewLogger(compat.ParseLogLevel(bootLevel), a.stderr, "")).WithDirs(a.home, a.dir)
	cfg, err := loader.Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	return cfg, compat.NewLogger(compat.ParseLogLevel(cfg.Log.Level), a.stderr, cfg.Log.TimeFormat), nil
}

func checkCmd(a *app, flags *globalFlags) *cobra.Command {
	var (
		oldPath, newPath string
		format, color    string
		parallel         bool
		noHints          bool
		maxDepth         int
		contract         string
	)

	cmd := &cobra.Command{
		Use:   "check --old FILE --new FILE",
		Short: "Validate an upgrade from one schema file to another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := a.setup(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				cfg.Report.Format = format
			}
			if cmd.Flags().Changed("color") {
				cfg.Report.Color = color
			}
			if cmd.Flags().Changed("max-depth") {
				cfg.Validation.MaxDepth = &maxDepth
			}
			if parallel {
				cfg.Validation.Parallel = &parallel
			}
			if noHints {
				hints := false
				cfg.Report.Hints = &hints
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			before, err := schemafile.LoadFile(oldPath)
			if err != nil {
				return err
			}
			after, err := schemafile.LoadFile(newPath)
			if err != nil {
				return err
			}

			opts := cfg.Options()
			opts.Logger = log

			var result *compat.Result
			switch {
			case contract != "":
				result = compat.ValidateContract(contract, before, after, opts)
			case cfg.ParallelEnabled():
				if result, err = compat.ValidateParallel(cmd.Context(), before, after, opts); err != nil {
					return err
				}
			default:
				result = compat.Validate(before, after, opts)
			}

			f, err := report.ParseFormat(cfg.Report.Format)
			if err != nil {
				return err
			}
			err = report.Render(a.stdout, result, report.Options{
				Format:     f,
				Color:      a.useColor(cfg.Report.Color),
				Hints:      cfg.HintsEnabled(),
				TimeFormat: cfg.Report.TimeFormat,
			})
			if err != nil {
				return err
			}
			if !result.Allowed() {
				return &exitCodeError{code: exitRejected}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&oldPath, "old", "", "Schema file of the deployed version")
	cmd.Flags().StringVar(&newPath, "new", "", "Schema file of the candidate version")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Report format (text, json, yaml)")
	cmd.Flags().StringVar(&color, "color", config.ColorAuto, "Colour text output (auto, always, never)")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Validate contracts concurrently")
	cmd.Flags().BoolVar(&noHints, "no-hints", false, "Omit fix suggestions")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum nesting depth below a contract")
	cmd.Flags().StringVar(&contract, "contract", "", "Only validate the named contract")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}

func (a *app) useColor(mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return a.terminal(a.stdout)
}

func layoutCmd(a *app, flags *globalFlags) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "layout FILE",
		Short: "Print the storage layout of a schema file as an OpenAPI document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := a.setup(flags); err != nil {
				return err
			}
			snap, err := schemafile.LoadFile(args[0])
			if err != nil {
				return err
			}
			return layout.Write(cmd.Context(), a.stdout, snap, layout.Options{Title: title, Version: Version})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Document title")
	return cmd
}

func fingerprintCmd(a *app, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint FILE",
		Short: "Print the layout digest of every contract in a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := a.setup(flags); err != nil {
				return err
			}
			snap, err := schemafile.LoadFile(args[0])
			if err != nil {
				return err
			}

			fp := compat.NewFingerprinter()
			names := snap.Schema.Names()
			width := len("snapshot")
			for _, name := range names {
				width = max(width, runewidth.StringWidth(name))
			}
			for _, name := range names {
				fmt.Fprintf(a.stdout, "%s  %s\n", runewidth.FillRight(name, width), fp.FingerprintDeclaration(snap.Schema[name]))
			}
			fmt.Fprintf(a.stdout, "%s  %s\n", runewidth.FillRight("snapshot", width), fp.FingerprintSnapshot(snap))
			return nil
		},
	}
}

func initConfigCmd(a *app, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Create the user config file with defaults if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := flags.logLevel
			if level == "" {
				level = "info"
			}
			loader := config.NewLoader(compat.NewLogger(compat.ParseLogLevel(level), a.stderr, "")).WithDirs(a.home, a.dir)
			path, err := loader.EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, path)
			return nil
		},
	}
}
