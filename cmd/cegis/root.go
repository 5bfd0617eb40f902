package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vhavlena/cegis-go/internal/config"
)

type flags struct {
	config    string
	backend   string
	fairness  string
	maxRounds int
	logLevel  string
	logFormat string
	jobs      int
	color     string
}

// settings resolves the configuration file and the flags that override it.
func (f *flags) settings(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return config.Config{}, err
		}
	}
	fs := cmd.Flags()
	if fs.Changed("backend") {
		cfg.Backend = f.backend
	}
	if fs.Changed("fairness") {
		cfg.Fairness = f.fairness
	}
	if fs.Changed("max-rounds") {
		cfg.MaxRounds = f.maxRounds
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	return cfg, cfg.Validate()
}

// colorize reports whether w should receive ANSI colours.
func (f *flags) colorize(w io.Writer) bool {
	switch f.color {
	case "always":
		return true
	case "never":
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	def := config.Default()
	root := &cobra.Command{
		Use:           "cegis",
		Short:         "Counterexample-guided synthesis over a small term language",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "YAML configuration file")
	pf.StringVar(&f.backend, "backend", def.Backend, "ground solver: finite or z3")
	pf.StringVar(&f.fairness, "fairness", def.Fairness, "candidate fairness: auto, none or uf-dt-size")
	pf.IntVar(&f.maxRounds, "max-rounds", def.MaxRounds, "round budget per problem, 0 for none")
	pf.StringVar(&f.logLevel, "log-level", def.Log.Level, "debug, info, warn or error")
	pf.StringVar(&f.logFormat, "log-format", def.Log.Format, "text or json")
	pf.StringVar(&f.color, "color", "auto", "auto, always or never")

	root.AddCommand(newListCommand(), newRunCommand(f))
	return root
}
