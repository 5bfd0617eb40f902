package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vhavlena/cegis-go/finite"
	"github.com/vhavlena/cegis-go/internal/config"
	"github.com/vhavlena/cegis-go/problems"
	"github.com/vhavlena/cegis-go/smt"
	"github.com/vhavlena/cegis-go/term"
	"github.com/vhavlena/cegis-go/z3"
)

// ErrUnexpected is returned when a problem ends with a status other than the
// one it declares.
var ErrUnexpected = errors.New("unexpected status")

type report struct {
	problem problems.Problem
	outcome smt.Outcome
	skipped string
	err     error
}

func (r report) ok() bool {
	return r.err == nil && (r.skipped != "" || r.outcome.Status == r.problem.Expect)
}

func newBackend(name string, m *term.Manager) (smt.Backend, error) {
	switch name {
	case "finite":
		return finite.New(m), nil
	case "z3":
		b, err := z3.New(m)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, errors.Errorf("unknown backend %q", name)
}

// solve runs one problem on a fresh term manager, so problems never share
// state and may run concurrently.
func solve(ctx context.Context, cfg config.Config, p problems.Problem, log *slog.Logger) report {
	r := report{problem: p}
	if cfg.Backend == "finite" && !p.Finite {
		r.skipped = "needs the z3 backend"
		return r
	}
	m := term.NewManager()
	b, err := newBackend(cfg.Backend, m)
	if err != nil {
		r.err = err
		return r
	}
	defer b.Close()

	plog := log.With(slog.String("problem", p.Name))
	s := smt.NewSolver(m, b, cfg.Options(p.Fairness, plog))
	if err := s.Assert(p.Build(m, s.Attributes())); err != nil {
		r.err = err
		return r
	}
	r.outcome, r.err = s.Solve(ctx)
	return r
}

func selectProblems(names []string) ([]problems.Problem, error) {
	if len(names) == 0 {
		return problems.All(), nil
	}
	out := make([]problems.Problem, 0, len(names))
	for _, n := range names {
		p, ok := problems.Lookup(n)
		if !ok {
			return nil, errors.Errorf("unknown problem %q", n)
		}
		out = append(out, p)
	}
	return out, nil
}

func newRunCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [problem...]",
		Short: "Solve problems, all of them when none is named",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.settings(cmd)
			if err != nil {
				return err
			}
			log, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ps, err := selectProblems(args)
			if err != nil {
				return err
			}

			reports := make([]report, len(ps))
			var g errgroup.Group
			g.SetLimit(max(f.jobs, 1))
			for i, p := range ps {
				i, p := i, p // per-iteration copies (go 1.21 loop semantics)
				g.Go(func() error {
					reports[i] = solve(cmd.Context(), cfg, p, log)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color := f.colorize(out)
			failed := 0
			for _, r := range reports {
				printReport(out, r, color)
				if !r.ok() {
					failed++
				}
			}
			if failed > 0 {
				return errors.Wrapf(ErrUnexpected, "%d of %d problems", failed, len(ps))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "problems solved concurrently")
	return cmd
}

const (
	green = "\x1b[32m"
	red   = "\x1b[31m"
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

func paint(s, code string, color bool) string {
	if !color {
		return s
	}
	return code + s + reset
}

func printReport(w io.Writer, r report, color bool) {
	name := r.problem.Name
	switch {
	case r.skipped != "":
		fmt.Fprintf(w, "%s: %s\n", name, paint("skipped, "+r.skipped, gray, color))
	case r.err != nil:
		fmt.Fprintf(w, "%s: %s\n", name, paint("error: "+r.err.Error(), red, color))
	default:
		o := r.outcome
		status := o.Status.String()
		if r.ok() {
			status = paint(status, green, color)
		} else {
			status = paint(status+" (expected "+r.problem.Expect.String()+")", red, color)
		}
		fmt.Fprintf(w, "%s: %s rounds=%d lemmas=%d refinements=%d", name, status, o.Rounds, o.Lemmas, o.Refinements)
		if len(o.Solution) > 0 {
			vals := make([]string, len(o.Solution))
			for i, b := range o.Solution {
				vals[i] = b.String()
			}
			fmt.Fprintf(w, " solution: %s", strings.Join(vals, ", "))
		}
		fmt.Fprintln(w)
	}
}
