package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/kdnn"
	"github.com/hupe1980/kdnn/session"
	"github.com/spf13/cobra"
)

const interactiveHelp = `commands:
  <x> <y> | at <x> <y>   select a position and query it
  mode knn|radius        switch the query mode
  k <n>                  set the neighbour count
  r <radius>             set the search radius
  labels [label ...]     restrict results to labels, none to clear
  reset                  restore mode, k, radius and labels
  state                  show the current state
  help                   show this help
  quit                   leave
`

// errQuit ends the interactive loop.
var errQuit = errors.New("quit")

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Explore the point set from a prompt",
		Long: `Explore the point set from a prompt. Every command re-runs the active
query at the selected position. Positions outside the data bounds padded
by 5% are ignored.

` + interactiveHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			e, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer e.Close(ctx)

			mode, err := session.ParseMode(a.cfg.Query.Mode)
			if err != nil {
				return err
			}

			opts := []session.Option{
				session.WithMode(mode),
				session.WithK(a.cfg.Query.K),
				session.WithRadius(a.cfg.Query.Radius),
				session.WithLogger(a.logger),
				session.WithResourceController(e.controller),
			}
			if a.cfg.Query.CacheSize > 0 {
				opts = append(opts, session.WithCache(a.cfg.Query.CacheSize, 0))
			}

			s, err := session.New(e.idx, opts...)
			if err != nil {
				return err
			}

			return repl(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func repl(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	if view, ok := s.View(); ok {
		fmt.Fprintf(out, "view %v - %v, type help for commands\n", view.Min, view.Max)
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		res, show, err := dispatch(ctx, s, fields, out)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, kdnn.ErrInvalidArgument), errors.Is(err, errUsage):
			fmt.Fprintf(out, "error: %v\n", err)
		case err != nil:
			return err
		case show:
			printResult(out, res)
		}
	}
}

// errUsage marks malformed commands; the loop reports them and continues.
var errUsage = errors.New("usage")

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

func dispatch(ctx context.Context, s *session.Session, fields []string, out io.Writer) (session.Result, bool, error) {
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return session.Result{}, false, errQuit

	case "help", "?":
		fmt.Fprint(out, interactiveHelp)
		return session.Result{}, false, nil

	case "state":
		printState(out, s.State())
		return session.Result{}, false, nil

	case "at":
		if len(args) != 2 {
			return session.Result{}, false, usage("at <x> <y>")
		}
		return move(ctx, s, args[0], args[1])

	case "mode":
		if len(args) != 1 {
			return session.Result{}, false, usage("mode knn|radius")
		}
		m, err := session.ParseMode(args[0])
		if err != nil {
			return session.Result{}, false, err
		}
		res, err := s.SetMode(ctx, m)
		return res, true, err

	case "k":
		if len(args) != 1 {
			return session.Result{}, false, usage("k <n>")
		}
		k, err := strconv.Atoi(args[0])
		if err != nil {
			return session.Result{}, false, usage("k: %v", err)
		}
		res, err := s.SetK(ctx, k)
		return res, true, err

	case "r", "radius":
		if len(args) != 1 {
			return session.Result{}, false, usage("r <radius>")
		}
		r, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return session.Result{}, false, usage("r: %v", err)
		}
		res, err := s.SetRadius(ctx, r)
		return res, true, err

	case "labels":
		labels := make([]uint32, len(args))
		for i, arg := range args {
			l, err := strconv.ParseUint(arg, 10, 32)
			if err != nil {
				return session.Result{}, false, usage("labels: %v", err)
			}
			labels[i] = uint32(l)
		}
		res, err := s.SetLabels(ctx, labels...)
		return res, true, err

	case "reset":
		res, err := s.Reset(ctx)
		return res, true, err

	default:
		if len(fields) == 2 {
			return move(ctx, s, fields[0], fields[1])
		}
		return session.Result{}, false, usage("unknown command %q", fields[0])
	}
}

func move(ctx context.Context, s *session.Session, xs, ys string) (session.Result, bool, error) {
	q, err := parseCoord(xs, ys)
	if err != nil {
		return session.Result{}, false, usage("%v", err)
	}
	res, err := s.MoveTo(ctx, q)
	return res, true, err
}

func printState(out io.Writer, st session.State) {
	fmt.Fprintf(out, "mode=%s k=%d radius=%g", st.Mode, st.K, st.Radius)
	if len(st.Labels) > 0 {
		fmt.Fprintf(out, " labels=%v", st.Labels)
	}
	if st.HasPosition {
		fmt.Fprintf(out, " at %v", st.Position)
	}
	fmt.Fprintln(out)
}

func printResult(out io.Writer, res session.Result) {
	printState(out, res.State)

	switch {
	case !res.State.HasPosition:
		fmt.Fprintln(out, "no position selected")
		return
	case !res.InView:
		fmt.Fprintln(out, "position is outside the view")
		return
	}

	fmt.Fprintf(out, "%d neighbours\n", len(res.Neighbors))
	for i, n := range res.Neighbors {
		p := res.Points[i]
		fmt.Fprintf(out, "  %6d  (%g, %g)  label=%d  d=%.6f\n", n.Index, p.X, p.Y, p.Label, n.Distance)
	}
}
