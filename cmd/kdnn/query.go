package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/hupe1980/kdnn"
	"github.com/spf13/cobra"
)

// queryFlags are shared by the single and batch query commands.
type queryFlags struct {
	labels []uint
	json   bool
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().UintSliceVarP(&q.labels, "labels", "l", nil, "only return points with these labels")
	cmd.Flags().BoolVar(&q.json, "json", false, "print results as JSON")
}

func (q *queryFlags) options() ([]kdnn.QueryOption, error) {
	if len(q.labels) == 0 {
		return nil, nil
	}
	labels := make([]uint32, len(q.labels))
	for i, l := range q.labels {
		if uint64(l) > math.MaxUint32 {
			return nil, &kdnn.InvalidArgumentError{Name: "labels", Value: strconv.FormatUint(uint64(l), 10)}
		}
		labels[i] = uint32(l)
	}
	return []kdnn.QueryOption{kdnn.WithLabels(labels...)}, nil
}

func newKNearestCmd(a *app) *cobra.Command {
	var (
		qf queryFlags
		k  int
	)

	cmd := &cobra.Command{
		Use:   "knn <x> <y>",
		Short: "Print the k points nearest to (x, y)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseCoord(args[0], args[1])
			if err != nil {
				return err
			}
			qopts, err := qf.options()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("k") {
				k = a.cfg.Query.K
			}

			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close(cmd.Context())

			ns, err := e.idx.KNearest(q, k, qopts...)
			a.logger.WithK(k).LogQuery(cmd.Context(), "knn", q, len(ns), err)
			if err != nil {
				return err
			}
			return printNeighbors(cmd.OutOrStdout(), e.idx.PointSet(), q, ns, qf.json)
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 8, "number of neighbours")
	qf.register(cmd)

	return cmd
}

func newRadiusCmd(a *app) *cobra.Command {
	var (
		qf queryFlags
		r  float64
	)

	cmd := &cobra.Command{
		Use:   "radius <x> <y>",
		Short: "Print every point within distance r of (x, y)",
		Long: `Print every point within distance r of (x, y), nearest first.
Points exactly on the boundary are included.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseCoord(args[0], args[1])
			if err != nil {
				return err
			}
			qopts, err := qf.options()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("radius") {
				r = a.cfg.Query.Radius
			}

			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close(cmd.Context())

			ns, err := e.idx.Radius(q, r, qopts...)
			a.logger.WithRadius(r).LogQuery(cmd.Context(), "radius", q, len(ns), err)
			if err != nil {
				return err
			}
			kdnn.SortByDistance(ns)
			return printNeighbors(cmd.OutOrStdout(), e.idx.PointSet(), q, ns, qf.json)
		},
	}

	cmd.Flags().Float64VarP(&r, "radius", "r", 12, "search radius")
	qf.register(cmd)

	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		qf      queryFlags
		queries string
		mode    string
		k       int
		r       float64
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Answer one query per input line concurrently",
		Long: `Read query positions, one "x,y" or "x y" pair per line, from --queries or
stdin and answer them concurrently. Blank lines and lines starting with #
are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("mode") {
				mode = a.cfg.Query.Mode
			}
			if !flags.Changed("k") {
				k = a.cfg.Query.K
			}
			if !flags.Changed("radius") {
				r = a.cfg.Query.Radius
			}

			in := cmd.InOrStdin()
			if queries != "" && queries != "-" {
				f, err := os.Open(queries)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			qs, err := readQueries(in)
			if err != nil {
				return err
			}
			qopts, err := qf.options()
			if err != nil {
				return err
			}

			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close(cmd.Context())

			var results [][]kdnn.Neighbor
			switch mode {
			case "knn":
				results, err = e.idx.BatchKNearest(cmd.Context(), qs, k, qopts...)
			case "radius":
				results, err = e.idx.BatchRadius(cmd.Context(), qs, r, qopts...)
				for _, ns := range results {
					kdnn.SortByDistance(ns)
				}
			default:
				return fmt.Errorf("unknown mode %q", mode)
			}
			if err != nil {
				return err
			}
			a.logger.WithCount(len(qs)).Info("batch completed", "mode", mode)

			return printBatch(cmd.OutOrStdout(), e.idx.PointSet(), qs, results, qf.json)
		},
	}

	cmd.Flags().StringVarP(&queries, "queries", "q", "-", "query file, - for stdin")
	cmd.Flags().StringVarP(&mode, "mode", "m", "knn", "query mode (knn, radius)")
	cmd.Flags().IntVarP(&k, "k", "k", 8, "number of neighbours")
	cmd.Flags().Float64VarP(&r, "radius", "r", 12, "search radius")
	qf.register(cmd)

	return cmd
}

func readQueries(r io.Reader) ([]kdnn.Coord, error) {
	var qs []kdnn.Coord

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want 2 fields, got %d", line, len(fields))
		}
		q, err := parseCoord(fields[0], fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		qs = append(qs, q)
	}
	return qs, sc.Err()
}

type neighborJSON struct {
	Index    int          `json:"index"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Label    uint32       `json:"label"`
	Distance jsonDistance `json:"distance"`
}

// jsonDistance encodes distances beyond the float64 range as "+Inf".
type jsonDistance float64

func (d jsonDistance) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(d), 1) {
		return []byte(`"+Inf"`), nil
	}
	return json.Marshal(float64(d))
}

func (d *jsonDistance) UnmarshalJSON(data []byte) error {
	if string(data) == `"+Inf"` {
		*d = jsonDistance(math.Inf(1))
		return nil
	}
	return json.Unmarshal(data, (*float64)(d))
}

type queryJSON struct {
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Neighbors []neighborJSON `json:"neighbors"`
}

func toJSON(ps *kdnn.PointSet, q kdnn.Coord, ns []kdnn.Neighbor) (queryJSON, error) {
	out := queryJSON{X: q.X, Y: q.Y, Neighbors: make([]neighborJSON, len(ns))}
	for i, n := range ns {
		p, err := ps.Point(n.Index)
		if err != nil {
			return out, err
		}
		out.Neighbors[i] = neighborJSON{Index: n.Index, X: p.X, Y: p.Y, Label: p.Label, Distance: jsonDistance(n.Distance)}
	}
	return out, nil
}

func printNeighbors(w io.Writer, ps *kdnn.PointSet, q kdnn.Coord, ns []kdnn.Neighbor, asJSON bool) error {
	if asJSON {
		out, err := toJSON(ps, q, ns)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return writeTable(w, ps, ns)
}

func printBatch(w io.Writer, ps *kdnn.PointSet, qs []kdnn.Coord, results [][]kdnn.Neighbor, asJSON bool) error {
	if asJSON {
		out := make([]queryJSON, len(qs))
		for i, q := range qs {
			var err error
			if out[i], err = toJSON(ps, q, results[i]); err != nil {
				return err
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i, q := range qs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "# query %d at %v: %d neighbours\n", i, q, len(results[i]))
		if err := writeTable(w, ps, results[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, ps *kdnn.PointSet, ns []kdnn.Neighbor) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tX\tY\tLABEL\tDISTANCE")
	for _, n := range ns {
		p, err := ps.Point(n.Index)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%g\t%g\t%d\t%.6f\n", n.Index, p.X, p.Y, p.Label, n.Distance)
	}
	return tw.Flush()
}
