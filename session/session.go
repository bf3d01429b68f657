// Package session holds the interactive query state of a point-cloud viewer.
//
// A Session owns the selected position, the active mode and its parameters.
// Every state change re-runs the active query against the index, so callers
// can render the returned Result directly. Positions outside the padded data
// bounds are ignored the way a plot ignores clicks outside its axes.
package session

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/hupe1980/kdnn"
	"github.com/hupe1980/kdnn/cache"
	"github.com/hupe1980/kdnn/resource"
)

const (
	// DefaultK is the initial neighbour count.
	DefaultK = 8
	// DefaultRadius is the initial search radius.
	DefaultRadius = 12.0
	// ViewMargin is the fraction of the data extent added on each side of the view.
	ViewMargin = 0.05
)

// Mode selects the active query.
type Mode uint8

const (
	ModeKNearest Mode = iota
	ModeRadius
)

func (m Mode) String() string {
	switch m {
	case ModeKNearest:
		return "knn"
	case ModeRadius:
		return "radius"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode parses "knn" or "radius".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "knn", "k-nearest", "nearest":
		return ModeKNearest, nil
	case "radius", "within":
		return ModeRadius, nil
	default:
		return 0, &kdnn.InvalidArgumentError{Name: "mode", Value: s}
	}
}

// Index is the query surface a Session needs. *kdnn.Index implements it.
type Index interface {
	KNearest(q kdnn.Coord, k int, opts ...kdnn.QueryOption) ([]kdnn.Neighbor, error)
	Radius(q kdnn.Coord, r float64, opts ...kdnn.QueryOption) ([]kdnn.Neighbor, error)
	PointSet() *kdnn.PointSet
}

// State is a snapshot of the session.
type State struct {
	Position    kdnn.Coord
	HasPosition bool
	Mode        Mode
	K           int
	Radius      float64
	// Labels restricts results; nil admits every label.
	Labels []uint32
}

// Result is the outcome of re-running the active query.
type Result struct {
	State State
	// InView is false when no position is set or it lies outside the view.
	// Neighbors is empty in that case.
	InView bool
	// Neighbors is ordered by ascending distance in both modes.
	Neighbors []kdnn.Neighbor
	// Points holds the point behind each neighbour.
	Points []kdnn.Point
	// Cached reports whether Neighbors came from the result cache.
	Cached bool
}

// Options configures a Session.
type Options struct {
	Mode         Mode
	K            int
	Radius       float64
	CacheEntries int   // 0 disables the result cache
	CacheBytes   int64 // 0 bounds the cache by entries only
	Logger       *kdnn.Logger
	Controller   *resource.Controller
}

// Option mutates Options.
type Option func(*Options)

// WithMode sets the initial mode.
func WithMode(m Mode) Option {
	return func(o *Options) { o.Mode = m }
}

// WithK sets the initial neighbour count.
func WithK(k int) Option {
	return func(o *Options) { o.K = k }
}

// WithRadius sets the initial radius.
func WithRadius(r float64) Option {
	return func(o *Options) { o.Radius = r }
}

// WithCache enables the result cache.
func WithCache(entries int, maxBytes int64) Option {
	return func(o *Options) {
		o.CacheEntries = entries
		o.CacheBytes = maxBytes
	}
}

// WithLogger sets the logger. State changes are logged at debug level.
func WithLogger(l *kdnn.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithResourceController charges cached results against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *Options) { o.Controller = rc }
}

// Session is safe for concurrent use; operations are serialized.
type Session struct {
	mu       sync.Mutex
	idx      Index
	view     kdnn.Rect
	hasView  bool
	defaults State
	state    State
	cache    *cache.ResultCache
	logger   *kdnn.Logger
}

// New creates a session over idx with no position selected.
func New(idx Index, optFns ...Option) (*Session, error) {
	opts := Options{
		Mode:   ModeKNearest,
		K:      DefaultK,
		Radius: DefaultRadius,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := kdnn.ValidateKNearest(kdnn.Coord{}, opts.K); err != nil {
		return nil, err
	}
	if err := kdnn.ValidateRadius(kdnn.Coord{}, opts.Radius); err != nil {
		return nil, err
	}
	if opts.Mode != ModeKNearest && opts.Mode != ModeRadius {
		return nil, &kdnn.InvalidArgumentError{Name: "mode", Value: opts.Mode.String()}
	}
	if opts.Logger == nil {
		opts.Logger = kdnn.NoopLogger()
	}

	s := &Session{
		idx:    idx,
		logger: opts.Logger,
		defaults: State{
			Mode:   opts.Mode,
			K:      opts.K,
			Radius: opts.Radius,
		},
	}
	s.state = s.defaults

	if bounds, ok := idx.PointSet().Bounds(); ok {
		s.view = bounds.Pad(ViewMargin)
		s.hasView = true
	}

	if opts.CacheEntries > 0 {
		c, err := cache.NewResultCache(opts.CacheEntries, opts.CacheBytes, opts.Controller)
		if err != nil {
			return nil, fmt.Errorf("result cache: %w", err)
		}
		s.cache = c
	}

	return s, nil
}

// View returns the area in which positions are queried.
// ok is false for an empty point set.
func (s *Session) View() (kdnn.Rect, bool) {
	return s.view, s.hasView
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	st := s.state
	st.Labels = slices.Clone(s.state.Labels)
	return st
}

// MoveTo selects q and runs the active query.
func (s *Session) MoveTo(ctx context.Context, q kdnn.Coord) (Result, error) {
	if err := kdnn.ValidateKNearest(q, 0); err != nil {
		return Result{}, err
	}
	return s.update(ctx, func(st *State) {
		st.Position = q
		st.HasPosition = true
	})
}

// SetMode switches between k-nearest and radius queries.
func (s *Session) SetMode(ctx context.Context, m Mode) (Result, error) {
	if m != ModeKNearest && m != ModeRadius {
		return Result{}, &kdnn.InvalidArgumentError{Name: "mode", Value: m.String()}
	}
	return s.update(ctx, func(st *State) { st.Mode = m })
}

// SetK changes the neighbour count. The state is unchanged on error.
func (s *Session) SetK(ctx context.Context, k int) (Result, error) {
	if err := kdnn.ValidateKNearest(kdnn.Coord{}, k); err != nil {
		return Result{}, err
	}
	return s.update(ctx, func(st *State) { st.K = k })
}

// SetRadius changes the search radius. The state is unchanged on error.
func (s *Session) SetRadius(ctx context.Context, r float64) (Result, error) {
	if err := kdnn.ValidateRadius(kdnn.Coord{}, r); err != nil {
		return Result{}, err
	}
	return s.update(ctx, func(st *State) { st.Radius = r })
}

// SetLabels restricts results to the given labels. No labels clears the filter.
func (s *Session) SetLabels(ctx context.Context, labels ...uint32) (Result, error) {
	var set []uint32
	if len(labels) > 0 {
		set = slices.Clone(labels)
		slices.Sort(set)
		set = slices.Compact(set)
	}
	return s.update(ctx, func(st *State) { st.Labels = set })
}

// Reset restores the initial mode, parameters and label filter.
// The selected position is kept.
func (s *Session) Reset(ctx context.Context) (Result, error) {
	return s.update(ctx, func(st *State) {
		st.Mode = s.defaults.Mode
		st.K = s.defaults.K
		st.Radius = s.defaults.Radius
		st.Labels = nil
	})
}

// Refresh re-runs the active query without changing state.
func (s *Session) Refresh(ctx context.Context) (Result, error) {
	return s.update(ctx, func(*State) {})
}

func (s *Session) update(ctx context.Context, mutate func(*State)) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&s.state)

	s.logger.DebugContext(ctx, "session state",
		"mode", s.state.Mode.String(),
		"k", s.state.K,
		"radius", s.state.Radius,
		"labels", len(s.state.Labels),
	)

	return s.run(ctx)
}

func (s *Session) run(ctx context.Context) (Result, error) {
	res := Result{State: s.snapshot()}

	st := s.state
	if !st.HasPosition {
		return res, nil
	}
	if !s.hasView || !s.view.Contains(st.Position) {
		s.logger.DebugContext(ctx, "position outside view",
			"x", st.Position.X,
			"y", st.Position.Y,
		)
		return res, nil
	}
	res.InView = true

	key := s.key()
	if s.cache != nil {
		if ns, ok := s.cache.Get(key); ok {
			res.Cached = true
			return s.resolve(ctx, res, ns)
		}
	}

	var opts []kdnn.QueryOption
	if len(st.Labels) > 0 {
		opts = append(opts, kdnn.WithLabels(st.Labels...))
	}

	var (
		ns  []kdnn.Neighbor
		err error
	)
	switch st.Mode {
	case ModeRadius:
		ns, err = s.idx.Radius(st.Position, st.Radius, opts...)
		if err == nil {
			kdnn.SortByDistance(ns)
		}
	default:
		ns, err = s.idx.KNearest(st.Position, st.K, opts...)
	}

	s.logger.LogQuery(ctx, st.Mode.String(), st.Position, len(ns), err)
	if err != nil {
		return Result{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, ns)
	}

	return s.resolve(ctx, res, ns)
}

func (s *Session) resolve(ctx context.Context, res Result, ns []kdnn.Neighbor) (Result, error) {
	ps := s.idx.PointSet()

	points := make([]kdnn.Point, len(ns))
	for i, n := range ns {
		p, err := ps.Point(n.Index)
		if err != nil {
			return Result{}, err
		}
		points[i] = p
	}

	res.Neighbors = slices.Clone(ns)
	res.Points = points

	if res.Cached {
		s.logger.DebugContext(ctx, "cache hit", "mode", res.State.Mode.String(), "results", len(ns))
	}
	return res, nil
}

func (s *Session) key() cache.Key {
	st := s.state
	k := cache.Key{Query: st.Position}

	switch st.Mode {
	case ModeRadius:
		k.Kind = cache.KindRadius
		k.Radius = st.Radius
	default:
		k.Kind = cache.KindKNearest
		k.K = st.K
	}

	if len(st.Labels) > 0 {
		parts := make([]string, len(st.Labels))
		for i, l := range st.Labels {
			parts[i] = strconv.FormatUint(uint64(l), 10)
		}
		k.Labels = strings.Join(parts, ",")
	}

	return k
}

// CacheLen returns the number of cached results, 0 without a cache.
func (s *Session) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}
