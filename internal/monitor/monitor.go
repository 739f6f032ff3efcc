package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/OpenTraceLab/tracelen/internal/config"
	"github.com/OpenTraceLab/tracelen/internal/watch"
	"github.com/OpenTraceLab/tracelen/pkg/geom"
	"github.com/OpenTraceLab/tracelen/pkg/layout"
	"github.com/OpenTraceLab/tracelen/pkg/report"
	"github.com/OpenTraceLab/tracelen/pkg/trace"
)

// ErrFileChanging is returned when the file kept changing across every read attempt
var ErrFileChanging = errors.New("file changed while reading")

// Monitor measures one layout file and reports trace lengths when they change.
// It owns the report state for the life of the process.
type Monitor struct {
	cfg      *config.Config
	parser   *layout.Parser
	reporter *report.Reporter
	log      *zap.SugaredLogger
}

// New creates a monitor writing reports to out
func New(cfg *config.Config, out io.Writer, log *zap.SugaredLogger) (*Monitor, error) {
	parser, err := layout.NewParser()
	if err != nil {
		return nil, err
	}

	return &Monitor{
		cfg:      cfg,
		parser:   parser,
		reporter: report.NewReporter(out),
		log:      log,
	}, nil
}

// Run performs an initial pass, then one pass per debounced file change,
// until ctx is cancelled. Pass failures are logged and do not stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	w, err := watch.New(m.cfg.Path, m.cfg.Settle, m.log)
	if err != nil {
		return err
	}
	defer w.Close()

	m.log.Infow("watching layout", "path", w.Path())

	m.passAndLog(ctx)

	err = w.Run(ctx, m.passAndLog)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (m *Monitor) passAndLog(ctx context.Context) {
	if err := m.Pass(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.log.Warnw("pass failed, waiting for next change", "path", m.cfg.Path, "error", err)
	}
}

// Pass reads the file once, assembles traces and reports them if the
// summary changed. The report state is untouched when the pass fails.
func (m *Monitor) Pass(ctx context.Context) error {
	data, err := m.read(ctx)
	if err != nil {
		return err
	}

	segments, err := m.parser.ReadSegments(bytes.NewReader(data), layout.ReadOptions{
		SkipMalformed: m.cfg.SkipMalformed(),
		OnSkip: func(err error) {
			m.log.Warnw("skipping malformed line", "error", err)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", m.cfg.Path, err)
	}

	traces := trace.Assemble(segments, m.cfg.AssembleOptions())
	m.checkConnectivity(segments, traces)

	changed, err := m.reporter.Report(traces)
	if err != nil {
		return err
	}

	m.log.Debugw("pass complete", "segments", len(segments), "traces", len(traces), "changed", changed)
	for _, tr := range traces {
		bb := tr.Bounds()
		m.log.Debugw("trace",
			"index", tr.Index,
			"segments", len(tr.Segments),
			"lines", tr.Lines(),
			"length_mils", tr.Length(),
			"width_mils", bb.Width(),
			"height_mils", bb.Height(),
		)
	}
	return nil
}

// read returns the file content once it has settled. If the file changes
// while being read, the read is retried up to ReadAttempts times.
func (m *Monitor) read(ctx context.Context) ([]byte, error) {
	for attempt := 1; attempt <= m.cfg.ReadAttempts; attempt++ {
		before, err := watch.WaitStable(ctx, m.cfg.Path, m.cfg.Quiet, m.cfg.StableTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}

		data, err := os.ReadFile(m.cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}

		after, err := watch.Stat(m.cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		if after.Equal(before) && after.Size == int64(len(data)) {
			return data, nil
		}

		m.log.Debugw("file changed during read, retrying", "attempt", attempt)
	}

	return nil, fmt.Errorf("%s: %w after %d attempts", m.cfg.Path, ErrFileChanging, m.cfg.ReadAttempts)
}

// checkConnectivity warns when a branching junction made the assembler
// split one copper island into several traces.
func (m *Monitor) checkConnectivity(segments []geom.Segment, traces []trace.Trace) {
	nl := trace.NewNetlist(segments, m.cfg.Grid)
	nl.Finalize()

	if len(traces) <= nl.IslandCount() {
		return
	}

	junctions := nl.Junctions()
	for _, island := range nl.SplitIslands(traces) {
		lines := make([]int, len(island.Segments))
		for i, s := range island.Segments {
			lines[i] = s.Line
		}

		root := nl.Find(island.Segments[0].A)
		var at []geom.Point
		for _, j := range junctions {
			if nl.Find(j) == root {
				at = append(at, j)
			}
		}
		m.log.Warnw("connected copper split into several traces at a junction",
			"island", island.ID,
			"lines", lines,
			"junctions", formatPoints(at),
		)
	}
}

func formatPoints(points []geom.Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = fmt.Sprintf("(%.4f, %.4f)", p.X, p.Y)
	}
	return out
}
