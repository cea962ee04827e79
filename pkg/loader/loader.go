// Package loader reads diagram and event files from disk into a
// model.Diagram. YAML (.yaml, .yml) and JSON (.json) are supported.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/archlens/pkg/debug"
	"github.com/vanderheijden86/archlens/pkg/metrics"
	"github.com/vanderheijden86/archlens/pkg/model"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .yaml, .yml and .json.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrDuplicateID is returned when two entities, connections or events
	// share an id.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownEntity is returned when a connection references an entity
	// that does not exist.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrInvalidEvent is returned for events with a bad kind or timestamp.
	ErrInvalidEvent = errors.New("invalid event")
	// ErrInvalidGeometry is returned for NaN or infinite positions and sizes.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// DefaultNodeSize is used for entities without a width or height.
var DefaultNodeSize = r2.Vec{X: 220, Y: 160}

// Options control decoding.
type Options struct {
	// DefaultSize replaces missing entity sizes. Zero uses DefaultNodeSize.
	DefaultSize r2.Vec
}

func (o Options) defaultSize() r2.Vec {
	s := o.DefaultSize
	if s.X <= 0 {
		s.X = DefaultNodeSize.X
	}
	if s.Y <= 0 {
		s.Y = DefaultNodeSize.Y
	}
	return s
}

// IsSupported reports whether path has a supported extension.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	case ".json":
		return json.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readFile(path string, v any) error {
	if !IsSupported(path) {
		return fmt.Errorf("%s: %w: %q", path, ErrUnsupportedFormat, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := decode(path, data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// LoadDiagram reads and validates a diagram file. Events embedded in the
// diagram file are included.
func LoadDiagram(path string, opts Options) (model.Diagram, error) {
	var f diagramFile
	if err := readFile(path, &f); err != nil {
		return model.Diagram{}, err
	}
	d, err := build(f, opts)
	if err != nil {
		return model.Diagram{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// LoadEvents reads a standalone events file.
func LoadEvents(path string) ([]model.TimelineEvent, error) {
	var f eventsFile
	if err := readFile(path, &f); err != nil {
		return nil, err
	}
	events, err := buildEvents(f.Events)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// Load reads the diagram and, if eventsPath is set, an events file in
// parallel. Events from both files are merged; ids must stay unique.
func Load(ctx context.Context, diagramPath, eventsPath string, opts Options) (model.Diagram, error) {
	defer metrics.Timer(metrics.DiagramLoad)()

	var (
		d      model.Diagram
		events []model.TimelineEvent
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d, err = LoadDiagram(diagramPath, opts)
		return err
	})
	if eventsPath != "" {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var err error
			events, err = LoadEvents(eventsPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return model.Diagram{}, err
	}

	if len(events) > 0 {
		seen := make(map[string]bool, len(d.Events))
		for _, ev := range d.Events {
			seen[ev.ID] = true
		}
		for _, ev := range events {
			if seen[ev.ID] {
				return model.Diagram{}, fmt.Errorf("%s: event %q: %w", eventsPath, ev.ID, ErrDuplicateID)
			}
			seen[ev.ID] = true
		}
		d.Events = append(d.Events, events...)
	}
	debug.Log("loader: %s: %d entities, %d connections, %d drafts, %d events",
		diagramPath, len(d.Entities), len(d.Connections), len(d.Drafts), len(d.Events))
	return d, nil
}

func build(f diagramFile, opts Options) (model.Diagram, error) {
	size := opts.defaultSize()
	ids := make(map[string]bool, len(f.Entities)+len(f.Drafts))

	var d model.Diagram
	for _, group := range []struct {
		wires []entityWire
		draft bool
		out   *[]model.Entity
	}{
		{f.Entities, false, &d.Entities},
		{f.Drafts, true, &d.Drafts},
	} {
		for _, w := range group.wires {
			if w.ID == "" {
				return model.Diagram{}, fmt.Errorf("entity without id")
			}
			if ids[w.ID] {
				return model.Diagram{}, fmt.Errorf("entity %q: %w", w.ID, ErrDuplicateID)
			}
			if err := w.checkGeometry(); err != nil {
				return model.Diagram{}, err
			}
			ids[w.ID] = true
			*group.out = append(*group.out, w.toModel(size, group.draft))
		}
	}

	committed := make(map[string]bool, len(f.Entities))
	for _, e := range d.Entities {
		committed[e.ID] = true
	}
	connIDs := make(map[string]bool, len(f.Connections)+len(f.DraftConnections))
	for _, group := range []struct {
		wires []connectionWire
		draft bool
		known map[string]bool
		out   *[]model.Connection
	}{
		{f.Connections, false, committed, &d.Connections},
		// Draft connections may also link drafts.
		{f.DraftConnections, true, ids, &d.DraftConnections},
	} {
		for _, w := range group.wires {
			if w.ID == "" {
				w.ID = w.Source + "->" + w.Target
			}
			if connIDs[w.ID] {
				return model.Diagram{}, fmt.Errorf("connection %q: %w", w.ID, ErrDuplicateID)
			}
			connIDs[w.ID] = true
			for _, end := range []string{w.Source, w.Target} {
				if !group.known[end] {
					return model.Diagram{}, fmt.Errorf("connection %q references %q: %w", w.ID, end, ErrUnknownEntity)
				}
			}
			*group.out = append(*group.out, w.toModel(group.draft))
		}
	}

	events, err := buildEvents(f.Events)
	if err != nil {
		return model.Diagram{}, err
	}
	d.Events = events
	return d, nil
}

func buildEvents(wires []eventWire) ([]model.TimelineEvent, error) {
	events := make([]model.TimelineEvent, 0, len(wires))
	seen := make(map[string]bool, len(wires))
	for _, w := range wires {
		ev, err := w.toModel()
		if err != nil {
			return nil, err
		}
		if seen[ev.ID] {
			return nil, fmt.Errorf("event %q: %w", ev.ID, ErrDuplicateID)
		}
		seen[ev.ID] = true
		events = append(events, ev)
	}
	return events, nil
}
