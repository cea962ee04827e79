package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/term"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/archlens/pkg/config"
	"github.com/vanderheijden86/archlens/pkg/debug"
	"github.com/vanderheijden86/archlens/pkg/export"
	"github.com/vanderheijden86/archlens/pkg/loader"
	"github.com/vanderheijden86/archlens/pkg/metrics"
	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/store"
	"github.com/vanderheijden86/archlens/pkg/ui"
	"github.com/vanderheijden86/archlens/pkg/version"
	"github.com/vanderheijden86/archlens/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	diagramFlag := flag.String("diagram", "", "Diagram file (.yaml, .yml or .json)")
	eventsFlag := flag.String("events", "", "Optional timeline events file")
	configFlag := flag.String("config", "", "Config file (default: XDG config dir)")
	layerFlag := flag.String("layer", "", "Initial layer: live, building or platform")
	focusFlag := flag.String("focus", "", "Start focused on this entity id")
	pinFlag := flag.String("pin", "", "Start with this timeline event pinned")
	exportFlag := flag.String("export", "", "Write a layout snapshot (.svg or .png) and exit")
	robotState := flag.Bool("robot-state", false, "Print the computed view as JSON and exit")
	noWatch := flag.Bool("no-watch", false, "Disable live reload")
	printMetrics := flag.Bool("metrics", false, "Print timing metrics as JSON on exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: al [options] [diagram]")
		fmt.Println("\nExplore an architecture diagram across its layers and timeline.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("al %s\n", version.Version)
		os.Exit(0)
	}

	// exit prints the metrics requested with --metrics before leaving.
	exit := func(code int) {
		if *printMetrics {
			if err := writeMetrics(os.Stderr); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}
		os.Exit(code)
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	diagramPath := firstNonEmpty(*diagramFlag, flag.Arg(0), cfg.UI.DiagramPath)
	eventsPath := firstNonEmpty(*eventsFlag, cfg.UI.EventsPath)
	if diagramPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no diagram given. Pass --diagram or set ui.diagram in the config.")
		os.Exit(2)
	}
	if *layerFlag != "" {
		if _, err := model.ParseLayer(*layerFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		cfg.UI.DefaultLayer = *layerFlag
	}

	loaderOpts := loader.Options{DefaultSize: r2.Vec{X: cfg.Focus.NodeWidth, Y: cfg.Focus.NodeHeight}}
	d, err := loader.Load(context.Background(), diagramPath, eventsPath, loaderOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading diagram: %v\n", err)
		exit(1)
	}

	opts := store.OptionsFromConfig(cfg)
	if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 && rows > 0 {
		opts.Screen = ui.ScreenSize(cols, rows)
	}
	s := store.New(d, opts)

	if *focusFlag != "" && !s.EnterFocus(*focusFlag) {
		fmt.Fprintf(os.Stderr, "Error: entity %q is not on the %s layer\n", *focusFlag, s.Layer())
		exit(1)
	}
	if *pinFlag != "" && !s.PinSnapshot(*pinFlag) {
		fmt.Fprintf(os.Stderr, "Error: unknown event %q\n", *pinFlag)
		exit(1)
	}

	if *robotState {
		if err := writeRobotState(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}
		exit(0)
	}

	if *exportFlag != "" {
		path, err := export.SaveLayoutSnapshot(export.SnapshotOptions{
			Path:  *exportFlag,
			Title: filepath.Base(diagramPath),
			View:  s.View(),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting snapshot: %v\n", err)
			exit(1)
		}
		fmt.Println(path)
		exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal. Use --robot-state or --export for headless use.")
		os.Exit(2)
	}

	m := ui.NewModel(s, ui.Options{
		DiagramPath: diagramPath,
		EventsPath:  eventsPath,
		ExportDir:   config.StateDir(),
		Loader:      loaderOpts,
	})
	watch := cfg.UI.WatchEnabled() && !*noWatch
	if err := runInteractive(m, watch, diagramPath, eventsPath); err != nil {
		fmt.Printf("Error running archlens: %v\n", err)
		exit(1)
	}
	exit(0)
}

// runInteractive runs the TUI. Its deferred cleanup (debug log, watcher)
// runs before main exits.
func runInteractive(m ui.Model, watch bool, diagramPath, eventsPath string) error {
	if debug.Enabled() {
		if f, err := openDebugLog(); err == nil {
			defer f.Close()
			debug.SetOutput(f)
		}
		debug.Section("al " + version.Version)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if watch {
		w, err := startWatcher(ctx, diagramPath, eventsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: live reload disabled: %v\n", err)
		} else {
			defer w.Stop()
			m = m.WithWatcher(w)
		}
	}
	return runTUIProgram(m)
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeRobotState(s *store.Store) error {
	out, err := json.MarshalIndent(s.View(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding view: %w", err)
	}
	_, err = fmt.Println(string(out))
	return err
}

func writeMetrics(w io.Writer) error {
	out, err := json.MarshalIndent(metrics.AllTimingStats(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func openDebugLog() (*os.File, error) {
	dir := config.StateDir()
	if dir == "" {
		return nil, errors.New("no state directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func startWatcher(ctx context.Context, paths ...string) (*watcher.Watcher, error) {
	var files []string
	for _, p := range paths {
		if p != "" {
			files = append(files, p)
		}
	}
	w, err := watcher.New(files, watcher.WithOnError(func(err error) {
		debug.Log("watcher: %v", err)
	}))
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set AL_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("AL_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
