// Package ui is the terminal front end of the explorer: a bubbletea Model
// that renders the store's View and feeds user input back into it.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/archlens/pkg/debug"
	"github.com/vanderheijden86/archlens/pkg/dwell"
	"github.com/vanderheijden86/archlens/pkg/export"
	"github.com/vanderheijden86/archlens/pkg/loader"
	"github.com/vanderheijden86/archlens/pkg/metrics"
	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/store"
	"github.com/vanderheijden86/archlens/pkg/timeline"
	"github.com/vanderheijden86/archlens/pkg/watcher"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	headerRows    = 1
	defaultWidth  = 120
	defaultHeight = 40
	minCanvasRows = 3

	zoomFactor = 1.25
	panCells   = 4
)

// Options configure the explorer.
type Options struct {
	DiagramPath string
	EventsPath  string
	ExportDir   string
	Loader      loader.Options
}

// FileChangedMsg is sent when a watched file changes on disk.
type FileChangedMsg struct{}

// DiagramReloadedMsg carries the result of a reload.
type DiagramReloadedMsg struct {
	Diagram model.Diagram
	Err     error
}

type exportDoneMsg struct {
	path string
	err  error
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadCmd reloads the diagram and events files.
func ReloadCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		defer metrics.Timer(metrics.Reload)()
		d, err := loader.Load(context.Background(), opts.DiagramPath, opts.EventsPath, opts.Loader)
		return DiagramReloadedMsg{Diagram: d, Err: err}
	}
}

// Model is the bubbletea model of the explorer.
type Model struct {
	store   *store.Store
	opts    Options
	watcher *watcher.Watcher

	theme     Theme
	keys      keyMap
	help      help.Model
	dateInput textinput.Model
	prompting bool
	card      *cardRenderer

	width, height int
	sized         bool

	statusMsg     string
	statusIsError bool
}

// NewModel creates the explorer over s.
func NewModel(s *store.Store, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "go to date: "
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = 25
	ti.Width = 20

	m := Model{
		store:     s,
		opts:      opts,
		theme:     DefaultTheme(lipgloss.DefaultRenderer()),
		keys:      defaultKeyMap(),
		help:      help.New(),
		dateInput: ti,
		card:      newCardRenderer(),
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.help.Width = m.width
	m.resize()
	return m
}

// WithWatcher enables live reload from w.
func (m Model) WithWatcher(w *watcher.Watcher) Model {
	m.watcher = w
	return m
}

// Store returns the underlying store.
func (m Model) Store() *store.Store { return m.store }

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) pageSize() int {
	if n := m.store.Options().PageSize; n > 0 {
		return n
	}
	return timeline.DefaultPageSize
}

func (m Model) footerRows() int {
	if m.help.ShowAll && !m.prompting {
		return lipgloss.Height(m.help.View(m.keys))
	}
	return 1
}

func (m Model) canvasRows() int {
	rows := m.height - headerRows - m.footerRows()
	if m.store.HasTimeline() {
		rows -= timelineRows(m.pageSize())
	}
	return max(rows, minCanvasRows)
}

// resize tells the store how much plane the canvas shows at zoom 1.
func (m *Model) resize() {
	m.store.SetScreen(ScreenSize(m.width, m.canvasRows()))
}

// armed turns a dwell arming result into the command that delivers it.
func (m Model) armed(tok dwell.Token, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	return m.store.Dwell().Cmd(tok)
}

func (m *Model) setStatus(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = false
}

func (m *Model) setError(err error) {
	m.statusMsg = err.Error()
	m.statusIsError = true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		// Refit on the first real size so the whole diagram is visible.
		if !m.sized && !m.store.Focused() {
			cmds = append(cmds, m.armed(m.store.Fit()))
		}
		m.sized = true

	case dwell.ExpiredMsg:
		if m.store.DwellExpired(msg.Token) {
			m.setStatus("focus: %s", m.store.Session().FocalID)
		}

	case FileChangedMsg:
		debug.Log("ui: file changed, reloading")
		cmds = append(cmds, ReloadCmd(m.opts))
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}

	case DiagramReloadedMsg:
		if msg.Err != nil {
			m.setError(fmt.Errorf("reload failed: %w", msg.Err))
			break
		}
		m.store.ReplaceDiagram(msg.Diagram)
		m.card.reset()
		m.resize()
		m.setStatus("reloaded %d entities, %d events", len(msg.Diagram.Entities), len(msg.Diagram.Events))

	case exportDoneMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("export failed: %w", msg.err))
		} else {
			m.setStatus("exported %s", msg.path)
		}

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case tea.KeyMsg:
		if m.prompting {
			return m.handleDateInput(msg)
		}
		m.statusMsg = ""
		var cmd tea.Cmd
		m, cmd = m.handleKeys(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := m.store
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()

	case key.Matches(msg, m.keys.Layer1, m.keys.Layer2, m.keys.Layer3):
		l, _ := model.LayerForKey(msg.String())
		if s.SetActiveLayer(l) {
			m.setStatus("layer: %s (%s)", l.Info().Label, l.Info().Persona)
			return m, m.armed(s.Fit())
		}

	case key.Matches(msg, m.keys.NextEntity):
		return m, m.cycleHover(1)
	case key.Matches(msg, m.keys.PrevEntity):
		return m, m.cycleHover(-1)

	case key.Matches(msg, m.keys.Focus):
		id := s.Hovered()
		if id == "" {
			id = s.Selected()
		}
		if id != "" && s.EnterFocus(id) {
			m.setStatus("focus: %s", id)
		}

	case key.Matches(msg, m.keys.Cancel):
		s.Cancel()

	case key.Matches(msg, m.keys.ZoomIn, m.keys.ZoomOut, m.keys.Fit, m.keys.Pan) && s.Focused():
		m.setStatus("camera locked in focus mode (esc to exit)")

	case key.Matches(msg, m.keys.ZoomIn):
		return m, m.armed(s.SetZoom(s.Zoom() * zoomFactor))
	case key.Matches(msg, m.keys.ZoomOut):
		return m, m.armed(s.SetZoom(s.Zoom() / zoomFactor))
	case key.Matches(msg, m.keys.Fit):
		return m, m.armed(s.Fit())

	case key.Matches(msg, m.keys.Pan):
		dx, dy := panCells*cellWidth/s.Zoom(), panCells*cellHeight/2/s.Zoom()
		switch msg.String() {
		case "up":
			s.PanCamera(r2.Vec{Y: -dy})
		case "down":
			s.PanCamera(r2.Vec{Y: dy})
		case "left":
			s.PanCamera(r2.Vec{X: -dx})
		case "right":
			s.PanCamera(r2.Vec{X: dx})
		}

	case key.Matches(msg, m.keys.TLEarlier):
		m.timelineResult(s.PanTimeline(timeline.Earlier))
	case key.Matches(msg, m.keys.TLLater):
		m.timelineResult(s.PanTimeline(timeline.Later))
	case key.Matches(msg, m.keys.TLZoomIn):
		m.timelineResult(s.ZoomTimelineIn(0.5))
	case key.Matches(msg, m.keys.TLZoomOut):
		m.timelineResult(s.ZoomTimelineOut(0.5))
	case key.Matches(msg, m.keys.TLReset):
		m.timelineResult(s.ResetTimeline())

	case key.Matches(msg, m.keys.GotoDate):
		if !s.HasTimeline() {
			m.setError(store.ErrTimelineUnavailable)
			break
		}
		m.prompting = true
		m.dateInput.SetValue("")
		cmd := m.dateInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Pin):
		page, err := s.EventPage()
		if err != nil {
			m.setError(err)
			break
		}
		if len(page) > 0 && s.PinSnapshot(page[0].ID) {
			m.setStatus("pinned %s", page[0].Title)
		}
	case key.Matches(msg, m.keys.Unpin):
		s.UnpinSnapshot()

	case key.Matches(msg, m.keys.PageEarlier):
		s.EarlierEvents()
	case key.Matches(msg, m.keys.PageLater):
		s.LaterEvents()

	case key.Matches(msg, m.keys.Copy):
		id := m.currentID()
		if id == "" {
			break
		}
		if err := clipboard.WriteAll(id); err != nil {
			m.setError(fmt.Errorf("clipboard: %w", err))
		} else {
			m.setStatus("copied %s", id)
		}

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()
	}
	return m, nil
}

func (m *Model) timelineResult(err error) {
	if err != nil {
		m.setError(err)
	}
}

// currentID is the focused, selected or hovered entity, in that order.
func (m Model) currentID() string {
	if m.store.Focused() {
		return m.store.Session().FocalID
	}
	if id := m.store.Selected(); id != "" {
		return id
	}
	return m.store.Hovered()
}

// cycleHover moves the hover to the next entity in id order.
func (m Model) cycleHover(step int) tea.Cmd {
	ids := m.store.EntityIDs()
	if len(ids) == 0 {
		return nil
	}
	next := 0
	if step < 0 {
		next = len(ids) - 1
	}
	for i, id := range ids {
		if id == m.store.Hovered() {
			next = (i + step + len(ids)) % len(ids)
			break
		}
	}
	return m.armed(m.store.HoverStart(ids[next]))
}

// hover applies pointer hover over id ("" for empty space).
func (m Model) hover(id string) tea.Cmd {
	if id == m.store.Hovered() {
		return nil
	}
	if id == "" {
		m.store.HoverEnd()
		return nil
	}
	return m.armed(m.store.HoverStart(id))
}

func (m Model) projection() projection {
	return projection{center: m.store.Center(), zoom: m.store.Zoom(), cols: m.width, rows: m.canvasRows()}
}

// entityAt hit-tests a canvas cell against the drawn boxes, topmost first.
func (m Model) entityAt(x, y int) string {
	v := m.store.View()
	proj := m.projection()
	hit, best := "", -1
	for _, e := range v.Entities {
		x0, y0, x1, y1 := proj.rectCells(e.Rect)
		if x < x0 || x > x1 || y < y0 || y > y1 {
			continue
		}
		// Ghosted entities are not hoverable.
		if e.Opacity < store.OpacitySnapshot {
			continue
		}
		if o := drawOrder(e); o >= best {
			hit, best = e.ID, o
		}
	}
	return hit
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	s := m.store
	row := msg.Y - headerRows
	canvasRows := m.canvasRows()

	if row >= 0 && row < canvasRows {
		wheel := msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown
		switch {
		case wheel && s.Focused():
			return nil
		case msg.Button == tea.MouseButtonWheelUp:
			return m.armed(s.SetZoom(s.Zoom() * zoomFactor))
		case msg.Button == tea.MouseButtonWheelDown:
			return m.armed(s.SetZoom(s.Zoom() / zoomFactor))
		case msg.Action == tea.MouseActionMotion:
			return m.hover(m.entityAt(msg.X, row))
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			s.Select(m.entityAt(msg.X, row))
		}
		return nil
	}

	// Outside the canvas nothing is hovered.
	cmd := m.hover("")
	if !s.HasTimeline() {
		return cmd
	}
	tlRow := row - canvasRows
	if tlRow < 0 || tlRow >= timelineRows(m.pageSize()) {
		return cmd
	}
	frac := barFraction(msg.X, m.width)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.timelineResult(s.ZoomTimelineIn(frac))
	case msg.Button == tea.MouseButtonWheelDown:
		m.timelineResult(s.ZoomTimelineOut(frac))
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.pinAt(msg.X, tlRow)
	}
	return cmd
}

// pinAt pins the event under a click on the bar or the event list.
func (m *Model) pinAt(x, tlRow int) {
	v := m.store.View()
	if v.Timeline == nil {
		return
	}
	var id string
	switch {
	case tlRow == 1:
		id = eventAtColumn(v.Timeline, x, m.width)
	case tlRow > timelineHeaderRows:
		if i := tlRow - timelineHeaderRows - 1; i < len(v.Timeline.Page) {
			id = v.Timeline.Page[i].ID
		}
	}
	if id == "" {
		return
	}
	if id == v.PinnedID {
		m.store.UnpinSnapshot()
		return
	}
	if m.store.PinSnapshot(id) {
		m.setStatus("pinned %s", id)
	}
}

func (m Model) handleDateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.dateInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.prompting = false
		m.dateInput.Blur()
		t, err := parseDate(m.dateInput.Value())
		if err == nil {
			err = m.store.NavigateTo(t)
		}
		if err != nil {
			m.setError(err)
		} else {
			m.setStatus("window centred on %s", t.Format("2006-01-02"))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

func (m Model) exportCmd() tea.Cmd {
	v := m.store.View()
	dir := m.opts.ExportDir
	if dir == "" {
		dir = "."
	}
	name := fmt.Sprintf("archlens-%s-%s.svg", v.Layer, time.Now().Format("20060102-150405"))
	opts := export.SnapshotOptions{
		Path:  filepath.Join(dir, name),
		Title: filepath.Base(m.opts.DiagramPath),
		View:  v,
	}
	return func() tea.Msg {
		path, err := export.SaveLayoutSnapshot(opts)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	v := m.store.View()
	sections := []string{m.renderHeader(v)}

	c := newCanvas(v, m.theme, m.width, m.canvasRows())
	c.card = m.card.lines
	sections = append(sections, c.render().String())

	if v.Timeline != nil {
		sections = append(sections, renderTimeline(v.Timeline, v.PinnedID, m.theme, m.width, m.pageSize()))
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader(v store.View) string {
	var sb strings.Builder
	sb.WriteString(m.theme.Header.Render("archlens"))
	for _, l := range model.AllLayers() {
		info := l.Info()
		tab := info.Key + " " + info.Label
		if l == v.Layer {
			sb.WriteString(m.theme.ActiveTab.Render(tab))
		} else {
			sb.WriteString(m.theme.LayerTab.Render(tab))
		}
	}

	var right []string
	if v.Focused() {
		right = append(right, fmt.Sprintf("focus %s (%d neighbors)", v.FocalID, len(v.Docks)))
	} else if h := m.store.Hovered(); h != "" {
		right = append(right, "hover "+h)
		if _, pending := m.store.Dwell().Pending(); pending {
			right = append(right, "…")
		}
	}
	if v.PinnedID != "" {
		right = append(right, "pinned "+v.PinnedID)
	}
	right = append(right, fmt.Sprintf("zoom %.0f%%", v.Zoom*100))

	left := sb.String()
	status := m.theme.MutedText.Render(strings.Join(right, "  "))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + status
}

func (m Model) renderFooter() string {
	if m.prompting {
		return m.dateInput.View()
	}
	if m.statusMsg != "" {
		style := m.theme.Status
		if m.statusIsError {
			style = m.theme.ErrorText
		}
		return style.Render(fitWidth(m.statusMsg, m.width))
	}
	return m.help.View(m.keys)
}
