package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Layer1      key.Binding
	Layer2      key.Binding
	Layer3      key.Binding
	NextEntity  key.Binding
	PrevEntity  key.Binding
	Focus       key.Binding
	Cancel      key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	Fit         key.Binding
	Pan         key.Binding
	TLEarlier   key.Binding
	TLLater     key.Binding
	TLZoomIn    key.Binding
	TLZoomOut   key.Binding
	TLReset     key.Binding
	GotoDate    key.Binding
	Pin         key.Binding
	Unpin       key.Binding
	PageEarlier key.Binding
	PageLater   key.Binding
	Copy        key.Binding
	Export      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Layer1:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "tracing")),
		Layer2:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "building")),
		Layer3:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "platform")),
		NextEntity:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next entity")),
		PrevEntity:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev entity")),
		Focus:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "focus")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:     key.NewBinding(key.WithKeys("-", "_")),
		Fit:         key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
		Pan:         key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("←↑↓→", "pan")),
		TLEarlier:   key.NewBinding(key.WithKeys("["), key.WithHelp("[ ]", "timeline pan")),
		TLLater:     key.NewBinding(key.WithKeys("]")),
		TLZoomOut:   key.NewBinding(key.WithKeys("{"), key.WithHelp("{ }", "timeline zoom")),
		TLZoomIn:    key.NewBinding(key.WithKeys("}")),
		TLReset:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset timeline")),
		GotoDate:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to date")),
		Pin:         key.NewBinding(key.WithKeys("p"), key.WithHelp("p/P", "pin/unpin")),
		Unpin:       key.NewBinding(key.WithKeys("P")),
		PageEarlier: key.NewBinding(key.WithKeys(","), key.WithHelp(", .", "scroll events")),
		PageLater:   key.NewBinding(key.WithKeys(".")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		Export:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextEntity, k.Focus, k.Cancel, k.TLEarlier, k.Pin, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Layer1, k.Layer2, k.Layer3, k.NextEntity, k.PrevEntity},
		{k.Focus, k.Cancel, k.ZoomIn, k.Fit, k.Pan},
		{k.TLEarlier, k.TLZoomOut, k.TLReset, k.GotoDate},
		{k.Pin, k.PageEarlier, k.Copy, k.Export, k.Help, k.Quit},
	}
}
