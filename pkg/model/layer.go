package model

import (
	"fmt"
	"strings"
)

// Layer selects which overlay of information the diagram shows.
type Layer int

const (
	LayerLive Layer = iota
	LayerBuilding
	LayerPlatform

	layerCount
)

// LayerInfo is the presentation record for a layer.
type LayerInfo struct {
	Name        string // Stable identifier used in config and flags
	Label       string
	Persona     string
	Description string
	Key         string // Shortcut key that activates the layer
}

// layerInfo is indexed by Layer. A new layer must add an entry here;
// TestLayerInfoComplete fails otherwise.
var layerInfo = [layerCount]LayerInfo{
	LayerLive: {
		Name:        "live",
		Label:       "Tracing",
		Persona:     "SWE",
		Description: "Debug flows & errors",
		Key:         "1",
	},
	LayerBuilding: {
		Name:        "building",
		Label:       "Building",
		Persona:     "PO / PM",
		Description: "Design & backlog",
		Key:         "2",
	},
	LayerPlatform: {
		Name:        "platform",
		Label:       "Platform",
		Persona:     "DevOps",
		Description: "Infra & health",
		Key:         "3",
	},
}

// AllLayers returns every layer in display order.
func AllLayers() []Layer {
	layers := make([]Layer, 0, layerCount)
	for l := Layer(0); l < layerCount; l++ {
		layers = append(layers, l)
	}
	return layers
}

// Valid reports whether l is a known layer.
func (l Layer) Valid() bool {
	return l >= 0 && l < layerCount
}

// Info returns the presentation record for l. Unknown layers map to live.
func (l Layer) Info() LayerInfo {
	if !l.Valid() {
		return layerInfo[LayerLive]
	}
	return layerInfo[l]
}

func (l Layer) String() string {
	return l.Info().Name
}

// MarshalText encodes the layer by name.
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Layer) UnmarshalText(b []byte) error {
	v, err := ParseLayer(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLayer resolves a layer name. "tracing" is accepted for live.
func ParseLayer(s string) (Layer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live", "tracing", "":
		return LayerLive, nil
	case "building":
		return LayerBuilding, nil
	case "platform":
		return LayerPlatform, nil
	}
	return LayerLive, fmt.Errorf("unknown layer %q", s)
}

// LayerForKey returns the layer bound to a shortcut key.
func LayerForKey(key string) (Layer, bool) {
	for _, l := range AllLayers() {
		if layerInfo[l].Key == key {
			return l, true
		}
	}
	return LayerLive, false
}
