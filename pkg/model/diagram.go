// Package model defines the read-only diagram snapshot shared by the layout,
// timeline and store packages.
package model

// Diagram is the full data set supplied at startup. Drafts and
// DraftConnections only appear on the building layer.
type Diagram struct {
	Entities         []Entity
	Connections      []Connection
	Drafts           []Entity
	DraftConnections []Connection
	Events           []TimelineEvent
}

// ForLayer returns the entities and connections visible on layer. The
// returned slices are fresh copies.
func (d Diagram) ForLayer(layer Layer) ([]Entity, []Connection) {
	entities := make([]Entity, 0, len(d.Entities)+len(d.Drafts))
	entities = append(entities, d.Entities...)
	conns := make([]Connection, 0, len(d.Connections)+len(d.DraftConnections))
	conns = append(conns, d.Connections...)
	if layer == LayerBuilding {
		entities = append(entities, d.Drafts...)
		conns = append(conns, d.DraftConnections...)
	}
	return entities, conns
}

// Entity looks up an entity (drafts included) by id.
func (d Diagram) Entity(id string) (Entity, bool) {
	for _, e := range d.Entities {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range d.Drafts {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// Event looks up a timeline event by id.
func (d Diagram) Event(id string) (TimelineEvent, bool) {
	for _, ev := range d.Events {
		if ev.ID == id {
			return ev, true
		}
	}
	return TimelineEvent{}, false
}
