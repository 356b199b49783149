package bim

import (
	"errors"
	"fmt"
	"math"
)

// Component returns the component with id.
func (m *Model) Component(id string) (Component, bool) {
	for _, c := range m.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}

// GeometryFor returns the first geometry entry of componentID.
func (m *Model) GeometryFor(componentID string) (Geometry, bool) {
	for _, g := range m.Geometries {
		if g.ComponentID == componentID {
			return g, true
		}
	}
	return Geometry{}, false
}

// ComponentIDs returns the component ids in model order.
func (m *Model) ComponentIDs() []string {
	ids := make([]string, len(m.Components))
	for i, c := range m.Components {
		ids[i] = c.ID
	}
	return ids
}

// RelationshipsOf returns the relationships touching componentID.
func (m *Model) RelationshipsOf(componentID string) []Relationship {
	var out []Relationship
	for _, r := range m.Relationships {
		if r.FromComponentID == componentID || r.ToComponentID == componentID {
			out = append(out, r)
		}
	}
	return out
}

// Validate reports duplicate or empty component ids, geometry entries for
// unknown components and inverted or non-finite boxes. All problems are
// joined; each wraps ErrInvalidModel.
func (m *Model) Validate() error {
	var errs []error
	invalid := func(field, reason string) {
		errs = append(errs, &ValidationError{Field: field, Reason: reason, Err: ErrInvalidModel})
	}
	if m.Metadata.ID == "" {
		invalid("metadata.id", "empty id")
	}
	seen := make(map[string]bool, len(m.Components))
	for i, c := range m.Components {
		switch {
		case c.ID == "":
			invalid(fmt.Sprintf("components[%d].id", i), "empty id")
		case seen[c.ID]:
			invalid(fmt.Sprintf("components[%d].id", i), fmt.Sprintf("duplicate id %q", c.ID))
		}
		seen[c.ID] = true
	}
	for i, g := range m.Geometries {
		field := fmt.Sprintf("geometries[%d]", i)
		if !seen[g.ComponentID] {
			invalid(field+".componentId", fmt.Sprintf("unknown component %q", g.ComponentID))
		}
		b := g.BoundingBox
		for axis := range 3 {
			lo, hi := b.Min[axis], b.Max[axis]
			if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
				invalid(field+".boundingBox", "non-finite coordinate")
				break
			}
			if lo > hi {
				invalid(field+".boundingBox", fmt.Sprintf("min > max on axis %d", axis))
				break
			}
		}
	}
	return errors.Join(errs...)
}
