package bim

import (
	"fmt"
	"slices"
	"strings"
)

// Operator is a property comparison.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
)

func (o Operator) valid() bool {
	switch o {
	case OpEquals, OpContains, OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// PropertyFilter matches one property of a component.
type PropertyFilter struct {
	Key      string   `json:"key" yaml:"key"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    Value    `json:"value" yaml:"value"`
}

// Match reports whether c has the property and it satisfies the operator.
func (pf PropertyFilter) Match(c Component) bool {
	p, ok := c.Property(pf.Key)
	if !ok {
		return false
	}
	switch pf.Operator {
	case OpEquals:
		return p.Value.Equal(pf.Value)
	case OpContains:
		return strings.Contains(p.Value.String(), pf.Value.String())
	case OpGreaterThan, OpLessThan:
		a, ok1 := p.Value.Float()
		b, ok2 := pf.Value.Float()
		if !ok1 || !ok2 {
			return false
		}
		if pf.Operator == OpGreaterThan {
			return a > b
		}
		return a < b
	default:
		return false
	}
}

// Filter selects components. Every non-empty group must match.
type Filter struct {
	ComponentType   []ComponentType  `json:"componentType,omitempty" yaml:"componentType,omitempty"`
	Status          []Status         `json:"status,omitempty" yaml:"status,omitempty"`
	PropertyFilters []PropertyFilter `json:"propertyFilters,omitempty" yaml:"propertyFilters,omitempty"`
}

// IsZero reports whether the filter has no criteria.
func (f Filter) IsZero() bool {
	return len(f.ComponentType) == 0 && len(f.Status) == 0 && len(f.PropertyFilters) == 0
}

// Validate rejects unknown operators and empty property keys.
func (f Filter) Validate() error {
	for i, pf := range f.PropertyFilters {
		if pf.Key == "" {
			return &ValidationError{
				Field:  fmt.Sprintf("propertyFilters[%d].key", i),
				Reason: "empty key",
				Err:    ErrInvalidFilter,
			}
		}
		if !pf.Operator.valid() {
			return &ValidationError{
				Field:  fmt.Sprintf("propertyFilters[%d].operator", i),
				Reason: fmt.Sprintf("unknown operator %q", pf.Operator),
				Err:    ErrInvalidFilter,
			}
		}
	}
	return nil
}

// Match reports whether c passes every group of the filter.
func (f Filter) Match(c Component) bool {
	if len(f.ComponentType) > 0 && !slices.Contains(f.ComponentType, c.Type) {
		return false
	}
	if len(f.Status) > 0 && (c.Status == "" || !slices.Contains(f.Status, c.Status)) {
		return false
	}
	for _, pf := range f.PropertyFilters {
		if !pf.Match(c) {
			return false
		}
	}
	return true
}

// Apply returns the matching components in input order.
func (f Filter) Apply(components []Component) []Component {
	out := make([]Component, 0, len(components))
	for _, c := range components {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Paginate slices components into a 1-based page. A non-positive pageSize
// returns everything on page 1.
func Paginate(components []Component, page, pageSize int) SearchResult {
	total := len(components)
	if pageSize <= 0 {
		return SearchResult{Components: components, Total: total, Page: 1, PageSize: total}
	}
	if page < 1 {
		page = 1
	}
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	return SearchResult{
		Components: components[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
	}
}
