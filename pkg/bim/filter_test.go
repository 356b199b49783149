package bim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoModel(t *testing.T) Model {
	t.Helper()
	f, err := DefaultFixtures()
	require.NoError(t, err)
	require.NotEmpty(t, f.Models)
	return f.Models[0]
}

func ids(cs []Component) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestFilterApply(t *testing.T) {
	m := demoModel(t)
	m.Components = append(m.Components, Component{ID: "comp-4", Type: TypeBeam})

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter keeps all", Filter{}, []string{"comp-1", "comp-2", "comp-3", "comp-4"}},
		{"warning only", Filter{Status: []Status{StatusWarning}}, []string{"comp-3"}},
		{"no status never matches", Filter{Status: []Status{StatusSafe, StatusWarning}}, []string{"comp-1", "comp-2", "comp-3"}},
		{"type", Filter{ComponentType: []ComponentType{TypeCable, TypeDeck}}, []string{"comp-2", "comp-3"}},
		{"type and status", Filter{ComponentType: []ComponentType{TypePylon, TypeDeck}, Status: []Status{StatusSafe}}, []string{"comp-1"}},
		{
			"equals string",
			Filter{PropertyFilters: []PropertyFilter{{Key: "material", Operator: OpEquals, Value: String("Concrete")}}},
			[]string{"comp-1", "comp-3"},
		},
		{
			"equals is typed",
			Filter{PropertyFilters: []PropertyFilter{{Key: "height", Operator: OpEquals, Value: String("50")}}},
			[]string{},
		},
		{
			"equals number",
			Filter{PropertyFilters: []PropertyFilter{{Key: "height", Operator: OpEquals, Value: Number(50)}}},
			[]string{"comp-1"},
		},
		{
			"contains renders numbers",
			Filter{PropertyFilters: []PropertyFilter{{Key: "tension", Operator: OpContains, Value: Number(500)}}},
			[]string{"comp-2"},
		},
		{
			"greater than",
			Filter{PropertyFilters: []PropertyFilter{{Key: "thickness", Operator: OpGreaterThan, Value: String("0.1")}}},
			[]string{"comp-3"},
		},
		{
			"less than non numeric fails",
			Filter{PropertyFilters: []PropertyFilter{{Key: "material", Operator: OpLessThan, Value: Number(1)}}},
			[]string{},
		},
		{
			"missing key fails",
			Filter{PropertyFilters: []PropertyFilter{{Key: "span", Operator: OpGreaterThan, Value: Number(0)}}},
			[]string{},
		},
		{
			"groups are ANDed",
			Filter{
				Status:          []Status{StatusSafe},
				PropertyFilters: []PropertyFilter{{Key: "material", Operator: OpEquals, Value: String("Steel")}},
			},
			[]string{"comp-2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(m.Components)))
		})
	}
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{}.Validate())

	err := Filter{PropertyFilters: []PropertyFilter{{Key: "height", Operator: "between"}}}.Validate()
	require.ErrorIs(t, err, ErrInvalidFilter)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "propertyFilters[0].operator", ve.Field)

	err = Filter{PropertyFilters: []PropertyFilter{{Operator: OpEquals}}}.Validate()
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestFilterJSON(t *testing.T) {
	raw := `{"status":["WARNING"],"propertyFilters":[{"key":"width","operator":"greaterThan","value":10}]}`
	var f Filter
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	require.NoError(t, f.Validate())
	assert.Equal(t, KindNumber, f.PropertyFilters[0].Value.Kind())
	assert.Equal(t, []string{"comp-3"}, ids(f.Apply(demoModel(t).Components)))
}

func TestPaginate(t *testing.T) {
	cs := demoModel(t).Components
	tests := []struct {
		page, size int
		want       []string
		wantPage   int
	}{
		{1, 2, []string{"comp-1", "comp-2"}, 1},
		{2, 2, []string{"comp-3"}, 2},
		{3, 2, []string{}, 3},
		{0, 2, []string{"comp-1", "comp-2"}, 1},
		{1, 0, []string{"comp-1", "comp-2", "comp-3"}, 1},
	}
	for _, tt := range tests {
		r := Paginate(cs, tt.page, tt.size)
		assert.Equal(t, tt.want, ids(r.Components))
		assert.Equal(t, 3, r.Total)
		assert.Equal(t, tt.wantPage, r.Page)
	}
}

func TestNumericComparisonOfBools(t *testing.T) {
	c := Component{ID: "c", Properties: []Property{{Key: "inspected", Value: Bool(true)}, {Key: "cracked", Value: Bool(false)}}}
	gt := func(key string, v Value) bool {
		return PropertyFilter{Key: key, Operator: OpGreaterThan, Value: v}.Match(c)
	}
	assert.True(t, gt("inspected", Number(0)))
	assert.False(t, gt("cracked", Number(0)))
	assert.True(t, PropertyFilter{Key: "cracked", Operator: OpLessThan, Value: Bool(true)}.Match(c))

	f, ok := Bool(true).Float()
	assert.True(t, ok)
	assert.InDelta(t, 1.0, f, 0)
}
