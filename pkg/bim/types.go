// Package bim holds the bridge BIM data model: model metadata, components
// with typed properties, extracted geometry, relationships, and the
// component filter used by the API and the viewer list.
package bim

import "time"

// ComponentType is the structural role of a component.
type ComponentType string

const (
	TypePylon      ComponentType = "Pylon"
	TypeCable      ComponentType = "Cable"
	TypeDeck       ComponentType = "Deck"
	TypeFoundation ComponentType = "Foundation"
	TypeBeam       ComponentType = "Beam"
	TypeColumn     ComponentType = "Column"
	TypeWall       ComponentType = "Wall"
	TypeOther      ComponentType = "Other"
)

// ComponentTypes lists every known type in display order.
var ComponentTypes = []ComponentType{
	TypePylon, TypeCable, TypeDeck, TypeFoundation, TypeBeam, TypeColumn, TypeWall, TypeOther,
}

// Status is the inspection status of a bridge or component. The zero value
// means no status was recorded.
type Status string

const (
	StatusSafe    Status = "SAFE"
	StatusWarning Status = "WARNING"
	StatusDanger  Status = "DANGER"
)

// SourceFormat is the authoring format a model was converted from.
type SourceFormat string

const (
	SourceIFC   SourceFormat = "IFC"
	SourceRevit SourceFormat = "Revit"
	SourceOther SourceFormat = "Other"
)

// GeometryFormat is the storage format of extracted geometry.
type GeometryFormat string

const (
	FormatGLTF GeometryFormat = "glTF"
	FormatOBJ  GeometryFormat = "OBJ"
	FormatIFC  GeometryFormat = "IFC"
)

// RelationshipType classifies a link between two components.
type RelationshipType string

const (
	RelSupports RelationshipType = "SUPPORTS"
	RelContains RelationshipType = "CONTAINS"
	RelConnects RelationshipType = "CONNECTS"
	RelRelated  RelationshipType = "RELATED"
)

// Metadata describes a converted model.
type Metadata struct {
	ID             string         `json:"id" yaml:"id"`
	BridgeID       string         `json:"bridgeId" yaml:"bridgeId"`
	Name           string         `json:"name" yaml:"name"`
	Version        string         `json:"version" yaml:"version"`
	SourceFormat   SourceFormat   `json:"sourceFormat" yaml:"sourceFormat"`
	SourceFileURL  string         `json:"sourceFileUrl,omitempty" yaml:"sourceFileUrl,omitempty"`
	ConvertedAt    time.Time      `json:"convertedAt" yaml:"convertedAt"`
	ComponentCount int            `json:"componentCount" yaml:"componentCount"`
	GeometryFormat GeometryFormat `json:"geometryFormat" yaml:"geometryFormat"`
}

// Property is one key/value attribute of a component.
type Property struct {
	Key   string `json:"key" yaml:"key"`
	Value Value  `json:"value" yaml:"value"`
	Unit  string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Component is a structural element of the bridge.
type Component struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Type        ComponentType `json:"type" yaml:"type"`
	Properties  []Property    `json:"properties" yaml:"properties"`
	ParentID    string        `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	ChildrenIDs []string      `json:"childrenIds,omitempty" yaml:"childrenIds,omitempty"`
	Status      Status        `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   *time.Time    `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Property returns the first property named key.
func (c Component) Property(key string) (Property, bool) {
	for _, p := range c.Properties {
		if p.Key == key {
			return p, true
		}
	}
	return Property{}, false
}

// BoundingBox is an axis-aligned box in model coordinates.
type BoundingBox struct {
	Min [3]float64 `json:"min" yaml:"min"`
	Max [3]float64 `json:"max" yaml:"max"`
}

// Geometry is the extracted shape reference of a component.
type Geometry struct {
	ComponentID string         `json:"componentId" yaml:"componentId"`
	Format      GeometryFormat `json:"format" yaml:"format"`
	URL         string         `json:"url" yaml:"url"`
	BoundingBox BoundingBox    `json:"boundingBox" yaml:"boundingBox"`
	VertexCount int            `json:"vertexCount,omitempty" yaml:"vertexCount,omitempty"`
	FileSize    int64          `json:"fileSize,omitempty" yaml:"fileSize,omitempty"`
}

// Relationship links two components.
type Relationship struct {
	ID              string           `json:"id" yaml:"id"`
	FromComponentID string           `json:"fromComponentId" yaml:"fromComponentId"`
	ToComponentID   string           `json:"toComponentId" yaml:"toComponentId"`
	Type            RelationshipType `json:"type" yaml:"type"`
	Properties      map[string]any   `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Model is one converted BIM model. It is treated as immutable once
// fetched.
type Model struct {
	Metadata      Metadata       `json:"metadata" yaml:"metadata"`
	Components    []Component    `json:"components" yaml:"components"`
	Geometries    []Geometry     `json:"geometries" yaml:"geometries"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

// Bridge is an inspected bridge.
type Bridge struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
	Status   Status `json:"status" yaml:"status"`
}

// SearchResult is one page of filtered components.
type SearchResult struct {
	Components []Component `json:"components"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
}

// SelectionEvent is broadcast when the viewer selection changes.
type SelectionEvent struct {
	ModelID     string    `json:"modelId"`
	ComponentID string    `json:"componentId,omitempty"`
	Selected    bool      `json:"selected"`
	At          time.Time `json:"at"`
}
