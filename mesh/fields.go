package mesh

import (
	"fmt"
	"sort"
)

// EntityKind says which mesh entities a field is attached to
type EntityKind uint8

const (
	NodeEntity EntityKind = iota
	CellEntity
)

func (ek EntityKind) String() string {
	return [...]string{"Node", "Cell"}[ek]
}

// Field is a dense arena of Width reals per entity, addressed by the
// entity's index in the mesh.
type Field struct {
	Name  string
	Kind  EntityKind
	Width int
	Data  []float64 // Entity major: [entity*Width + component]
}

// At returns the slice of values owned by entity id, writes go through
func (f *Field) At(id int) []float64 {
	return f.Data[id*f.Width : (id+1)*f.Width]
}

// Set overwrites the values for entity id
func (f *Field) Set(id int, vals ...float64) {
	if len(vals) != f.Width {
		panic(fmt.Errorf("field %q has width %d, got %d values", f.Name, f.Width, len(vals)))
	}
	copy(f.At(id), vals)
}

// Len is the number of entities in the arena
func (f *Field) Len() int {
	if f.Width == 0 {
		return 0
	}
	return len(f.Data) / f.Width
}

func (f *Field) resize(n int) {
	if len(f.Data) == n*f.Width {
		return
	}
	data := make([]float64, n*f.Width)
	copy(data, f.Data)
	f.Data = data
}

func (m *Mesh) entityCount(kind EntityKind) int {
	if kind == CellEntity {
		return m.NumElements
	}
	return m.NumVertices
}

// CreateField attaches a zeroed field to the mesh. Creating a field that
// already exists with the same shape returns the existing one.
func (m *Mesh) CreateField(name string, kind EntityKind, width int) (*Field, error) {
	if width < 1 {
		return nil, fmt.Errorf("field %q: width must be positive, have %d", name, width)
	}
	if f, ok := m.fields[name]; ok {
		if f.Kind != kind || f.Width != width {
			return nil, fmt.Errorf("field %q already exists as %s field of width %d",
				name, f.Kind, f.Width)
		}
		return f, nil
	}
	f := &Field{
		Name:  name,
		Kind:  kind,
		Width: width,
		Data:  make([]float64, m.entityCount(kind)*width),
	}
	m.fields[name] = f
	return f, nil
}

// Field looks up a field by name
func (m *Mesh) Field(name string) (f *Field, ok bool) {
	f, ok = m.fields[name]
	return
}

// DeleteField removes a field from the mesh
func (m *Mesh) DeleteField(name string) {
	delete(m.fields, name)
}

// FieldNames returns the attached field names in sorted order
func (m *Mesh) FieldNames() (names []string) {
	for name := range m.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}
