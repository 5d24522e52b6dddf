package model

// FieldType is the closed set of attribute types an entity type can declare.
type FieldType string

const (
	FieldTypeText           FieldType = "text"
	FieldTypeNumber         FieldType = "number"
	FieldTypeBoolean        FieldType = "boolean"
	FieldTypeDate           FieldType = "date"
	FieldTypeSingleSelect   FieldType = "single_select"
	FieldTypeMultipleSelect FieldType = "multiple_select"
)

// ValidFieldTypes is used by DTO validation when admins define new fields.
var ValidFieldTypes = []interface{}{
	string(FieldTypeText),
	string(FieldTypeNumber),
	string(FieldTypeBoolean),
	string(FieldTypeDate),
	string(FieldTypeSingleSelect),
	string(FieldTypeMultipleSelect),
}

// FieldOption is one selectable value of a single_select/multiple_select field.
type FieldOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// FieldDefinition describes one typed attribute of an entity type.
type FieldDefinition struct {
	Key      string        `json:"key"`
	Label    string        `json:"label"`
	Type     FieldType     `json:"type"`
	Required bool          `json:"required"`
	ReadOnly bool          `json:"readonly"`
	Options  []FieldOption `json:"options,omitempty"`
}

// HasOption reports whether key is a declared option key.
// Fields without declared options accept any value.
func (f FieldDefinition) HasOption(key string) bool {
	for _, opt := range f.Options {
		if opt.Key == key {
			return true
		}
	}
	return false
}

// EntityType is one entry of the type schema registry.
// Hidden types exist for backend bookkeeping and cannot be imported into.
type EntityType struct {
	Key    string            `json:"key"`
	Label  string            `json:"label"`
	Hidden bool              `json:"hidden"`
	Fields []FieldDefinition `json:"fields"`
}

// Field returns the field definition for key, or nil.
func (t EntityType) Field(key string) *FieldDefinition {
	for i := range t.Fields {
		if t.Fields[i].Key == key {
			return &t.Fields[i]
		}
	}
	return nil
}

// Registry maps entity-type keys to their field schemas. It is built once
// per request/import and treated as read-only afterwards.
type Registry struct {
	types map[string]EntityType
	order []string
}

// NewRegistry builds a registry from a list of entity types, preserving order.
func NewRegistry(types []EntityType) *Registry {
	r := &Registry{types: make(map[string]EntityType, len(types))}
	for _, t := range types {
		if _, dup := r.types[t.Key]; dup {
			continue
		}
		r.types[t.Key] = t
		r.order = append(r.order, t.Key)
	}
	return r
}

// Type looks up an entity type by key, hidden types included.
func (r *Registry) Type(key string) (EntityType, bool) {
	t, ok := r.types[key]
	return t, ok
}

// Types returns all entity types in registration order.
func (r *Registry) Types() []EntityType {
	out := make([]EntityType, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.types[key])
	}
	return out
}

// KnownFieldKey reports whether any registered type declares a field
// with the given key. Used to tell a misspelled attribute column from a
// column that simply belongs to a different type.
func (r *Registry) KnownFieldKey(key string) bool {
	for _, t := range r.types {
		if t.Field(key) != nil {
			return true
		}
	}
	return false
}
