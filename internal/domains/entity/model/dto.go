package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// CreateEntityRequest - POST /catalog/entities
type CreateEntityRequest struct {
	Type        string            `json:"type" binding:"required"`
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description,omitempty"`
	Subtype     string            `json:"subtype,omitempty"`
	ParentID    string            `json:"parent_id,omitempty"`
	ExternalID  string            `json:"external_id,omitempty"`
	Alias       string            `json:"alias,omitempty"`
	Status      string            `json:"status,omitempty"`
	Lifecycle   map[string]string `json:"lifecycle,omitempty"`
	Attributes  map[string]any    `json:"attributes,omitempty"`
}

func (r CreateEntityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type,
			validation.Required.Error("type is required"),
		),
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.ParentID,
			validation.By(optionalUUID),
		),
		validation.Field(&r.Status,
			validation.In(toAnySlice(ValidStatuses)...).Error("status must be draft, active, or archived"),
		),
	)
}

// UpdateEntityRequest - PATCH /catalog/entities/:id
// Pointer fields distinguish "not provided" from "clear this field".
type UpdateEntityRequest struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Subtype     *string           `json:"subtype,omitempty"`
	ParentID    *string           `json:"parent_id,omitempty"`
	ExternalID  *string           `json:"external_id,omitempty"`
	Alias       *string           `json:"alias,omitempty"`
	Status      *string           `json:"status,omitempty"`
	Lifecycle   map[string]string `json:"lifecycle,omitempty"`
	Attributes  map[string]any    `json:"attributes,omitempty"`
}

func (r UpdateEntityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("name cannot be cleared"),
		),
		validation.Field(&r.Status,
			validation.By(func(v interface{}) error {
				s, _ := v.(*string)
				if s == nil || *s == "" {
					return nil
				}
				return validation.In(toAnySlice(ValidStatuses)...).
					Error("status must be draft, active, or archived").
					Validate(*s)
			}),
		),
	)
}

// ImportRequest carries the non-file parts of an import form.
type ImportRequest struct {
	SelectedType string `form:"type"`
	Mode         string `form:"mode"` // "" (sync) or "async"
}

func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Mode,
			validation.In("", "sync", "async").Error("mode must be sync or async"),
		),
	)
}

func optionalUUID(v interface{}) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	return validation.Validate(s, is.UUID.Error("must be a valid UUID"))
}

func toAnySlice(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
