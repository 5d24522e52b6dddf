package model

import (
	"time"

	"github.com/google/uuid"
)

// Entity status constants
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

// ValidStatuses is the closed set accepted by the API and the importer.
var ValidStatuses = []string{StatusDraft, StatusActive, StatusArchived}

// Lifecycle phase keys, in chronological order. Each maps to an ISO date
// (YYYY-MM-DD) marking when the entity enters that phase.
const (
	PhasePlan      = "plan"
	PhasePhaseIn   = "phase_in"
	PhaseActive    = "active"
	PhasePhaseOut  = "phase_out"
	PhaseEndOfLife = "end_of_life"
)

// LifecyclePhases lists the five canonical phases.
var LifecyclePhases = []string{PhasePlan, PhasePhaseIn, PhaseActive, PhasePhaseOut, PhaseEndOfLife}

// Entity is one record of the architecture catalog.
type Entity struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	Type        string            `json:"type" db:"entity_type"`
	Name        string            `json:"name" db:"name"`
	Description string            `json:"description" db:"description"`
	Subtype     string            `json:"subtype" db:"subtype"`
	ParentID    *uuid.UUID        `json:"parent_id,omitempty" db:"parent_id"`
	ExternalID  string            `json:"external_id" db:"external_id"`
	Alias       string            `json:"alias" db:"alias"`
	Status      string            `json:"status" db:"status"`
	Lifecycle   map[string]string `json:"lifecycle" db:"lifecycle"`    // phase -> YYYY-MM-DD
	Attributes  map[string]any    `json:"attributes" db:"attributes"`  // schema-typed values
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// ParentIDString returns the parent id as a string, "" when unset.
func (e *Entity) ParentIDString() string {
	if e.ParentID == nil {
		return ""
	}
	return e.ParentID.String()
}

// CreateEntityInput is the payload of a single backend create call.
type CreateEntityInput struct {
	Type        string
	Name        string
	Description string
	Subtype     string
	ParentID    *uuid.UUID
	ExternalID  string
	Alias       string
	Status      string
	Lifecycle   map[string]string
	Attributes  map[string]any
}
