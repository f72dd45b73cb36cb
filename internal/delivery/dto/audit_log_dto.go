package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLogQuery is bound from query parameters
type AuditLogQuery struct {
	Entity   string `validate:"omitempty,oneof=queue_entry doctor patient"`
	EntityID string `validate:"omitempty,max=64"`
	Action   string `validate:"omitempty,max=100"`
	Since    *time.Time
	Limit    int `validate:"omitempty,min=1,max=500"`
}

type AuditLogResponse struct {
	ID        int64           `json:"id"`
	ActorID   *uuid.UUID      `json:"actor_id,omitempty"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	OldValue  json.RawMessage `json:"old_value,omitempty"`
	NewValue  json.RawMessage `json:"new_value,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
