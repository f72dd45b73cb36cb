package converter

import (
	"bytes"
	"encoding/json"

	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"
)

type auditMetadata struct {
	OldValue json.RawMessage `json:"old_value"`
	NewValue json.RawMessage `json:"new_value"`
}

// AuditLogToResponse lifts the stored old/new snapshot out of the metadata
// column. Unreadable metadata leaves both values empty.
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	var meta auditMetadata
	if len(log.Metadata) > 0 {
		_ = json.Unmarshal(log.Metadata, &meta)
	}

	return &dto.AuditLogResponse{
		ID:        log.ID,
		ActorID:   log.ActorID,
		Action:    log.Action,
		Entity:    log.Entity,
		EntityID:  log.EntityID,
		OldValue:  nonNull(meta.OldValue),
		NewValue:  nonNull(meta.NewValue),
		CreatedAt: log.CreatedAt,
	}
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, *AuditLogToResponse(&logs[i]))
	}
	return responses
}

func nonNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return raw
}
