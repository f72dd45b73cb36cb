package usecase

import (
	"errors"

	"clinic-frontdesk/internal/domain/repository"
	"clinic-frontdesk/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrClinicNotFound     = apperror.New(apperror.KindNotFound, "clinic not found")
	ErrQueueEntryNotFound = apperror.New(apperror.KindNotFound, "queue entry not found")
	ErrDoctorNotFound     = apperror.New(apperror.KindNotFound, "doctor not found")
	ErrPatientNotFound    = apperror.New(apperror.KindNotFound, "patient not found")
	ErrAuditLogNotFound   = apperror.New(apperror.KindNotFound, "audit log not found")

	ErrEntryNotWaiting    = apperror.New(apperror.KindInvalidState, "patient is not waiting in the queue - refresh queue")
	ErrEntryNotCalled     = apperror.New(apperror.KindInvalidState, "patient is not in consultation - refresh queue")
	ErrEntryNotSkippable  = apperror.New(apperror.KindInvalidState, "only waiting or called patients can be skipped")
	ErrEntryNotRejoinable = apperror.New(apperror.KindInvalidState, "only skipped or no-show patients can rejoin")
	ErrSessionNotActive   = apperror.New(apperror.KindInvalidState, "doctor has no active session for this patient")
	ErrDoctorOnLeave      = apperror.New(apperror.KindInvalidState, "doctor is on leave")
	ErrDoctorInactive     = apperror.New(apperror.KindInvalidState, "doctor is deactivated")
	ErrTokensExhausted    = apperror.New(apperror.KindInvalidState, "no tokens left for this session - add tokens first")
	ErrSessionActive      = apperror.New(apperror.KindInvalidState, "doctor already has an active session with a different name - end it first")
	ErrSessionMismatch    = apperror.New(apperror.KindInvalidState, "session is not the doctor's active session")
	ErrLeaveNotEnded      = apperror.New(apperror.KindInvalidState, "doctor is on leave - end the leave before setting available")
	ErrNotOnLeave         = apperror.New(apperror.KindInvalidState, "doctor is not on leave")
	ErrSessionStillOpen   = apperror.New(apperror.KindInvalidState, "end the doctor's session before deactivating")

	ErrDoctorMismatch      = apperror.New(apperror.KindInvalidArgument, "queue entry belongs to a different doctor")
	ErrInvalidTokenAmount  = apperror.New(apperror.KindInvalidArgument, "token amount must be a positive integer")
	ErrSessionNameRequired = apperror.New(apperror.KindInvalidArgument, "session name is required")
	ErrInvalidDoctorStatus = apperror.New(apperror.KindInvalidArgument, "status must be one of available, busy, on_leave")
	ErrInvalidExtension    = apperror.New(apperror.KindInvalidArgument, "extension minutes must be positive")
	ErrInvalidPhone        = apperror.New(apperror.KindInvalidArgument, "phone must contain digits")
	ErrPatientRequired     = apperror.New(apperror.KindInvalidArgument, "patient id or name is required")
	ErrNegativeFee         = apperror.New(apperror.KindInvalidArgument, "fee must not be negative")

	ErrCallRaced        = apperror.New(apperror.KindConflict, "patient already called by another session - refresh queue")
	ErrQueueChanged     = apperror.New(apperror.KindConflict, "queue changed while updating - refresh queue")
	ErrSessionRaced     = apperror.New(apperror.KindConflict, "session changed concurrently - refresh and retry")
	ErrStatusRaced      = apperror.New(apperror.KindConflict, "doctor status changed concurrently - refresh and retry")
	ErrAlreadyCheckedIn = apperror.New(apperror.KindConflict, "patient already checked in for this session")
)

// storeError passes typed errors through and turns everything else into
// Unavailable.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.KindOf(err) != apperror.KindUnknown {
		return err
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return apperror.Wrap(apperror.KindConflict, "record changed concurrently - refresh and retry", err)
	}
	return apperror.Wrap(apperror.KindUnavailable, "clinic store unavailable", err)
}

// logFailure logs store errors and passes domain errors through untouched
func logFailure(log *logrus.Logger, action string, id uuid.UUID, err error) error {
	mapped := storeError(err)
	if mapped != err {
		log.Warnf("Failed to %s %s: %+v", action, id, err)
	}
	return mapped
}
