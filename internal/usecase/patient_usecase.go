package usecase

import (
	"context"

	"clinic-frontdesk/internal/converter"
	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PatientUsecase keeps the family grouping in step with phone edits.
// Grouping is by phone only, so unrelated people sharing a number end up in
// one family.
type PatientUsecase interface {
	GetPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*dto.PatientResponse, error)
	UpdatePatientPhone(ctx context.Context, clinicID, patientID uuid.UUID, req *dto.UpdatePatientPhoneRequest) (*dto.PatientResponse, error)
	GetFamily(ctx context.Context, clinicID, patientID uuid.UUID) (*dto.FamilyResponse, error)
}

type patientUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	patientRepo repository.PatientRepository
	integ       Integrations
	effects     sideEffects
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	integ Integrations,
) PatientUsecase {
	return &patientUsecase{
		db:          db,
		log:         log,
		patientRepo: patientRepo,
		integ:       integ,
		effects:     newSideEffects(log),
	}
}

func (u *patientUsecase) GetPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*dto.PatientResponse, error) {
	patient, err := u.findPatient(ctx, clinicID, patientID)
	if err != nil {
		return nil, err
	}
	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) UpdatePatientPhone(ctx context.Context, clinicID, patientID uuid.UUID, req *dto.UpdatePatientPhoneRequest) (*dto.PatientResponse, error) {
	patient, err := u.findPatient(ctx, clinicID, patientID)
	if err != nil {
		return nil, err
	}

	oldPhone, oldFamily := patient.Phone, patient.FamilyID
	patient.SetPhone(req.Phone)
	if patient.FamilyID == "" {
		return nil, ErrInvalidPhone
	}

	rows, err := u.patientRepo.UpdatePhone(ctx, u.db, clinicID, patientID, patient.Phone, patient.FamilyID)
	if err != nil {
		u.log.Warnf("Failed to update phone of patient %s: %+v", patientID, err)
		return nil, storeError(err)
	}
	if rows == 0 {
		return nil, ErrPatientNotFound
	}

	u.effects.run(ctx,
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionPatientPhoneEdit, "patient", patientID.String(),
			map[string]interface{}{"phone": oldPhone, "family_id": oldFamily},
			map[string]interface{}{"phone": patient.Phone, "family_id": patient.FamilyID}),
	)

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) GetFamily(ctx context.Context, clinicID, patientID uuid.UUID) (*dto.FamilyResponse, error) {
	patient, err := u.findPatient(ctx, clinicID, patientID)
	if err != nil {
		return nil, err
	}

	if patient.FamilyID == "" {
		return &dto.FamilyResponse{
			Members: []dto.PatientResponse{*converter.PatientToResponse(patient)},
			Total:   1,
		}, nil
	}

	members, err := u.patientRepo.FindByFamily(ctx, u.db, clinicID, patient.FamilyID)
	if err != nil {
		u.log.Warnf("Failed to find family %s: %+v", patient.FamilyID, err)
		return nil, storeError(err)
	}

	return &dto.FamilyResponse{
		FamilyID: patient.FamilyID,
		Members:  converter.PatientsToResponses(members),
		Total:    len(members),
	}, nil
}

func (u *patientUsecase) findPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*entity.Patient, error) {
	patient, err := u.patientRepo.FindByID(ctx, u.db, clinicID, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, storeError(err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return patient, nil
}
