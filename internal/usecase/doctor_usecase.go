package usecase

import (
	"context"
	"strings"

	"clinic-frontdesk/internal/converter"
	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, clinicID uuid.UUID, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context, clinicID uuid.UUID) (*dto.DoctorListResponse, error)
	DeactivateDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) error
}

type doctorUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	doctorRepo repository.DoctorRepository
	integ      Integrations
	effects    sideEffects
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	integ Integrations,
) DoctorUsecase {
	return &doctorUsecase{
		db:         db,
		log:        log,
		doctorRepo: doctorRepo,
		integ:      integ,
		effects:    newSideEffects(log),
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, clinicID uuid.UUID, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	doctor := &entity.Doctor{
		ClinicID:        clinicID,
		Name:            strings.TrimSpace(req.Name),
		Specialty:       strings.TrimSpace(req.Specialty),
		Status:          entity.DoctorStatusAvailable,
		DailyTokenLimit: req.DailyTokenLimit,
		IsActive:        true,
	}

	if err := u.doctorRepo.Create(ctx, u.db, doctor); err != nil {
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, storeError(err)
	}

	u.effects.run(ctx,
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionDoctorCreate, "doctor", doctor.ID.String(), nil, doctor),
	)

	u.log.Infof("Doctor created: id=%s, name=%s", doctor.ID, doctor.Name)
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, u.db, clinicID, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, storeError(err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context, clinicID uuid.UUID) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(ctx, u.db, clinicID)
	if err != nil {
		u.log.Warnf("Failed to find doctors for clinic %s: %+v", clinicID, err)
		return nil, storeError(err)
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

// DeactivateDoctor is a soft delete. Visits and audit rows keep pointing at
// the doctor.
func (u *doctorUsecase) DeactivateDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) error {
	doctor, err := u.doctorRepo.FindByID(ctx, u.db, clinicID, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return storeError(err)
	}
	if doctor == nil || !doctor.IsActive {
		return ErrDoctorNotFound
	}
	if doctor.SessionActive {
		return ErrSessionStillOpen
	}

	rows, err := u.doctorRepo.Deactivate(ctx, u.db, clinicID, doctorID)
	if err != nil {
		u.log.Warnf("Failed to deactivate doctor %s: %+v", doctorID, err)
		return storeError(err)
	}
	if rows == 0 {
		return ErrSessionRaced
	}

	u.effects.run(ctx,
		sideEffect{name: "clear token gate", run: func(ctx context.Context) error {
			return u.integ.Tokens.Clear(ctx, doctorID)
		}},
		auditEffect(ctx, u.integ, u.db, clinicID, entity.AuditActionDoctorDeactivate, "doctor", doctorID.String(),
			map[string]interface{}{"is_active": true},
			map[string]interface{}{"is_active": false}),
	)

	u.log.Infof("Doctor deactivated: id=%s", doctorID)
	return nil
}
