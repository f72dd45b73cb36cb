package usecase

import (
	"context"
	"strings"

	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/domain/repository"
	"clinic-frontdesk/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrClinicNameRequired = apperror.New(apperror.KindInvalidArgument, "clinic name is required")

// ClinicUsecase provisions tenants. It is driven from the command line, not
// the HTTP API.
type ClinicUsecase interface {
	CreateClinic(ctx context.Context, name, phone, email, address string) (*entity.Clinic, error)
	GetClinic(ctx context.Context, clinicID uuid.UUID) (*entity.Clinic, error)
}

type clinicUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	clinicRepo repository.ClinicRepository
}

func NewClinicUsecase(db *gorm.DB, log *logrus.Logger, clinicRepo repository.ClinicRepository) ClinicUsecase {
	return &clinicUsecase{db: db, log: log, clinicRepo: clinicRepo}
}

func (u *clinicUsecase) CreateClinic(ctx context.Context, name, phone, email, address string) (*entity.Clinic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrClinicNameRequired
	}

	clinic := &entity.Clinic{
		Name:     name,
		Phone:    strings.TrimSpace(phone),
		Email:    strings.TrimSpace(email),
		Address:  strings.TrimSpace(address),
		IsActive: true,
	}
	if err := u.clinicRepo.Create(ctx, u.db, clinic); err != nil {
		u.log.Warnf("Failed to create clinic: %+v", err)
		return nil, storeError(err)
	}

	u.log.Infof("Clinic created: id=%s, name=%s", clinic.ID, clinic.Name)
	return clinic, nil
}

func (u *clinicUsecase) GetClinic(ctx context.Context, clinicID uuid.UUID) (*entity.Clinic, error) {
	clinic, err := u.clinicRepo.FindByID(ctx, u.db, clinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %s: %+v", clinicID, err)
		return nil, storeError(err)
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}
	return clinic, nil
}
