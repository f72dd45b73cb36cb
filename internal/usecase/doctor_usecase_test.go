package usecase

import (
	"context"
	"errors"
	"testing"

	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"

	"github.com/google/uuid"
)

func TestDoctorUsecase_CreateAndList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	clinicID := uuid.New()

	created, err := f.doctors.CreateDoctor(ctx, clinicID, &dto.CreateDoctorRequest{Name: " Dr. Mehta ", Specialty: "ENT", DailyTokenLimit: 30})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Dr. Mehta" || created.Status != string(entity.DoctorStatusAvailable) || !created.IsActive {
		t.Errorf("unexpected doctor %+v", created)
	}

	f.addDoctor(uuid.New(), 5)
	list, err := f.doctors.GetAllDoctors(ctx, clinicID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 1 || list.Doctors[0].ID != created.ID {
		t.Errorf("expected only this clinic's doctor, got %+v", list)
	}

	if _, err := f.doctors.GetDoctor(ctx, uuid.New(), created.ID); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound across clinics, got %v", err)
	}
}

func TestDoctorUsecase_Deactivate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	clinicID := uuid.New()
	doctor := openSession(t, f, clinicID, 5)

	if err := f.doctors.DeactivateDoctor(ctx, clinicID, doctor.ID); !errors.Is(err, ErrSessionStillOpen) {
		t.Fatalf("expected ErrSessionStillOpen, got %v", err)
	}
	if _, err := f.sessions.EndSession(ctx, clinicID, doctor.ID, "Morning"); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := f.doctors.DeactivateDoctor(ctx, clinicID, doctor.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if f.doctor(doctor.ID).IsActive {
		t.Error("expected doctor inactive")
	}
	if err := f.doctors.DeactivateDoctor(ctx, clinicID, doctor.ID); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound for a deactivated doctor, got %v", err)
	}
	if _, err := f.sessions.StartSession(ctx, clinicID, doctor.ID, "Evening"); !errors.Is(err, ErrDoctorInactive) {
		t.Errorf("expected ErrDoctorInactive, got %v", err)
	}
}
