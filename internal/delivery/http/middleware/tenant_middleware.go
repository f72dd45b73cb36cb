package middleware

import (
	"net/http"

	"clinic-frontdesk/internal/domain/repository"
	"clinic-frontdesk/pkg/response"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TenantMiddleware rejects requests whose clinic is missing or inactive.
// It runs after Authenticate, which puts the clinic id in the context.
type TenantMiddleware struct {
	db         *gorm.DB
	log        *logrus.Logger
	clinicRepo repository.ClinicRepository
}

func NewTenantMiddleware(db *gorm.DB, log *logrus.Logger, clinicRepo repository.ClinicRepository) *TenantMiddleware {
	return &TenantMiddleware{db: db, log: log, clinicRepo: clinicRepo}
}

func (m *TenantMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clinicID, ok := GetClinicIDFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Clinic information not found")
			return
		}

		clinic, err := m.clinicRepo.FindByID(r.Context(), m.db, clinicID)
		if err != nil {
			m.log.Warnf("Failed to resolve clinic %s: %+v", clinicID, err)
			response.Error(w, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry", nil)
			return
		}
		if clinic == nil || !clinic.IsActive {
			response.Forbidden(w, "Clinic is not active")
			return
		}

		next.ServeHTTP(w, r)
	})
}
