package http

import (
	"net/http"

	"clinic-frontdesk/internal/delivery/http/handler"
	"clinic-frontdesk/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router           *mux.Router
	queueHandler     *handler.QueueHandler
	doctorHandler    *handler.DoctorHandler
	sessionHandler   *handler.SessionHandler
	patientHandler   *handler.PatientHandler
	auditLogHandler  *handler.AuditLogHandler
	authMiddleware   *middleware.AuthMiddleware
	tenantMiddleware *middleware.TenantMiddleware
	corsMiddleware   *middleware.CORSMiddleware
}

func NewRouter(
	queueHandler *handler.QueueHandler,
	doctorHandler *handler.DoctorHandler,
	sessionHandler *handler.SessionHandler,
	patientHandler *handler.PatientHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	tenantMiddleware *middleware.TenantMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:           mux.NewRouter(),
		queueHandler:     queueHandler,
		doctorHandler:    doctorHandler,
		sessionHandler:   sessionHandler,
		patientHandler:   patientHandler,
		auditLogHandler:  auditLogHandler,
		authMiddleware:   authMiddleware,
		tenantMiddleware: tenantMiddleware,
		corsMiddleware:   corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Queue (front desk)
	queue := r.clinicScoped(api, "/queue")
	queue.Use(middleware.RequireStaff)
	queue.HandleFunc("", r.queueHandler.GetQueue).Methods(http.MethodGet)
	queue.HandleFunc("/checkin", r.queueHandler.CheckIn).Methods(http.MethodPost)
	queue.HandleFunc("/{id}/call", r.queueHandler.CallPatient).Methods(http.MethodPost)
	queue.HandleFunc("/{id}/skip", r.queueHandler.SkipPatient).Methods(http.MethodPost)
	queue.HandleFunc("/{id}/rejoin", r.queueHandler.RejoinPatient).Methods(http.MethodPost)
	queue.HandleFunc("/{id}/complete", r.queueHandler.CompletePatient).Methods(http.MethodPost)
	queue.HandleFunc("/{id}/no-show", r.queueHandler.MarkNoShow).Methods(http.MethodPost)
	queue.HandleFunc("/{id}/extend", r.queueHandler.ExtendConsultation).Methods(http.MethodPost)

	// Doctor sessions and availability
	doctors := r.clinicScoped(api, "/doctors")
	doctors.Use(middleware.RequireStaff)
	doctors.HandleFunc("", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/sessions/start", r.sessionHandler.StartSession).Methods(http.MethodPost)
	doctors.HandleFunc("/{id}/sessions/end", r.sessionHandler.EndSession).Methods(http.MethodPost)
	doctors.HandleFunc("/{id}/sessions/{name}/stats", r.sessionHandler.GetSessionStats).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/status", r.sessionHandler.SetDoctorStatus).Methods(http.MethodPut)
	doctors.HandleFunc("/{id}/leave/end", r.sessionHandler.EndLeave).Methods(http.MethodPost)
	doctors.Handle("/{id}/tokens", middleware.RequireFrontDesk(http.HandlerFunc(r.sessionHandler.AddTokens))).Methods(http.MethodPost)

	// Patients
	patients := r.clinicScoped(api, "/patients")
	patients.Use(middleware.RequireFrontDesk)
	patients.HandleFunc("/{id}", r.patientHandler.GetPatient).Methods(http.MethodGet)
	patients.HandleFunc("/{id}/phone", r.patientHandler.UpdatePhone).Methods(http.MethodPut)
	patients.HandleFunc("/{id}/family", r.patientHandler.GetFamily).Methods(http.MethodGet)

	// Admin routes (admin only)
	admin := r.clinicScoped(api, "/admin")
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.DeactivateDoctor).Methods(http.MethodDelete)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.ListAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Preflights must match a route for router middleware to run
	r.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

// clinicScoped requires a valid token and an active clinic
func (r *Router) clinicScoped(api *mux.Router, prefix string) *mux.Router {
	sub := api.PathPrefix(prefix).Subrouter()
	sub.Use(r.authMiddleware.Authenticate)
	sub.Use(r.tenantMiddleware.Resolve)
	return sub
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
