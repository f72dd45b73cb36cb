package dto

import "github.com/google/uuid"

// Request DTOs

type SessionRequest struct {
	SessionName string `json:"session_name" validate:"required,min=1,max=100"`
}

// Response DTOs

// SessionStatsResponse carries figures rounded to two decimals
type SessionStatsResponse struct {
	DoctorID                   uuid.UUID `json:"doctor_id"`
	SessionName                string    `json:"session_name"`
	TotalPatients              int       `json:"total_patients"`
	Completed                  int       `json:"completed"`
	WaitingAtClose             int       `json:"waiting_at_close"`
	Called                     int       `json:"called"`
	Skipped                    int       `json:"skipped"`
	NoShow                     int       `json:"no_show"`
	AverageWaitMinutes         float64   `json:"average_wait_minutes"`
	AverageConsultationMinutes float64   `json:"average_consultation_minutes"`
	TotalRevenue               string    `json:"total_revenue"`
}

type EndSessionResponse struct {
	Doctor        DoctorResponse       `json:"doctor"`
	Stats         SessionStatsResponse `json:"stats"`
	ClosedEntries int64                `json:"closed_entries"`
	Summary       string               `json:"summary,omitempty"`
	ReportKey     string               `json:"report_key,omitempty"`
}
