package converter

import (
	"time"

	"clinic-frontdesk/internal/delivery/dto"
	"clinic-frontdesk/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// SessionStatsToResponse is where stats get rounded, to two decimals
func SessionStatsToResponse(stats entity.SessionStats) dto.SessionStatsResponse {
	return dto.SessionStatsResponse{
		DoctorID:                   stats.DoctorID,
		SessionName:                stats.SessionName,
		TotalPatients:              stats.TotalPatients,
		Completed:                  stats.Completed,
		WaitingAtClose:             stats.WaitingAtClose,
		Called:                     stats.Called,
		Skipped:                    stats.Skipped,
		NoShow:                     stats.NoShow,
		AverageWaitMinutes:         roundMinutes(stats.AverageWait),
		AverageConsultationMinutes: roundMinutes(stats.AverageConsultation),
		TotalRevenue:               stats.TotalRevenue.StringFixed(2),
	}
}

func roundMinutes(d time.Duration) float64 {
	return decimal.NewFromInt(int64(d)).
		Div(decimal.NewFromInt(int64(time.Minute))).
		Round(2).
		InexactFloat64()
}
