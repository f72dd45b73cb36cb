package service

import (
	"time"

	"clinic-frontdesk/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// AggregateSessionStats is a pure function of the visit rows of one session.
// Visits missing a timestamp are left out of the matching average instead of
// counting as zero. No rounding is applied here.
func AggregateSessionStats(clinicID, doctorID uuid.UUID, sessionName string, visits []entity.Visit) entity.SessionStats {
	stats := entity.SessionStats{
		ClinicID:      clinicID,
		DoctorID:      doctorID,
		SessionName:   sessionName,
		TotalPatients: len(visits),
		TotalRevenue:  decimal.Zero,
	}

	countStatus := func(status entity.QueueStatus) int {
		return lo.CountBy(visits, func(v entity.Visit) bool { return v.Status == status })
	}
	stats.Completed = countStatus(entity.QueueStatusCompleted)
	stats.WaitingAtClose = countStatus(entity.QueueStatusWaiting)
	stats.Called = countStatus(entity.QueueStatusCalled)
	stats.Skipped = countStatus(entity.QueueStatusSkipped)
	stats.NoShow = countStatus(entity.QueueStatusNoShow)

	seen := lo.Filter(visits, func(v entity.Visit, _ int) bool {
		return v.Status == entity.QueueStatusCompleted || v.Status == entity.QueueStatusCalled
	})

	waits := lo.FilterMap(seen, func(v entity.Visit, _ int) (time.Duration, bool) {
		return v.WaitDuration()
	})
	stats.AverageWait, stats.WaitSamples = average(waits), len(waits)

	consults := lo.FilterMap(seen, func(v entity.Visit, _ int) (time.Duration, bool) {
		return v.ConsultationDuration()
	})
	stats.AverageConsultation, stats.ConsultationSamples = average(consults), len(consults)

	stats.TotalRevenue = lo.Reduce(visits, func(sum decimal.Decimal, v entity.Visit, _ int) decimal.Decimal {
		return sum.Add(v.FeeOrZero())
	}, decimal.Zero)

	return stats
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	return lo.Sum(durations) / time.Duration(len(durations))
}
