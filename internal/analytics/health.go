package analytics

import (
	"math"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// HealthReport is the clinic-wide operational health estimate.
type HealthReport struct {
	Score      int     `json:"score"`
	NoShowRate float64 `json:"noShowRate"`
}

// ComputeHealth scores the entire appointment set 0..100. No-shows cost up to
// 55 points, unpaid bookings up to 25, and a high done-rate earns back up to
// 6. An empty set reads as a healthy idle clinic, not an alarmed one.
func ComputeHealth(all []*types.Appointment) HealthReport {
	if len(all) == 0 {
		return HealthReport{Score: 100, NoShowRate: 0}
	}

	var done, noShow, scheduled, paidLike int
	for _, a := range all {
		switch a.StatusVisit {
		case types.VisitDone:
			done++
		case types.VisitNoShow:
			noShow++
		case types.VisitScheduled:
			scheduled++
		}
		if a.StatusPayment != types.PaymentUnpaid {
			paidLike++
		}
	}

	denom := done + noShow + scheduled
	if denom < 1 {
		denom = 1
	}
	noShowRate := float64(noShow) / float64(denom)

	score := 100
	score -= int(math.Round(noShowRate * 55))

	unpaidRate := 1 - float64(paidLike)/float64(len(all))
	score -= int(math.Round(unpaidRate * 25))

	doneRate := float64(done) / float64(denom)
	score += int(math.Round(doneRate * 6))

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return HealthReport{Score: score, NoShowRate: noShowRate}
}
