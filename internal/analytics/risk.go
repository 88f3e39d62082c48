package analytics

import (
	"math"
	"time"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// RiskLevel is the three-tier bucket for a patient's risk score.
type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskMed  RiskLevel = "med"
	RiskHigh RiskLevel = "high"
)

// Risk is a patient's no-show/non-payment risk estimate.
type Risk struct {
	Level RiskLevel `json:"level"`
	Label string    `json:"label"`
	Score int       `json:"score"`
}

// ComputeRisk scores a single patient's booking history 0..100. The no-show
// rate weighs 70, the unpaid rate 30. When the last appointment is more than
// 120 days before today the score decays by 0.7: stale history should not
// keep flagging a patient as hard as fresh history does. today is the current
// date as a YYYY-MM-DD label.
func ComputeRisk(appts []*types.Appointment, today string) Risk {
	total := len(appts)
	if total == 0 {
		return Risk{Level: RiskLow, Label: "Low", Score: 0}
	}

	var noShow, unpaid int
	for _, a := range appts {
		if a.StatusVisit == types.VisitNoShow {
			noShow++
		}
		if a.StatusPayment == types.PaymentUnpaid {
			unpaid++
		}
	}

	noShowRate := float64(noShow) / float64(total)
	unpaidRate := float64(unpaid) / float64(total)

	score := noShowRate*70 + unpaidRate*30

	last := appts[0]
	for _, a := range appts[1:] {
		if a.Date > last.Date || (a.Date == last.Date && a.Time > last.Time) {
			last = a
		}
	}
	if daysBetween(last.Date, today) > 120 {
		score *= 0.7
	}

	score = math.Max(0, math.Min(100, score))

	level, label := RiskLow, "Low"
	switch {
	case score >= 55:
		level, label = RiskHigh, "High"
	case score >= 25:
		level, label = RiskMed, "Med"
	}

	return Risk{Level: level, Label: label, Score: int(math.Round(score))}
}

// daysBetween returns whole days from one date label to another. Unparseable
// labels count as zero days, which skips the decay rather than guessing.
func daysBetween(from, to string) int {
	f, errF := time.Parse("2006-01-02", from)
	t, errT := time.Parse("2006-01-02", to)
	if errF != nil || errT != nil {
		return 0
	}
	return int(t.Sub(f).Hours() / 24)
}
