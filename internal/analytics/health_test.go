package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

func TestComputeHealth_IdleClinic(t *testing.T) {
	report := ComputeHealth(nil)

	assert.Equal(t, 100, report.Score)
	assert.Equal(t, 0.0, report.NoShowRate)
}

func TestComputeHealth_MixedDay(t *testing.T) {
	// 10 appointments: 5 done, 2 no-show, 3 scheduled, 4 unpaid.
	// 100 - round(0.2*55) - round(0.4*25) + round(0.5*6) = 100 - 11 - 10 + 3.
	var appts []*types.Appointment
	for i := 0; i < 5; i++ {
		appts = append(appts, appt("2025-05-20", "09:00", types.VisitDone, types.PaymentPaid))
	}
	appts = append(appts,
		appt("2025-05-20", "10:00", types.VisitNoShow, types.PaymentUnpaid),
		appt("2025-05-20", "10:30", types.VisitNoShow, types.PaymentUnpaid),
		appt("2025-05-20", "11:00", types.VisitScheduled, types.PaymentUnpaid),
		appt("2025-05-20", "11:30", types.VisitScheduled, types.PaymentUnpaid),
		appt("2025-05-20", "12:00", types.VisitScheduled, types.PaymentPaid),
	)

	report := ComputeHealth(appts)

	assert.Equal(t, 82, report.Score)
	assert.InDelta(t, 0.2, report.NoShowRate, 1e-9)
}

func TestComputeHealth_AllNoShowUnpaidHitsFloor(t *testing.T) {
	appts := []*types.Appointment{
		appt("2025-05-20", "09:00", types.VisitNoShow, types.PaymentUnpaid),
		appt("2025-05-20", "09:30", types.VisitNoShow, types.PaymentUnpaid),
	}

	report := ComputeHealth(appts)

	// 100 - 55 - 25 = 20; never below zero even with worse inputs.
	assert.Equal(t, 20, report.Score)
	assert.GreaterOrEqual(t, report.Score, 0)
}

func TestComputeHealth_PerfectDay(t *testing.T) {
	appts := []*types.Appointment{
		appt("2025-05-20", "09:00", types.VisitDone, types.PaymentPaid),
		appt("2025-05-20", "09:30", types.VisitDone, types.PaymentPaid),
	}

	report := ComputeHealth(appts)

	// 100 + 6 clamps at 100.
	assert.Equal(t, 100, report.Score)
}
