package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

func priced(date string, visit types.VisitStatus, payment types.PaymentStatus, price int64) *types.Appointment {
	a := appt(date, "09:00", visit, payment)
	a.Price = price
	return a
}

func TestIsRevenue(t *testing.T) {
	assert.True(t, IsRevenue(priced("2025-05-20", types.VisitDone, types.PaymentPaid, 100)))
	assert.True(t, IsRevenue(priced("2025-05-20", types.VisitDone, types.PaymentPartial, 100)))
	assert.False(t, IsRevenue(priced("2025-05-20", types.VisitDone, types.PaymentUnpaid, 100)))
	assert.False(t, IsRevenue(priced("2025-05-20", types.VisitScheduled, types.PaymentPaid, 100)))
	assert.False(t, IsRevenue(priced("2025-05-20", types.VisitNoShow, types.PaymentPaid, 100)))
}

func TestSumRevenue_PartialCountsFullPrice(t *testing.T) {
	appts := []*types.Appointment{
		priced("2025-05-20", types.VisitDone, types.PaymentPartial, 150000),
		priced("2025-05-20", types.VisitDone, types.PaymentUnpaid, 99999),
	}

	assert.Equal(t, int64(150000), SumRevenue(appts))
}

func TestDailyRevenue(t *testing.T) {
	appts := []*types.Appointment{
		priced("2025-05-20", types.VisitDone, types.PaymentPaid, 100),
		priced("2025-05-21", types.VisitDone, types.PaymentPaid, 200),
	}

	report := DailyRevenue(appts, "2025-05-20")

	assert.Equal(t, int64(100), report.Total)
	assert.Equal(t, int64(100), report.ByDoctor["D"])
}

func TestMonthlyRevenue_SelectsByPrefix(t *testing.T) {
	appts := []*types.Appointment{
		priced("2025-05-20", types.VisitDone, types.PaymentPaid, 100),
		priced("2025-05-31", types.VisitDone, types.PaymentPaid, 200),
		priced("2025-06-01", types.VisitDone, types.PaymentPaid, 400),
	}

	assert.Equal(t, int64(300), MonthlyRevenue(appts, "2025-05").Total)
	assert.Equal(t, int64(400), MonthlyRevenue(appts, "2025-06").Total)
}

func TestYearlyRevenue(t *testing.T) {
	appts := []*types.Appointment{
		priced("2024-12-31", types.VisitDone, types.PaymentPaid, 100),
		priced("2025-01-01", types.VisitDone, types.PaymentPaid, 200),
	}

	assert.Equal(t, int64(100), YearlyRevenue(appts, "2024").Total)
	assert.Equal(t, int64(200), YearlyRevenue(appts, "2025").Total)
}

// Advancing a payment status never lowers total revenue.
func TestRevenueMonotonicUnderPaymentProgress(t *testing.T) {
	a := priced("2025-05-20", types.VisitDone, types.PaymentUnpaid, 500)
	appts := []*types.Appointment{a}

	before := SumRevenue(appts)
	a.StatusPayment = a.StatusPayment.Next() // partial
	mid := SumRevenue(appts)
	a.StatusPayment = a.StatusPayment.Next() // paid
	after := SumRevenue(appts)

	assert.LessOrEqual(t, before, mid)
	assert.LessOrEqual(t, mid, after)
}
