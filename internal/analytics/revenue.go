package analytics

import (
	"strings"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// IsRevenue reports whether an appointment counts toward realized revenue:
// the patient was seen and at least partial payment occurred. A partial
// payment contributes the full price. Historical reports were built on this
// rule; changing it would restate every past figure.
func IsRevenue(a *types.Appointment) bool {
	return a.StatusVisit == types.VisitDone && a.StatusPayment != types.PaymentUnpaid
}

// SumRevenue totals the price of every revenue-eligible appointment.
func SumRevenue(appts []*types.Appointment) int64 {
	var total int64
	for _, a := range appts {
		if IsRevenue(a) {
			total += a.Price
		}
	}
	return total
}

// RevenueReport aggregates realized revenue, clinic-wide and per doctor.
type RevenueReport struct {
	Total    int64            `json:"total"`
	ByDoctor map[string]int64 `json:"byDoctor"`
}

func buildRevenueReport(appts []*types.Appointment) RevenueReport {
	report := RevenueReport{ByDoctor: make(map[string]int64)}
	for _, a := range appts {
		if !IsRevenue(a) {
			continue
		}
		report.Total += a.Price
		report.ByDoctor[a.DoctorID] += a.Price
	}
	return report
}

// DailyRevenue reports realized revenue for a single calendar day.
func DailyRevenue(all []*types.Appointment, date string) RevenueReport {
	var matched []*types.Appointment
	for _, a := range all {
		if a.Date == date {
			matched = append(matched, a)
		}
	}
	return buildRevenueReport(matched)
}

// MonthlyRevenue reports realized revenue for a YYYY-MM month. The date label
// is fixed-width, so a prefix match selects the month.
func MonthlyRevenue(all []*types.Appointment, month string) RevenueReport {
	var matched []*types.Appointment
	for _, a := range all {
		if strings.HasPrefix(a.Date, month) {
			matched = append(matched, a)
		}
	}
	return buildRevenueReport(matched)
}

// YearlyRevenue reports realized revenue for a YYYY year.
func YearlyRevenue(all []*types.Appointment, year string) RevenueReport {
	var matched []*types.Appointment
	for _, a := range all {
		if len(a.Date) >= 4 && a.Date[:4] == year {
			matched = append(matched, a)
		}
	}
	return buildRevenueReport(matched)
}
