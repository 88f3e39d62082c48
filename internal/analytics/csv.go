package analytics

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

var csvHeader = []string{"Date", "Time", "Doctor", "Patient", "Phone", "Service", "Amount", "Visit", "Payment", "Method"}

// WriteRangeCSV renders the filtered range as a semicolon-separated export.
// The UTF-8 BOM is written first so spreadsheet tools pick the right encoding,
// and the semicolon separator keeps locales that use a decimal comma happy.
func WriteRangeCSV(w io.Writer, appts []*types.Appointment, doctors []*types.Doctor, services []*types.Service) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	doctorNames := make(map[string]string, len(doctors))
	for _, d := range doctors {
		doctorNames[d.ID] = d.Name
	}
	serviceNames := make(map[string]string, len(services))
	for _, s := range services {
		serviceNames[s.ID] = s.Name
	}

	rows := make([]*types.Appointment, len(appts))
	copy(rows, appts)
	SortBySchedule(rows)

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range rows {
		record := []string{
			a.Date,
			a.Time,
			doctorNames[a.DoctorID],
			a.PatientName,
			a.Phone,
			serviceNames[a.ServiceID],
			strconv.FormatInt(a.Price, 10),
			visitLabel(a.StatusVisit),
			paymentLabel(a.StatusPayment),
			methodLabel(a.PaymentMethod),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func visitLabel(v types.VisitStatus) string {
	switch v {
	case types.VisitDone:
		return "Done"
	case types.VisitNoShow:
		return "No-show"
	default:
		return "Scheduled"
	}
}

func paymentLabel(p types.PaymentStatus) string {
	switch p {
	case types.PaymentPaid:
		return "Paid"
	case types.PaymentPartial:
		return "Partial"
	default:
		return "Unpaid"
	}
}

func methodLabel(m types.PaymentMethod) string {
	switch m {
	case types.MethodCash:
		return "Cash"
	case types.MethodCard:
		return "Card"
	case types.MethodOnline:
		return "Online"
	default:
		return ""
	}
}
