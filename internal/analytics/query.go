package analytics

import (
	"sort"
	"strings"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// RangeFilter selects appointments for the table view, the doctor-load widget
// and the CSV export. All three go through FilterByRange so they always agree
// on what is in range.
type RangeFilter struct {
	From     string
	To       string
	DoctorID string
	Search   string
}

// FilterByRange keeps appointments whose date lies in [From, To] inclusive.
// The comparison is lexicographic, which is correct only because the date
// label is fixed-width and zero-padded. DoctorID matches exactly; Search is a
// case-insensitive substring match against patient name plus phone.
func FilterByRange(all []*types.Appointment, f RangeFilter) []*types.Appointment {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]*types.Appointment, 0, len(all))
	for _, a := range all {
		if f.From != "" && a.Date < f.From {
			continue
		}
		if f.To != "" && a.Date > f.To {
			continue
		}
		if f.DoctorID != "" && a.DoctorID != f.DoctorID {
			continue
		}
		if search != "" {
			text := strings.ToLower(a.PatientName + " " + a.Phone)
			if !strings.Contains(text, search) {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// SortBySchedule orders appointments by date then time ascending, in place.
func SortBySchedule(appts []*types.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].Time < appts[j].Time
	})
}
