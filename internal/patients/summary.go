package patients

import (
	"sort"

	"github.com/Samandar90/Kamilovs-CRM/internal/analytics"
	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// Summary is the derived roster row for one patient. Patients are not stored
// anywhere; every summary is rebuilt from the appointment list on demand.
type Summary struct {
	Key        string         `json:"key"`
	Name       string         `json:"name"`
	Phone      string         `json:"phone"`
	Visits     int            `json:"visits"`
	VisitsDone int            `json:"visitsDone"`
	Revenue    int64          `json:"revenue"`
	LastVisit  string         `json:"lastVisit"`
	Archived   bool           `json:"archived"`
	Risk       analytics.Risk `json:"risk"`
}

// BuildSummaries groups appointments by patient key and derives one Summary
// per patient. The name and phone shown are the ones from the patient's most
// recent booking, since spellings drift over time. today is the current date
// label used for risk decay.
func BuildSummaries(all []*types.Appointment, archived map[string]bool, today string) []Summary {
	groups := make(map[string][]*types.Appointment)
	for _, a := range all {
		if a.PatientName == "" {
			continue
		}
		key := DeriveKey(a.PatientName, a.Phone)
		groups[key] = append(groups[key], a)
	}

	out := make([]Summary, 0, len(groups))
	for key, appts := range groups {
		analytics.SortBySchedule(appts)
		latest := appts[len(appts)-1]

		var done int
		lastVisit := ""
		for _, a := range appts {
			if a.StatusVisit == types.VisitDone {
				done++
				if a.Date > lastVisit {
					lastVisit = a.Date
				}
			}
		}

		out = append(out, Summary{
			Key:        key,
			Name:       latest.PatientName,
			Phone:      latest.Phone,
			Visits:     len(appts),
			VisitsDone: done,
			Revenue:    analytics.SumRevenue(appts),
			LastVisit:  lastVisit,
			Archived:   archived[key],
			Risk:       analytics.ComputeRisk(appts, today),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
