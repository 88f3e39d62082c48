package analytics

import (
	"math"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// DoctorLoad is one active doctor's booking count over a filtered range,
// normalized against the busiest doctor.
type DoctorLoad struct {
	DoctorID string `json:"doctorId"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Percent  int    `json:"percent"`
}

// BuildDoctorLoad counts range appointments per doctor and scales each active
// doctor's count to the maximum seen.
func BuildDoctorLoad(doctors []*types.Doctor, rangeAppts []*types.Appointment) []DoctorLoad {
	counts := make(map[string]int)
	for _, a := range rangeAppts {
		if a.DoctorID == "" {
			continue
		}
		counts[a.DoctorID]++
	}

	maxCount := 1
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	var out []DoctorLoad
	for _, d := range doctors {
		if !d.Active {
			continue
		}
		c := counts[d.ID]
		out = append(out, DoctorLoad{
			DoctorID: d.ID,
			Name:     d.Name,
			Count:    c,
			Percent:  int(math.Round(float64(c) / float64(maxCount) * 100)),
		})
	}
	return out
}
