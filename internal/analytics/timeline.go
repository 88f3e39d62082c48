package analytics

import (
	"fmt"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// The daily grid runs 08:00 to 20:00 inclusive in 30-minute steps.
const (
	timelineStartMin = 8 * 60
	timelineEndMin   = 20 * 60
	timelineStepMin  = 30
)

// TimelineSlot is one row of the daily grid: either free or occupied by
// exactly one appointment.
type TimelineSlot struct {
	Time        string             `json:"time"`
	Free        bool               `json:"free"`
	Appointment *types.Appointment `json:"appointment,omitempty"`
}

// BuildTimeline projects a day's appointments (already filtered by date and
// optionally by doctor) onto the fixed grid. The join is exact label
// equality, not interval overlap: a 14:15 booking never lands on the grid and
// both 14:00 and 14:30 stay free.
func BuildTimeline(todays []*types.Appointment) []TimelineSlot {
	byTime := make(map[string]*types.Appointment, len(todays))
	for _, a := range todays {
		byTime[a.Time] = a
	}

	slots := make([]TimelineSlot, 0, (timelineEndMin-timelineStartMin)/timelineStepMin+1)
	for t := timelineStartMin; t <= timelineEndMin; t += timelineStepMin {
		label := fmt.Sprintf("%02d:%02d", t/60, t%60)
		a := byTime[label]
		slots = append(slots, TimelineSlot{Time: label, Free: a == nil, Appointment: a})
	}
	return slots
}
