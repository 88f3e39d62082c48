package booking

import "github.com/Samandar90/Kamilovs-CRM/pkg/types"

// HasSlotConflict reports whether any appointment other than excludeID already
// occupies the slot. Slot identity is exact label equality on (doctor, date,
// time); adjacent or overlapping times are never a conflict because
// appointments have no duration.
func HasSlotConflict(all []*types.Appointment, slot types.Slot, excludeID string) bool {
	for _, a := range all {
		if a.ID == excludeID {
			continue
		}
		if a.DoctorID == slot.DoctorID && a.Date == slot.Date && a.Time == slot.Time {
			return true
		}
	}
	return false
}
