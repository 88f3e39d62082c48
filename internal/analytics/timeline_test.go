package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

func TestBuildTimeline_GridShape(t *testing.T) {
	slots := BuildTimeline(nil)

	// 08:00 through 20:00 inclusive in 30-minute steps.
	require.Len(t, slots, 25)
	assert.Equal(t, "08:00", slots[0].Time)
	assert.Equal(t, "20:00", slots[len(slots)-1].Time)
	for _, slot := range slots {
		assert.True(t, slot.Free)
		assert.Nil(t, slot.Appointment)
	}
}

func TestBuildTimeline_OccupiedSlot(t *testing.T) {
	a := appt("2025-05-20", "14:00", types.VisitScheduled, types.PaymentUnpaid)
	slots := BuildTimeline([]*types.Appointment{a})

	for _, slot := range slots {
		if slot.Time == "14:00" {
			assert.False(t, slot.Free)
			assert.Equal(t, a, slot.Appointment)
		} else {
			assert.True(t, slot.Free)
		}
	}
}

func TestBuildTimeline_OffGridTimeNeverLands(t *testing.T) {
	a := appt("2025-05-20", "14:15", types.VisitScheduled, types.PaymentUnpaid)
	slots := BuildTimeline([]*types.Appointment{a})

	for _, slot := range slots {
		assert.NotEqual(t, "14:15", slot.Time)
		if slot.Time == "14:00" || slot.Time == "14:30" {
			assert.True(t, slot.Free)
		}
	}
}
