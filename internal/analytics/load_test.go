package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

func TestBuildDoctorLoad(t *testing.T) {
	doctors := []*types.Doctor{
		{ID: "D1", Name: "Dr. A", Active: true},
		{ID: "D2", Name: "Dr. B", Active: true},
		{ID: "D3", Name: "Dr. C", Active: false},
	}
	appts := []*types.Appointment{
		named("2025-05-01", "09:00", "D1", "p1", ""),
		named("2025-05-01", "09:30", "D1", "p2", ""),
		named("2025-05-01", "10:00", "D1", "p3", ""),
		named("2025-05-01", "10:30", "D1", "p4", ""),
		named("2025-05-01", "09:00", "D2", "p5", ""),
	}

	load := BuildDoctorLoad(doctors, appts)

	// Inactive doctors never appear.
	require.Len(t, load, 2)

	assert.Equal(t, "D1", load[0].DoctorID)
	assert.Equal(t, 4, load[0].Count)
	assert.Equal(t, 100, load[0].Percent)

	assert.Equal(t, "D2", load[1].DoctorID)
	assert.Equal(t, 1, load[1].Count)
	assert.Equal(t, 25, load[1].Percent)
}

func TestBuildDoctorLoad_NoAppointments(t *testing.T) {
	doctors := []*types.Doctor{{ID: "D1", Name: "Dr. A", Active: true}}

	load := BuildDoctorLoad(doctors, nil)

	require.Len(t, load, 1)
	assert.Equal(t, 0, load[0].Count)
	assert.Equal(t, 0, load[0].Percent)
}
