package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

func named(date, time, doctorID, name, phone string) *types.Appointment {
	return &types.Appointment{
		Date:        date,
		Time:        time,
		DoctorID:    doctorID,
		PatientName: name,
		Phone:       phone,
	}
}

func TestFilterByRange_InclusiveBounds(t *testing.T) {
	all := []*types.Appointment{
		named("2025-04-30", "09:00", "D", "a", ""),
		named("2025-05-01", "09:00", "D", "b", ""),
		named("2025-05-31", "09:00", "D", "c", ""),
		named("2025-06-01", "09:00", "D", "d", ""),
	}

	got := FilterByRange(all, RangeFilter{From: "2025-05-01", To: "2025-05-31"})

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].PatientName)
	assert.Equal(t, "c", got[1].PatientName)
}

func TestFilterByRange_OpenEnds(t *testing.T) {
	all := []*types.Appointment{
		named("2025-04-30", "09:00", "D", "a", ""),
		named("2025-06-01", "09:00", "D", "b", ""),
	}

	assert.Len(t, FilterByRange(all, RangeFilter{}), 2)
	assert.Len(t, FilterByRange(all, RangeFilter{From: "2025-05-01"}), 1)
	assert.Len(t, FilterByRange(all, RangeFilter{To: "2025-05-01"}), 1)
}

func TestFilterByRange_DoctorAndSearch(t *testing.T) {
	all := []*types.Appointment{
		named("2025-05-01", "09:00", "D1", "Anna Ivanova", "+998901234567"),
		named("2025-05-01", "10:00", "D2", "Boris Karimov", "+998907654321"),
	}

	byDoctor := FilterByRange(all, RangeFilter{DoctorID: "D2"})
	require.Len(t, byDoctor, 1)
	assert.Equal(t, "Boris Karimov", byDoctor[0].PatientName)

	byName := FilterByRange(all, RangeFilter{Search: "anna"})
	require.Len(t, byName, 1)
	assert.Equal(t, "Anna Ivanova", byName[0].PatientName)

	byPhone := FilterByRange(all, RangeFilter{Search: "7654"})
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Boris Karimov", byPhone[0].PatientName)

	none := FilterByRange(all, RangeFilter{Search: "nobody"})
	assert.Empty(t, none)
}

func TestSortBySchedule(t *testing.T) {
	appts := []*types.Appointment{
		named("2025-05-02", "09:00", "D", "c", ""),
		named("2025-05-01", "10:00", "D", "b", ""),
		named("2025-05-01", "09:00", "D", "a", ""),
	}

	SortBySchedule(appts)

	assert.Equal(t, "a", appts[0].PatientName)
	assert.Equal(t, "b", appts[1].PatientName)
	assert.Equal(t, "c", appts[2].PatientName)
}
