package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexID_AcceptsStringAndNumber(t *testing.T) {
	var f FlexID

	require.NoError(t, json.Unmarshal([]byte(`"abc-123"`), &f))
	assert.Equal(t, "abc-123", f.String())

	require.NoError(t, json.Unmarshal([]byte(`42`), &f))
	assert.Equal(t, "42", f.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Equal(t, "", f.String())
}

func TestAppointmentPayload_NormalizeFoldsSnakeCase(t *testing.T) {
	var p AppointmentPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"date": "2025-03-01",
		"time": "09:00",
		"doctor_id": 7,
		"patient_name": "Anna Ivanova",
		"status_visit": "done"
	}`), &p))

	p.Normalize()

	require.NotNil(t, p.DoctorID)
	assert.Equal(t, "7", p.DoctorID.String())
	require.NotNil(t, p.PatientName)
	assert.Equal(t, "Anna Ivanova", *p.PatientName)
	require.NotNil(t, p.StatusVisit)
	assert.Equal(t, "done", *p.StatusVisit)
}

func TestAppointmentPayload_CamelCaseWinsOverSnakeCase(t *testing.T) {
	var p AppointmentPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"doctorId": "camel",
		"doctor_id": "snake"
	}`), &p))

	p.Normalize()

	require.NotNil(t, p.DoctorID)
	assert.Equal(t, "camel", p.DoctorID.String())
}

func TestDoctorPayload_SpecialtyAlias(t *testing.T) {
	var p DoctorPayload
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Dr. A", "specialty": "dental"}`), &p))

	p.Normalize()

	require.NotNil(t, p.Speciality)
	assert.Equal(t, "dental", *p.Speciality)
}

func TestSlot_Identity(t *testing.T) {
	a := &Appointment{Date: "2025-03-01", Time: "09:00", DoctorID: "D"}
	b := &Appointment{Date: "2025-03-01", Time: "09:00", DoctorID: "D", PatientName: "someone else"}

	assert.Equal(t, a.Slot(), b.Slot())
}
