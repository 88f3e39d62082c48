package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Doctor is a member of the clinic roster. Percent is the doctor's commission
// share of realized revenue, 0..100.
type Doctor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Speciality string    `json:"speciality"`
	Percent    int       `json:"percent"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Service is a catalog entry. Price is whole currency units, never negative.
type Service struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     int64     `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Appointment is a booking of one named time-of-day slot for one doctor on one
// calendar day. Date is a plain YYYY-MM-DD label and Time a HH:MM label; there
// is no duration and no timezone attached to either.
type Appointment struct {
	ID            string        `json:"id"`
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	DoctorID      string        `json:"doctorId"`
	ServiceID     string        `json:"serviceId"`
	PatientName   string        `json:"patientName"`
	Phone         string        `json:"phone"`
	Price         int64         `json:"price"`
	StatusVisit   VisitStatus   `json:"statusVisit"`
	StatusPayment PaymentStatus `json:"statusPayment"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Note          string        `json:"note"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Slot identifies the unit of booking exclusivity: a (doctor, date, time)
// triple. Two distinct appointments must never share a slot.
type Slot struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	DoctorID string `json:"doctorId"`
}

// Slot returns the appointment's slot key.
func (a *Appointment) Slot() Slot {
	return Slot{Date: a.Date, Time: a.Time, DoctorID: a.DoctorID}
}

// FlexID is an opaque identifier that tolerates both JSON strings and JSON
// numbers on input. Ids are always compared as strings, never as numbers.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// AppointmentPayload is the wire shape for appointment create and update
// requests. Clients historically send both camelCase and snake_case field
// names, so every aliased field appears twice; Normalize folds the aliases
// into the canonical (camelCase) fields before anything else looks at them.
// Nil means "field absent", which a partial update must preserve.
type AppointmentPayload struct {
	Date               *string `json:"date"`
	Time               *string `json:"time"`
	DoctorID           *FlexID `json:"doctorId"`
	DoctorIDSnake      *FlexID `json:"doctor_id"`
	ServiceID          *FlexID `json:"serviceId"`
	ServiceIDSnake     *FlexID `json:"service_id"`
	PatientName        *string `json:"patientName"`
	PatientNameSnake   *string `json:"patient_name"`
	Phone              *string `json:"phone"`
	Price              *int64  `json:"price"`
	StatusVisit        *string `json:"statusVisit"`
	StatusVisitSnake   *string `json:"status_visit"`
	StatusPayment      *string `json:"statusPayment"`
	StatusPaymentSnake *string `json:"status_payment"`
	PaymentMethod      *string `json:"paymentMethod"`
	PaymentMethodSnake *string `json:"payment_method"`
	Note               *string `json:"note"`
}

// Normalize folds snake_case aliases into the canonical fields. The camelCase
// spelling wins when a client sends both.
func (p *AppointmentPayload) Normalize() {
	if p.DoctorID == nil {
		p.DoctorID = p.DoctorIDSnake
	}
	if p.ServiceID == nil {
		p.ServiceID = p.ServiceIDSnake
	}
	if p.PatientName == nil {
		p.PatientName = p.PatientNameSnake
	}
	if p.StatusVisit == nil {
		p.StatusVisit = p.StatusVisitSnake
	}
	if p.StatusPayment == nil {
		p.StatusPayment = p.StatusPaymentSnake
	}
	if p.PaymentMethod == nil {
		p.PaymentMethod = p.PaymentMethodSnake
	}
}

// DoctorPayload is the wire shape for doctor create/update requests.
// "speciality" and "specialty" are both accepted, matching the historical API.
type DoctorPayload struct {
	Name          *string  `json:"name"`
	Speciality    *string  `json:"speciality"`
	SpecialityAlt *string  `json:"specialty"`
	Percent       *float64 `json:"percent"`
	Active        *bool    `json:"active"`
}

// Normalize folds the "specialty" alias into Speciality.
func (p *DoctorPayload) Normalize() {
	if p.Speciality == nil {
		p.Speciality = p.SpecialityAlt
	}
}

// ServicePayload is the wire shape for service create/update requests.
type ServicePayload struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Price    *int64  `json:"price"`
	Active   *bool   `json:"active"`
}
