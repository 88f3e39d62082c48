package types

import "fmt"

// VisitStatus tracks whether the patient was actually seen.
type VisitStatus string

const (
	VisitScheduled VisitStatus = "scheduled"
	VisitDone      VisitStatus = "done"
	VisitNoShow    VisitStatus = "no_show"
)

// PaymentStatus tracks payment collection, fully independent of VisitStatus.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentMethod records how a payment was (or will be) collected.
type PaymentMethod string

const (
	MethodNone   PaymentMethod = "none"
	MethodCash   PaymentMethod = "cash"
	MethodCard   PaymentMethod = "card"
	MethodOnline PaymentMethod = "online"
)

// Transition tables for the two status cycles. Both cycles are closed: three
// applications of Next return the original value, and there is no terminal
// state.
var (
	nextVisit = map[VisitStatus]VisitStatus{
		VisitScheduled: VisitDone,
		VisitDone:      VisitNoShow,
		VisitNoShow:    VisitScheduled,
	}
	nextPayment = map[PaymentStatus]PaymentStatus{
		PaymentUnpaid:  PaymentPartial,
		PaymentPartial: PaymentPaid,
		PaymentPaid:    PaymentUnpaid,
	}
	knownMethods = map[PaymentMethod]bool{
		MethodNone:   true,
		MethodCash:   true,
		MethodCard:   true,
		MethodOnline: true,
	}
)

// ParseVisitStatus rejects unknown values instead of silently defaulting them,
// so corrupt input surfaces at the boundary.
func ParseVisitStatus(s string) (VisitStatus, error) {
	v := VisitStatus(s)
	if _, ok := nextVisit[v]; !ok {
		return "", fmt.Errorf("unknown visit status %q", s)
	}
	return v, nil
}

// ParsePaymentStatus rejects unknown values.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	v := PaymentStatus(s)
	if _, ok := nextPayment[v]; !ok {
		return "", fmt.Errorf("unknown payment status %q", s)
	}
	return v, nil
}

// ParsePaymentMethod rejects unknown values.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !knownMethods[m] {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return m, nil
}

// CoerceVisitStatus maps unrecognized values to the scheduled default. Only
// for reading stored rows that predate strict validation; request input goes
// through ParseVisitStatus.
func CoerceVisitStatus(s string) VisitStatus {
	if v, err := ParseVisitStatus(s); err == nil {
		return v
	}
	return VisitScheduled
}

// CoercePaymentStatus maps unrecognized values to the unpaid default.
func CoercePaymentStatus(s string) PaymentStatus {
	if v, err := ParsePaymentStatus(s); err == nil {
		return v
	}
	return PaymentUnpaid
}

// CoercePaymentMethod maps unrecognized values to none.
func CoercePaymentMethod(s string) PaymentMethod {
	if m, err := ParsePaymentMethod(s); err == nil {
		return m
	}
	return MethodNone
}

// Next advances the visit cycle: scheduled -> done -> no_show -> scheduled.
// An out-of-table value lands on scheduled.
func (v VisitStatus) Next() VisitStatus {
	if n, ok := nextVisit[v]; ok {
		return n
	}
	return VisitScheduled
}

// Next advances the payment cycle: unpaid -> partial -> paid -> unpaid.
// An out-of-table value lands on unpaid.
func (p PaymentStatus) Next() PaymentStatus {
	if n, ok := nextPayment[p]; ok {
		return n
	}
	return PaymentUnpaid
}
