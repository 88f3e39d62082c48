package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitStatusCycle(t *testing.T) {
	assert.Equal(t, VisitDone, VisitScheduled.Next())
	assert.Equal(t, VisitNoShow, VisitDone.Next())
	assert.Equal(t, VisitScheduled, VisitNoShow.Next())

	// Three steps always return to the start.
	for _, v := range []VisitStatus{VisitScheduled, VisitDone, VisitNoShow} {
		assert.Equal(t, v, v.Next().Next().Next())
	}
}

func TestPaymentStatusCycle(t *testing.T) {
	assert.Equal(t, PaymentPartial, PaymentUnpaid.Next())
	assert.Equal(t, PaymentPaid, PaymentPartial.Next())
	assert.Equal(t, PaymentUnpaid, PaymentPaid.Next())

	for _, p := range []PaymentStatus{PaymentUnpaid, PaymentPartial, PaymentPaid} {
		assert.Equal(t, p, p.Next().Next().Next())
	}
}

func TestParseVisitStatus_RejectsUnknown(t *testing.T) {
	v, err := ParseVisitStatus("done")
	assert.NoError(t, err)
	assert.Equal(t, VisitDone, v)

	_, err = ParseVisitStatus("cancelled")
	assert.Error(t, err)

	_, err = ParseVisitStatus("")
	assert.Error(t, err)
}

func TestParsePaymentStatus_RejectsUnknown(t *testing.T) {
	p, err := ParsePaymentStatus("partial")
	assert.NoError(t, err)
	assert.Equal(t, PaymentPartial, p)

	_, err = ParsePaymentStatus("refunded")
	assert.Error(t, err)
}

func TestParsePaymentMethod_RejectsUnknown(t *testing.T) {
	m, err := ParsePaymentMethod("card")
	assert.NoError(t, err)
	assert.Equal(t, MethodCard, m)

	_, err = ParsePaymentMethod("crypto")
	assert.Error(t, err)
}

func TestCoerce_DefaultsForUnknownStoredValues(t *testing.T) {
	assert.Equal(t, VisitScheduled, CoerceVisitStatus("cancelled"))
	assert.Equal(t, VisitDone, CoerceVisitStatus("done"))

	assert.Equal(t, PaymentUnpaid, CoercePaymentStatus("refunded"))
	assert.Equal(t, PaymentPaid, CoercePaymentStatus("paid"))

	assert.Equal(t, MethodNone, CoercePaymentMethod("crypto"))
	assert.Equal(t, MethodCash, CoercePaymentMethod("cash"))
}

func TestNext_UnknownValuesFallBackToDefaults(t *testing.T) {
	assert.Equal(t, VisitScheduled, VisitStatus("cancelled").Next())
	assert.Equal(t, PaymentUnpaid, PaymentStatus("refunded").Next())
}
