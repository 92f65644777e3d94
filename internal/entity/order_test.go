package domain

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusProcessing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusRefunded, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusRefunded, StatusPending, false},
		// same-status writes are always allowed
		{StatusPending, StatusPending, true},
		{StatusCancelled, StatusCancelled, true},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Fatalf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []Status{StatusCancelled, StatusRefunded} {
		if len(s.NextStates()) != 0 {
			t.Fatalf("%s should be terminal, got next states %v", s, s.NextStates())
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if Status("UNKNOWN").Valid() {
		t.Fatalf("UNKNOWN should not be valid")
	}
	if Status("pending").Valid() {
		t.Fatalf("status values are case sensitive")
	}
}

func TestParsePaymentStatus(t *testing.T) {
	cases := map[string]PaymentStatus{
		"completed":          PaymentPaid,
		"paid":               PaymentPaid,
		"PAID":               PaymentPaid,
		"Completed":          PaymentPaid,
		"failed":             PaymentFailed,
		"refunded":           PaymentRefunded,
		"partially_refunded": PaymentPartiallyRefunded,
		"":                   PaymentPending,
		"anything-else":      PaymentPending,
		"  paid  ":           PaymentPaid,
	}
	for in, want := range cases {
		if got := ParsePaymentStatus(in); got != want {
			t.Fatalf("ParsePaymentStatus(%q) = %s, want %s", in, got, want)
		}
	}
}
