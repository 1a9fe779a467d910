package model

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted, BookingCancelled},
}

// CanTransitionTo reports whether a booking in status s may move to next.
// Staying in the same status is always allowed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var disputeTransitions = map[DisputeStatus][]DisputeStatus{
	DisputeOpen: {DisputeResolved, DisputeRejected},
}

// CanTransitionTo reports whether a dispute in status s may move to next.
// Re-asserting the current status is allowed and still recorded in history.
func (s DisputeStatus) CanTransitionTo(next DisputeStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range disputeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Settled is true for statuses that mark the booking as paid.
func (s PaymentStatus) Settled() bool {
	return s == PaymentPaid
}
