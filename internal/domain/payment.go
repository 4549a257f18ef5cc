package domain

import "time"

// IntentState is the consumption state of a payment intent
type IntentState string

const (
	IntentPending   IntentState = "PENDING"
	IntentConsumed  IntentState = "CONSUMED"
	IntentDiscarded IntentState = "DISCARDED"
)

// PaymentMethod identifies the external gateway an intent was sent to
type PaymentMethod string

const (
	MethodVNPay  PaymentMethod = "VNPAY"
	MethodStripe PaymentMethod = "STRIPE"
)

// Discard reasons stored with a DISCARDED intent
const (
	DiscardPaymentFailed   = "payment_failed"
	DiscardExpired         = "expired"
	DiscardGatewayError    = "gateway_error"
	DiscardSlotUnavailable = "slot_unavailable"
	DiscardCancelled       = "cancelled"
	// DiscardPaidAfterDiscard marks a discarded intent whose payment settled anyway; it needs a refund
	DiscardPaidAfterDiscard = "paid_after_discard"
)

// SuccessCode is the gateway response code for a settled payment
const SuccessCode = "00"

// ReservationPayload is the staged booking carried across the payment redirect
type ReservationPayload struct {
	SubjectID      int64     `json:"subjectId"`
	ProfessionalID int64     `json:"professionalId"`
	ServiceType    string    `json:"serviceType"`
	ExpectedStart  time.Time `json:"expectedStart"`
	Note           *string   `json:"note,omitempty"`
}

// PaymentIntent is a durable, not-yet-persisted booking awaiting payment
type PaymentIntent struct {
	Token         string
	State         IntentState
	Payload       ReservationPayload
	Amount        int64
	Method        PaymentMethod
	Description   string
	BookingID     *int64
	TransactionID *string
	DiscardReason *string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	UpdatedAt     time.Time
}

// IsExpired returns true if the intent outlived its TTL at instant now
func (i *PaymentIntent) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// HoldsPayment reports whether a discarded intent already carries a settled transaction to refund
func (i *PaymentIntent) HoldsPayment() bool {
	if i.State != IntentDiscarded || i.DiscardReason == nil || i.TransactionID == nil {
		return false
	}
	return *i.DiscardReason == DiscardSlotUnavailable || *i.DiscardReason == DiscardPaidAfterDiscard
}

// PaymentConfirmation is the inbound result delivered through the gateway redirect
type PaymentConfirmation struct {
	Token             string
	TransactionID     string
	StatusCode        string
	TransactionStatus string
	PayDate           time.Time
	OrderInfo         string
	Amount            int64 // 0 when the gateway does not echo it
}

// Succeeded reports whether the gateway settled the payment
func (c *PaymentConfirmation) Succeeded() bool {
	if c.StatusCode != SuccessCode {
		return false
	}
	return c.TransactionStatus == "" || c.TransactionStatus == SuccessCode
}

// CheckoutRequest asks an external gateway for a redirect carrying the intent token
type CheckoutRequest struct {
	Token       string
	Amount      int64
	Description string
	ReturnURL   string
	ClientIP    string
	ExpiresAt   time.Time
}
