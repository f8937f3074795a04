package response

import (
	"time"

	"learnx/internal/data/entity"
)

// ReceiverAccount echoes the configured receiving account so the payer knows
// where to send the money. Never persisted per record.
type ReceiverAccount struct {
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
	BankName      string `json:"bank_name"`
	UpiID         string `json:"upi_id"`
}

// CreatePaymentResponse is returned when a deferred payment is started. The
// verification code is surfaced exactly once, here.
type CreatePaymentResponse struct {
	PaymentID            string          `json:"payment_id"`
	TransactionID        string          `json:"transaction_id"`
	VerificationCode     string          `json:"verification_code"`
	Status               string          `json:"status"`
	RequiresVerification bool            `json:"requires_verification"`
	GatewayOrderID       string          `json:"gateway_order_id,omitempty"`
	Receiver             ReceiverAccount `json:"receiver"`
	Message              string          `json:"message"`
}

// WalletOrderResponse is returned when an instant-wallet order is created.
type WalletOrderResponse struct {
	PaymentID string          `json:"payment_id"`
	OrderID   string          `json:"order_id"`
	Amount    float64         `json:"amount"`
	Currency  string          `json:"currency"`
	UpiID     string          `json:"upi_id"`
	QRCodeURL string          `json:"qr_code_url"`
	Receiver  ReceiverAccount `json:"receiver"`
}

// VerifySubmittedResponse acknowledges a self-report; access is not granted
// until an admin decides.
type VerifySubmittedResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// WalletVerifiedResponse acknowledges an instant-wallet confirmation.
type WalletVerifiedResponse struct {
	PaymentID     string `json:"payment_id"`
	CourseID      string `json:"course_id"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// PaymentResponse is the read view of a payment record. The verification
// code is deliberately absent.
type PaymentResponse struct {
	ID                    string                 `json:"id"`
	UserID                string                 `json:"user_id"`
	CourseID              string                 `json:"course_id"`
	CourseTitle           string                 `json:"course_title,omitempty"`
	Amount                float64                `json:"amount"`
	Method                entity.PaymentMethod   `json:"method"`
	Status                entity.PaymentStatus   `json:"status"`
	TransactionID         string                 `json:"transaction_id"`
	ExternalTransactionID *string                `json:"external_transaction_id,omitempty"`
	VerifiedByUser        bool                   `json:"verified_by_user"`
	VerifiedByAdmin       bool                   `json:"verified_by_admin"`
	Details               entity.PaymentDetails  `json:"details"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// Access decision reasons
const (
	AccessReasonFreeCourse      = "free_course"
	AccessReasonPaymentVerified = "payment_verified"
	AccessReasonPaymentPending  = "payment_pending"
	AccessReasonPaymentRequired = "payment_required"
)

// AccessResponse is the access evaluator's answer for one (user, course)
// pair.
type AccessResponse struct {
	HasAccess     bool                 `json:"has_access"`
	Reason        string               `json:"reason"`
	PaymentStatus entity.PaymentStatus `json:"payment_status,omitempty"`
	TransactionID string               `json:"transaction_id,omitempty"`
}

// Helper converters
func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                    payment.ID.String(),
		UserID:                payment.UserID.String(),
		CourseID:              payment.CourseID.String(),
		Amount:                payment.Amount,
		Method:                payment.Method,
		Status:                payment.Status,
		TransactionID:         payment.TransactionID,
		ExternalTransactionID: payment.ExternalTransactionID,
		VerifiedByUser:        payment.VerifiedByUser,
		VerifiedByAdmin:       payment.VerifiedByAdmin,
		Details:               payment.Details,
		CreatedAt:             payment.CreatedAt,
		UpdatedAt:             payment.UpdatedAt,
	}
}
