package request

// CreatePaymentRequest starts a deferred-method payment (card/upi/qr/gateway).
// The method-specific fields mirror the details variant for that method.
type CreatePaymentRequest struct {
	CourseID string  `json:"course_id" validate:"required,uuid4"`
	Amount   float64 `json:"amount" validate:"required,min=0"`
	Method   string  `json:"method" validate:"required,oneof=card upi qr gateway"`

	// card
	CardLast4 string `json:"card_last4,omitempty" validate:"omitempty,len=4,numeric"`
	CardType  string `json:"card_type,omitempty" validate:"omitempty,max=20"`
	// upi
	UpiID string `json:"upi_id,omitempty" validate:"omitempty,max=100"`
	// qr
	QrReference string `json:"qr_reference,omitempty" validate:"omitempty,max=100"`
}

// CreateWalletOrderRequest starts an instant-wallet payment.
type CreateWalletOrderRequest struct {
	CourseID string `json:"course_id" validate:"required,uuid4"`
}

// VerifyPaymentRequest is the self-report step of a deferred payment: the
// payer submits the external transaction id after paying out of band.
type VerifyPaymentRequest struct {
	TransactionID         string `json:"transaction_id" validate:"required"`
	ExternalTransactionID string `json:"external_transaction_id" validate:"required,min=4,max=100"`
	VerificationCode      string `json:"verification_code" validate:"required,len=8"`
}

// WalletVerifyRequest confirms an instant-wallet payment with the wallet's
// own transaction id.
type WalletVerifyRequest struct {
	OrderID               string  `json:"order_id" validate:"required"`
	ExternalTransactionID string  `json:"external_transaction_id" validate:"required,min=8,max=100"`
	Amount                float64 `json:"amount" validate:"required,min=0"`
}

// AdminDecisionRequest resolves a pending payment. Approved is a pointer so
// an omitted field fails validation instead of silently rejecting.
type AdminDecisionRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}
