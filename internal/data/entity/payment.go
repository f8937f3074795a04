package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending              PaymentStatus = "pending"
	PaymentStatusVerificationRequired PaymentStatus = "verification_required"
	PaymentStatusCompleted            PaymentStatus = "completed"
	PaymentStatusFailed               PaymentStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

type PaymentMethod string

const (
	MethodCard    PaymentMethod = "card"
	MethodUPI     PaymentMethod = "upi"
	MethodQR      PaymentMethod = "qr"
	MethodWallet  PaymentMethod = "instant_wallet"
	MethodGateway PaymentMethod = "gateway"
)

// Deferred reports whether the real-world transfer happens outside the
// system and an admin confirms it later.
func (m PaymentMethod) Deferred() bool {
	switch m {
	case MethodCard, MethodUPI, MethodQR, MethodGateway:
		return true
	}
	return false
}

// Instant reports whether the user's self-reported external transaction
// id is accepted as sufficient proof.
func (m PaymentMethod) Instant() bool {
	return m == MethodWallet
}

// Payment is one record per payment attempt. Records are an append-style
// audit trail: they never leave completed/failed and are never deleted.
type Payment struct {
	Base
	UserID                uuid.UUID      `db:"user_id"`
	CourseID              uuid.UUID      `db:"course_id"`
	Amount                float64        `db:"amount"`
	Method                PaymentMethod  `db:"method"`
	Status                PaymentStatus  `db:"status"`
	TransactionID         string         `db:"transaction_id"`
	ExternalTransactionID *string        `db:"external_transaction_id"`
	VerificationCode      *string        `db:"verification_code"`
	VerifiedByUser        bool           `db:"verified_by_user"`
	VerifiedByAdmin       bool           `db:"verified_by_admin"`
	Details               PaymentDetails `db:"details"`
}
