package entity

import "time"

// PaymentDetails is a tagged variant: exactly one branch is set, and it
// must agree with the record's method. Stored as a JSONB column.
type PaymentDetails struct {
	Card    *CardDetails    `json:"card,omitempty"`
	Upi     *UpiDetails     `json:"upi,omitempty"`
	Qr      *QrDetails      `json:"qr,omitempty"`
	Gateway *GatewayDetails `json:"gateway,omitempty"`
	Wallet  *WalletDetails  `json:"wallet,omitempty"`
}

type CardDetails struct {
	Last4    string `json:"last4"`
	CardType string `json:"card_type,omitempty"`
}

type UpiDetails struct {
	UpiID string `json:"upi_id"`
}

type QrDetails struct {
	Reference string `json:"reference,omitempty"`
}

type GatewayDetails struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id,omitempty"`
	Signature string `json:"signature,omitempty"`
}

type WalletDetails struct {
	OrderID       string     `json:"order_id"`
	UpiID         string     `json:"upi_id,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
}

// Matches reports whether exactly one branch is set and it is the one
// selected by m.
func (d PaymentDetails) Matches(m PaymentMethod) bool {
	set := 0
	for _, ok := range []bool{d.Card != nil, d.Upi != nil, d.Qr != nil, d.Gateway != nil, d.Wallet != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return false
	}

	switch m {
	case MethodCard:
		return d.Card != nil
	case MethodUPI:
		return d.Upi != nil
	case MethodQR:
		return d.Qr != nil
	case MethodGateway:
		return d.Gateway != nil
	case MethodWallet:
		return d.Wallet != nil
	}
	return false
}
