package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// base36 alphabet used for opaque id/code suffixes
const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomToken(length int) string {
	max := big.NewInt(int64(len(idAlphabet)))

	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("random token: %v", err))
		}
		buf[i] = idAlphabet[n.Int64()]
	}

	return string(buf)
}

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// GenerateTransactionID creates the system transaction id for a payment
// record. Format: TXN<unix-millis><9 random chars>. The time component keeps
// ids roughly sortable; uniqueness is still enforced by the store.
func GenerateTransactionID() string {
	return fmt.Sprintf("TXN%d%s", time.Now().UnixMilli(), randomToken(9))
}

// GenerateVerificationCode creates the shared secret that binds a
// verification submission to its record. Must not be guessable, hence
// crypto/rand.
func GenerateVerificationCode() string {
	return randomToken(8)
}

// GenerateWalletOrderID creates the order id handed to the payer for
// instant-wallet payments.
func GenerateWalletOrderID() string {
	return fmt.Sprintf("wallet_%d_%s", time.Now().UnixMilli(), randomToken(9))
}

// GenerateGatewayOrderID is the local fallback when no gateway client is
// configured for method=gateway.
func GenerateGatewayOrderID() string {
	return fmt.Sprintf("order_%d_%s", time.Now().UnixMilli(), randomToken(9))
}
