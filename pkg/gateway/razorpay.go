package gateway

import (
	"fmt"

	"learnx/pkg/utils"

	"github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

// Client wraps the Razorpay SDK for gateway-method orders. No settlement is
// verified through it; the order id is only recorded on the payment record
// for the admin to cross-check.
type Client struct {
	rzp      *razorpay.Client
	currency string
	log      *zap.Logger
}

// NewClient returns nil when no gateway credentials are configured; callers
// fall back to locally generated order ids.
func NewClient(config utils.GatewayConfig, log *zap.Logger) *Client {
	if config.KeyID == "" || config.KeySecret == "" {
		return nil
	}

	return &Client{
		rzp:      razorpay.NewClient(config.KeyID, config.KeySecret),
		currency: config.Currency,
		log:      log.With(zap.String("gateway", "razorpay")),
	}
}

// CreateOrder creates a gateway order for the given amount and returns its id.
// Amount is in currency units; Razorpay wants the smallest denomination.
func (c *Client) CreateOrder(amount float64, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   int(amount * 100),
		"currency": c.currency,
		"receipt":  receipt,
	}

	resp, err := c.rzp.Order.Create(data, nil)
	if err != nil {
		c.log.Error("Failed to create gateway order",
			zap.Error(err),
			zap.Float64("amount", amount),
		)
		return "", fmt.Errorf("create gateway order: %w", err)
	}

	orderID, ok := resp["id"].(string)
	if !ok {
		return "", fmt.Errorf("gateway order response missing id")
	}

	c.log.Info("Gateway order created",
		zap.String("order_id", orderID),
		zap.Float64("amount", amount),
	)

	return orderID, nil
}
