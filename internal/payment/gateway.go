package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order is a gateway order handle for the application fee.
type Order struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
}

// Gateway creates orders with the external payment provider. Signature
// verification happens locally against the shared secret, not through the
// gateway.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (Order, error)
}

// RazorpayGateway is the production Gateway backed by the Razorpay API.
type RazorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway constructs a gateway client.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(_ context.Context, amountPaise int64, currency, receipt string) (Order, error) {
	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return Order{}, fmt.Errorf("razorpay order create: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return Order{}, fmt.Errorf("razorpay order create: response missing order id")
	}
	return Order{
		ID:          id,
		AmountPaise: amountPaise,
		Currency:    currency,
		Receipt:     receipt,
	}, nil
}
