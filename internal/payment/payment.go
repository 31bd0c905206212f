// Package payment wraps the Stripe checkout and webhook flows.
package payment

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

var ErrUnknownPlan = errors.New("invalid plan selected")

type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	PriceID  string   `json:"-"`
	Features []string `json:"features"`
}

type CheckoutResult struct {
	Free        bool
	SessionID   string
	CheckoutURL string
}

type Config struct {
	SecretKey     string
	WebhookSecret string
	PremiumPrice  string
	ProPrice      string
}

type Service struct {
	plans         map[string]Plan
	webhookSecret string
}

func New(cfg Config) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{
		webhookSecret: cfg.WebhookSecret,
		plans: map[string]Plan{
			"free": {
				ID:       "free",
				Name:     "Free Plan",
				Features: []string{"2000 context window", "Text-based conversations", "Basic emotional support"},
			},
			"premium": {
				ID:       "premium",
				Name:     "Premium Plan",
				PriceID:  cfg.PremiumPrice,
				Features: []string{"Unlimited context window", "Voice-enabled conversations", "Advanced emotional analysis"},
			},
			"pro": {
				ID:       "pro",
				Name:     "Pro Plan",
				PriceID:  cfg.ProPrice,
				Features: []string{"All Premium features", "24/7 availability", "Specialized therapy modules"},
			},
		},
	}
}

// Checkout creates a subscription checkout session for paid plans. The
// free plan activates without touching Stripe.
func (s *Service) Checkout(planID, userID, origin string) (*CheckoutResult, error) {
	plan, ok := s.plans[planID]
	if !ok {
		return nil, ErrUnknownPlan
	}
	if plan.ID == "free" {
		return &CheckoutResult{Free: true}, nil
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(plan.PriceID), Quantity: stripe.Int64(1)},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(origin + "/payment/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(origin + "/payment/cancelled"),
		ClientReferenceID: stripe.String(userID),
	}
	params.AddMetadata("planId", plan.ID)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutResult{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

// VerifyWebhook checks the Stripe signature and returns the event.
func (s *Service) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, s.webhookSecret)
}
