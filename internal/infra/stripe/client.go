package stripe

import (
	"context"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks Gateway

// Checkout modes.
const (
	ModeSubscription = "subscription"
	ModePayment      = "payment"
)

// Gateway is the slice of the Stripe API the portal calls.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, linkID string) (string, error)
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Session, error)
	CreatePortal(ctx context.Context, customerID, returnURL string) (string, error)
	ActivePrices(ctx context.Context, productID string) ([]Price, error)
	GetSubscription(ctx context.Context, id string) (*stripeapi.Subscription, error)
}

// CheckoutRequest describes a hosted checkout. PriceID wins over the inline
// AmountCents/ProductName pair.
type CheckoutRequest struct {
	Mode              string
	CustomerID        string
	PriceID           string
	AmountCents       int64
	ProductName       string
	ClientReferenceID string
	Metadata          map[string]string
	SuccessURL        string
	CancelURL         string
}

type Session struct {
	ID  string
	URL string
}

// Price is a recurring EUR price that can back a pro plan.
type Price struct {
	ID        string
	ProductID string
	Name      string
	AmountEUR float64
	Interval  string
}

type Client struct {
	api *client.API
}

func NewClient(secretKey string) *Client {
	return &Client{api: client.New(secretKey, nil)}
}

func (c *Client) CreateCustomer(ctx context.Context, email, linkID string) (string, error) {
	params := &stripeapi.CustomerParams{Email: stripeapi.String(email)}
	params.Context = ctx
	params.AddMetadata("link_id", linkID)

	cust, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cust.ID, nil
}

func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Session, error) {
	item := &stripeapi.CheckoutSessionLineItemParams{Quantity: stripeapi.Int64(1)}
	if req.PriceID != "" {
		item.Price = stripeapi.String(req.PriceID)
	} else {
		item.PriceData = &stripeapi.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripeapi.String(string(stripeapi.CurrencyEUR)),
			UnitAmount: stripeapi.Int64(req.AmountCents),
			ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripeapi.String(req.ProductName),
			},
		}
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:              stripeapi.String(req.Mode),
		LineItems:         []*stripeapi.CheckoutSessionLineItemParams{item},
		SuccessURL:        stripeapi.String(req.SuccessURL),
		CancelURL:         stripeapi.String(req.CancelURL),
		ClientReferenceID: stripeapi.String(req.ClientReferenceID),
	}
	if req.CustomerID != "" {
		params.Customer = stripeapi.String(req.CustomerID)
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	// subscription events only carry the subscription's own metadata
	if req.Mode == ModeSubscription {
		params.SubscriptionData = &stripeapi.CheckoutSessionSubscriptionDataParams{Metadata: req.Metadata}
	}

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (c *Client) CreatePortal(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripeapi.BillingPortalSessionParams{
		Customer:  stripeapi.String(customerID),
		ReturnURL: stripeapi.String(returnURL),
	}
	params.Context = ctx

	s, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return s.URL, nil
}

// ActivePrices lists active recurring EUR prices of active products,
// optionally restricted to productID. Prices with metadata visible=false are skipped.
func (c *Client) ActivePrices(ctx context.Context, productID string) ([]Price, error) {
	params := &stripeapi.PriceListParams{}
	params.Context = ctx
	params.Active = stripeapi.Bool(true)
	params.Type = stripeapi.String("recurring")
	params.AddExpand("data.product")

	var out []Price
	it := c.api.Prices.List(params)
	for it.Next() {
		p := it.Price()
		if !p.Active || p.Recurring == nil || p.Product == nil || !p.Product.Active {
			continue
		}
		if productID != "" && p.Product.ID != productID {
			continue
		}
		if p.Currency != stripeapi.CurrencyEUR {
			continue
		}
		if p.Metadata["visible"] == "false" {
			continue
		}

		name := p.Product.Name
		if v := p.Metadata["plan"]; v != "" {
			name = v
		}
		out = append(out, Price{
			ID:        p.ID,
			ProductID: p.Product.ID,
			Name:      name,
			AmountEUR: float64(p.UnitAmount) / 100.0,
			Interval:  string(p.Recurring.Interval),
		})
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list stripe prices: %w", err)
	}
	return out, nil
}

func (c *Client) GetSubscription(ctx context.Context, id string) (*stripeapi.Subscription, error) {
	params := &stripeapi.SubscriptionParams{}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get stripe subscription %s: %w", id, err)
	}
	return sub, nil
}
