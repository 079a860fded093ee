// Package payments creates Midtrans Snap payment links for pending revenue.
package payments

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var ErrDisabled = errors.New("payments: gateway not configured")

type LinkRequest struct {
	Ref           string
	Amount        float64
	Description   string
	CustomerName  string
	CustomerEmail string
	ItemID        string
}

type Link struct {
	Ref   string `json:"ref"`
	Token string `json:"token"`
	URL   string `json:"url"`
}

// Notification is the part of the Midtrans webhook body this service reads.
type Notification struct {
	TransactionStatus string `json:"transaction_status" binding:"required"`
	OrderID           string `json:"order_id" binding:"required"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

type Gateway interface {
	CreateLink(ctx context.Context, req LinkRequest) (*Link, error)
	Verify(n Notification) bool
}

type snapCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type Midtrans struct {
	serverKey string
	client    snapCreator
}

// NewMidtrans returns nil when serverKey is empty so callers can treat the
// gateway as optional.
func NewMidtrans(serverKey, env string) *Midtrans {
	if serverKey == "" {
		return nil
	}
	e := midtrans.Sandbox
	if env == "production" {
		e = midtrans.Production
	}
	var s snap.Client
	s.New(serverKey, e)
	return &Midtrans{serverKey: serverKey, client: &s}
}

func (m *Midtrans) CreateLink(_ context.Context, req LinkRequest) (*Link, error) {
	if m == nil {
		return nil, ErrDisabled
	}
	amount := int64(math.Round(req.Amount))
	sr := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.Ref,
			GrossAmt: amount,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.ItemID,
			Name:  truncate(req.Description, 50),
			Price: amount,
			Qty:   1,
		}},
	}
	resp, merr := m.client.CreateTransaction(sr)
	if merr != nil {
		return nil, fmt.Errorf("payments: midtrans: %s", merr.GetMessage())
	}
	return &Link{Ref: req.Ref, Token: resp.Token, URL: resp.RedirectURL}, nil
}

// Verify checks signature_key = sha512(order_id + status_code + gross_amount + server_key).
func (m *Midtrans) Verify(n Notification) bool {
	if m == nil || n.SignatureKey == "" {
		return false
	}
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + m.serverKey))
	want := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(want), []byte(n.SignatureKey)) == 1
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
