package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is the customer a sales order belongs to. The ledger only reads it.
type Client struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SalesOrder is the order that plans and payments are attached to.
type SalesOrder struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"client_id"`
	Total     decimal.Decimal `json:"total"`
	Discount  decimal.Decimal `json:"discount"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderBalance is the outstanding amount of an order, derived from its payments on every read.
type OrderBalance struct {
	OrderID      int64           `json:"order_id"`
	ClientID     int64           `json:"client_id"`
	Total        decimal.Decimal `json:"total"`
	Discount     decimal.Decimal `json:"discount"`
	Paid         decimal.Decimal `json:"paid"`
	Balance      decimal.Decimal `json:"balance"`
	PaymentCount int             `json:"payment_count"`
}

// OrderCredit is what a client paid on one order beyond its total less discount.
type OrderCredit struct {
	OrderID int64           `json:"order_id"`
	Owed    decimal.Decimal `json:"owed"`
	Paid    decimal.Decimal `json:"paid"`
	Credit  decimal.Decimal `json:"credit"`
}

// ClientCredit is the client's money in favor across all of their orders.
type ClientCredit struct {
	ClientID int64           `json:"client_id"`
	Total    decimal.Decimal `json:"total"`
	Orders   []OrderCredit   `json:"orders"`
}
