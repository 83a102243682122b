package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the spacing between consecutive installments of a financing plan.
type Frequency string

const (
	FrequencyMonthly  Frequency = "Monthly"
	FrequencyBiweekly Frequency = "Biweekly"
	FrequencyWeekly   Frequency = "Weekly"
)

// ParseFrequency maps free-form input onto a Frequency.
// Unrecognized values fall back to Monthly.
func ParseFrequency(s string) Frequency {
	switch foldKey(s) {
	case "monthly", "mensual":
		return FrequencyMonthly
	case "biweekly", "quincenal":
		return FrequencyBiweekly
	case "weekly", "semanal":
		return FrequencyWeekly
	default:
		return FrequencyMonthly
	}
}

// PeriodDays returns the fixed day offset between installments.
func (f Frequency) PeriodDays() int {
	switch f {
	case FrequencyBiweekly:
		return 15
	case FrequencyWeekly:
		return 7
	default:
		return 30
	}
}

// PlanType distinguishes plain financing from a letra-backed plan.
type PlanType string

const (
	PlanTypeOtherFinancing PlanType = "OtherFinancing"
	PlanTypeLetra          PlanType = "Letra"
)

// ParsePlanType maps free-form input onto a PlanType. Anything that is not a letra is OtherFinancing.
func ParsePlanType(s string) PlanType {
	if foldKey(s) == "letra" || foldKey(s) == "letras" {
		return PlanTypeLetra
	}
	return PlanTypeOtherFinancing
}

// Status is shared by plans, installments and letras.
type Status string

const (
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
)

// PaymentMethod is how the money was received.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "Cash"
	MethodTransfer PaymentMethod = "Transfer"
	MethodCheque   PaymentMethod = "Cheque"
)

// ParsePaymentMethod returns the canonical method and whether the input named a supported one.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch foldKey(s) {
	case "cash", "efectivo":
		return MethodCash, true
	case "transfer", "transferencia":
		return MethodTransfer, true
	case "cheque", "check":
		return MethodCheque, true
	default:
		return "", false
	}
}

// PaymentPlan is the header of a financing schedule attached to one sales order.
// PendingAmount starts at -TotalAmount and moves toward zero as installments are paid.
type PaymentPlan struct {
	ID              int64           `json:"id"`
	SalesOrderID    int64           `json:"sales_order_id"`
	NumInstallments int             `json:"num_installments"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	StartDate       time.Time       `json:"start_date"`
	Frequency       Frequency       `json:"frequency"`
	Type            PlanType        `json:"type"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	Installments    []Installment   `json:"installments,omitempty"`
	Letra           *Letra          `json:"letra,omitempty"`
}

// Installment is one scheduled portion of a plan. PayAmount accumulates every payment applied to it.
type Installment struct {
	ID        int64           `json:"id"`
	PlanID    int64           `json:"plan_id"`
	Number    int             `json:"installment_number"`
	Amount    decimal.Decimal `json:"amount"`
	PayAmount decimal.Decimal `json:"pay_amount"`
	DueDate   time.Time       `json:"due_date"`
	Status    Status          `json:"status"`
}

// Remaining is the part of the installment still owed.
func (i Installment) Remaining() decimal.Decimal {
	r := i.Amount.Sub(i.PayAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Letra is the bill-of-exchange companion of a PlanTypeLetra plan.
type Letra struct {
	ID          int64     `json:"id"`
	PlanID      int64     `json:"plan_id"`
	LetraNumber string    `json:"letra_number"`
	LastDate    time.Time `json:"last_date"`
	Status      Status    `json:"status"`
}

// PendingInstallment is a row of the pending-installments listing.
// DisplayNumber is the 1-based position shown to the operator; RealID is the database identity.
type PendingInstallment struct {
	DisplayNumber int             `json:"display_number"`
	RealID        int64           `json:"real_id"`
	PlanID        int64           `json:"plan_id"`
	Number        int             `json:"installment_number"`
	Amount        decimal.Decimal `json:"amount"`
	Paid          decimal.Decimal `json:"paid"`
	Remaining     decimal.Decimal `json:"remaining"`
	DueDate       time.Time       `json:"due_date"`
	Status        Status          `json:"status"`
}

// Payment is an append-only ledger entry. InstallmentID is nil for direct-to-order payments.
type Payment struct {
	ID            int64           `json:"id"`
	SalesOrderID  int64           `json:"sales_order_id"`
	InstallmentID *int64          `json:"payment_installment_id,omitempty"`
	ClientID      int64           `json:"client_id"`
	Method        PaymentMethod   `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	DestinyBank   *Bank           `json:"destiny_bank,omitempty"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	Transfer      *Transfer       `json:"transfer,omitempty"`
	Cheque        *Cheque         `json:"cheque,omitempty"`
}

// Transfer holds the bank-transfer details of a payment.
type Transfer struct {
	PaymentID    int64           `json:"payment_id"`
	ProofNumber  string          `json:"proof_number"`
	EmissionBank string          `json:"emission_bank"`
	EmissionDate time.Time       `json:"emission_date"`
	DestinyBank  Bank            `json:"destiny_bank"`
	Value        decimal.Decimal `json:"trans_value"`
}

// Cheque holds the cheque details of a payment.
type Cheque struct {
	PaymentID               int64           `json:"payment_id"`
	ChequeNumber            string          `json:"cheque_number"`
	Bank                    string          `json:"bank"`
	EmissionDate            time.Time       `json:"emission_date"`
	EstimatedCollectionDate time.Time       `json:"estimated_collection_date"`
	Value                   decimal.Decimal `json:"cheque_value"`
}

// PaymentReceipt is what a registration returns to the caller.
// NewAccumulated is only meaningful for installment payments.
type PaymentReceipt struct {
	PaymentID       int64           `json:"payment_id"`
	InstallmentID   *int64          `json:"installment_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	NewAccumulated  decimal.Decimal `json:"new_accumulated_amount"`
	InstallmentDue  decimal.Decimal `json:"installment_amount"`
	InstallmentPaid bool            `json:"installment_paid"`
	PlanPending     decimal.Decimal `json:"plan_pending_amount"`
	PlanStatus      Status          `json:"plan_status,omitempty"`
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
