package app

import (
	"sales-assistant/internal/core"

	"github.com/shopspring/decimal"
)

// CreatePlanRequest is the input for creating a financing plan.
type CreatePlanRequest struct {
	OrderID         int64           `json:"order_id" jsonschema:"description=Sales order the plan finances"`
	NumInstallments int             `json:"num_installments" jsonschema:"description=Number of installments,minimum=1"`
	TotalAmount     decimal.Decimal `json:"total_amount" jsonschema:"description=Amount to finance"`
	StartDate       string          `json:"start_date" jsonschema:"description=Plan start date (YYYY-MM-DD); the first installment falls one period later"`
	Frequency       string          `json:"frequency,omitempty" jsonschema:"enum=Monthly,enum=Biweekly,enum=Weekly"`
	PlanType        string          `json:"plan_type,omitempty" jsonschema:"enum=OtherFinancing,enum=Letra"`
	LetraNumber     string          `json:"letra_number,omitempty" jsonschema:"description=Bill number; required when plan_type is Letra"`
}

func (r CreatePlanRequest) toInput() core.PlanInput {
	return core.PlanInput{
		OrderID:         r.OrderID,
		NumInstallments: r.NumInstallments,
		TotalAmount:     r.TotalAmount,
		StartDate:       r.StartDate,
		Frequency:       r.Frequency,
		PlanType:        r.PlanType,
		LetraNumber:     r.LetraNumber,
	}
}

// PaymentFields are the money-movement fields shared by installment and direct payments.
// Transfer fields apply when Method is Transfer; cheque fields when Method is Cheque.
type PaymentFields struct {
	OrderID     int64           `json:"order_id" jsonschema:"description=Sales order being paid"`
	ClientID    int64           `json:"client_id" jsonschema:"description=Client making the payment"`
	Amount      decimal.Decimal `json:"amount,omitempty" jsonschema:"description=Amount received; ignored for cheques"`
	Method      string          `json:"method" jsonschema:"enum=Cash,enum=Transfer,enum=Cheque"`
	PaymentDate string          `json:"payment_date,omitempty" jsonschema:"description=YYYY-MM-DD; defaults to today"`
	Notes       string          `json:"notes,omitempty"`

	EmissionDate string `json:"emission_date,omitempty" jsonschema:"description=Transfer or cheque emission date (YYYY-MM-DD)"`

	ProofNumber     string `json:"proof_number,omitempty" jsonschema:"description=Transfer proof number"`
	EmissionBank    string `json:"emission_bank,omitempty" jsonschema:"description=Bank the transfer was sent from"`
	DestinationBank string `json:"destination_bank,omitempty" jsonschema:"description=Bank that received the transfer,enum=Bancolombia,enum=Davivienda"`

	ChequeNumber            string          `json:"cheque_number,omitempty"`
	Bank                    string          `json:"bank,omitempty" jsonschema:"description=Bank the cheque is drawn on"`
	EstimatedCollectionDate string          `json:"estimated_collection_date,omitempty" jsonschema:"description=YYYY-MM-DD"`
	ChequeValue             decimal.Decimal `json:"cheque_value,omitempty" jsonschema:"description=Cheque face value; becomes the payment amount"`
}

func (f PaymentFields) toInput() core.PaymentInput {
	in := core.PaymentInput{
		OrderID:     f.OrderID,
		ClientID:    f.ClientID,
		Amount:      f.Amount,
		Method:      f.Method,
		PaymentDate: f.PaymentDate,
		Notes:       f.Notes,
	}
	method, _ := core.ParsePaymentMethod(f.Method)
	switch method {
	case core.MethodTransfer:
		in.Transfer = &core.TransferDetails{
			ProofNumber:     f.ProofNumber,
			EmissionBank:    f.EmissionBank,
			EmissionDate:    f.EmissionDate,
			DestinationBank: f.DestinationBank,
		}
	case core.MethodCheque:
		in.Cheque = &core.ChequeDetails{
			ChequeNumber:            f.ChequeNumber,
			Bank:                    f.Bank,
			EmissionDate:            f.EmissionDate,
			EstimatedCollectionDate: f.EstimatedCollectionDate,
			Value:                   f.ChequeValue,
		}
	}
	return in
}

// RegisterPaymentRequest pays one installment, named either by InstallmentID or by
// PlanID + InstallmentNumber.
type RegisterPaymentRequest struct {
	InstallmentID     int64 `json:"installment_id,omitempty" jsonschema:"description=Real installment id (real_id from the pending list)"`
	PlanID            int64 `json:"plan_id,omitempty" jsonschema:"description=Plan id; used with installment_number"`
	InstallmentNumber int   `json:"installment_number,omitempty" jsonschema:"description=Installment number within the plan"`
	PaymentFields
}

func (r RegisterPaymentRequest) ref() core.InstallmentRef {
	return core.InstallmentRef{ID: r.InstallmentID, PlanID: r.PlanID, Number: r.InstallmentNumber}
}

// DirectPaymentRequest pays an order directly, outside any financing plan.
type DirectPaymentRequest struct {
	PaymentFields
}

// OpenRegisterRequest opens the drawer with one balance or the reconciliation pair with two
// (Bancolombia first, then Davivienda).
type OpenRegisterRequest struct {
	Entity   string            `json:"entity" jsonschema:"enum=drawer,enum=reconciliation"`
	Balances []decimal.Decimal `json:"balances" jsonschema:"description=Opening balances in row order"`
}

// The remaining request types carry a single identifier and exist so every command has a typed argument.

type planRef struct {
	PlanID int64 `json:"plan_id"`
}

type clientRef struct {
	ClientID int64 `json:"client_id"`
}

type orderRef struct {
	OrderID int64 `json:"order_id"`
}

type registerRef struct {
	Entity string `json:"entity" jsonschema:"enum=drawer,enum=reconciliation"`
}
