package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentRef names the installment a payment targets.
// Either ID is the real identifier, or PlanID + Number select it by its position in the plan.
type InstallmentRef struct {
	ID     int64 `json:"installment_id,omitempty"`
	PlanID int64 `json:"plan_id,omitempty"`
	Number int   `json:"installment_number,omitempty"`
}

func (r InstallmentRef) validate() error {
	if r.ID > 0 {
		return nil
	}
	if r.PlanID > 0 && r.Number > 0 {
		return nil
	}
	return validationf("installment_id, or plan_id together with installment_number, is required")
}

// TransferDetails are the fields required when Method is Transfer.
// The recorded transfer value always equals the payment amount.
type TransferDetails struct {
	ProofNumber     string `json:"proof_number" validate:"required"`
	EmissionBank    string `json:"emission_bank" validate:"required"`
	EmissionDate    string `json:"emission_date" validate:"required,datetime=2006-01-02"`
	DestinationBank string `json:"destination_bank" validate:"required"`
}

// ChequeDetails are the fields required when Method is Cheque.
// The payment amount is taken from Value.
type ChequeDetails struct {
	ChequeNumber            string          `json:"cheque_number" validate:"required"`
	Bank                    string          `json:"bank" validate:"required"`
	EmissionDate            string          `json:"emission_date" validate:"required,datetime=2006-01-02"`
	EstimatedCollectionDate string          `json:"estimated_collection_date" validate:"required,datetime=2006-01-02"`
	Value                   decimal.Decimal `json:"cheque_value"`
}

// PaymentInput is the money movement common to installment and direct payments.
type PaymentInput struct {
	OrderID     int64            `json:"order_id" validate:"required,gt=0"`
	ClientID    int64            `json:"client_id" validate:"required,gt=0"`
	Amount      decimal.Decimal  `json:"amount"`
	Method      string           `json:"method" validate:"required"`
	PaymentDate string           `json:"payment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes       string           `json:"notes,omitempty"`
	Transfer    *TransferDetails `json:"transfer,omitempty" validate:"-"`
	Cheque      *ChequeDetails   `json:"cheque,omitempty" validate:"-"`
}

// preparedPayment is a PaymentInput that passed validation, with every field resolved.
type preparedPayment struct {
	orderID     int64
	clientID    int64
	method      PaymentMethod
	amount      decimal.Decimal
	paymentDate time.Time
	destinyBank *Bank
	notes       string
	transfer    *Transfer
	cheque      *Cheque
}

// prepare validates in and resolves method-specific data. No I/O happens here so every
// precondition is checked before the first write.
func (in PaymentInput) prepare(today time.Time) (preparedPayment, error) {
	if err := validateStruct(in); err != nil {
		return preparedPayment{}, err
	}
	method, ok := ParsePaymentMethod(in.Method)
	if !ok {
		return preparedPayment{}, validationf("unsupported payment method %q (accepted: Cash, Transfer, Cheque)", in.Method)
	}

	p := preparedPayment{
		orderID:     in.OrderID,
		clientID:    in.ClientID,
		method:      method,
		amount:      in.Amount,
		paymentDate: today,
		notes:       strings.TrimSpace(in.Notes),
	}
	if in.PaymentDate != "" {
		d, err := ParseDate(in.PaymentDate)
		if err != nil {
			return preparedPayment{}, validationf("payment_date must be a date in YYYY-MM-DD format")
		}
		p.paymentDate = d
	}

	switch method {
	case MethodTransfer:
		if in.Transfer == nil {
			return preparedPayment{}, validationf("transfer details are required for a Transfer payment")
		}
		if err := validateStruct(in.Transfer); err != nil {
			return preparedPayment{}, err
		}
		bank, err := NormalizeBank(in.Transfer.DestinationBank)
		if err != nil {
			return preparedPayment{}, err
		}
		emitted, _ := ParseDate(in.Transfer.EmissionDate)
		p.destinyBank = &bank
		p.transfer = &Transfer{
			ProofNumber:  strings.TrimSpace(in.Transfer.ProofNumber),
			EmissionBank: strings.TrimSpace(in.Transfer.EmissionBank),
			EmissionDate: emitted,
			DestinyBank:  bank,
		}

	case MethodCheque:
		if in.Cheque == nil {
			return preparedPayment{}, validationf("cheque details are required for a Cheque payment")
		}
		if err := validateStruct(in.Cheque); err != nil {
			return preparedPayment{}, err
		}
		if !in.Cheque.Value.IsPositive() {
			return preparedPayment{}, validationf("cheque_value must be greater than 0")
		}
		emitted, _ := ParseDate(in.Cheque.EmissionDate)
		collect, _ := ParseDate(in.Cheque.EstimatedCollectionDate)
		if collect.Before(emitted) {
			return preparedPayment{}, validationf("estimated_collection_date cannot be before emission_date")
		}
		p.amount = in.Cheque.Value
		p.cheque = &Cheque{
			ChequeNumber:            strings.TrimSpace(in.Cheque.ChequeNumber),
			Bank:                    strings.TrimSpace(in.Cheque.Bank),
			EmissionDate:            emitted,
			EstimatedCollectionDate: collect,
			Value:                   in.Cheque.Value,
		}
	}

	if !p.amount.IsPositive() {
		return preparedPayment{}, validationf("amount must be greater than 0")
	}
	if !p.amount.Equal(p.amount.Round(2)) {
		return preparedPayment{}, validationf("amount %s has more than two decimal places", p.amount.String())
	}
	if p.transfer != nil {
		p.transfer.Value = p.amount
	}
	return p, nil
}
