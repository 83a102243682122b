package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PaymentService records money received against installments or directly against orders.
// Payments are append-only; nothing here updates or deletes a payment row.
type PaymentService interface {
	// RegisterPayment applies a payment to one installment. The installment row is locked for the
	// duration of the transaction so concurrent payments against it are serialized.
	RegisterPayment(ctx context.Context, ref InstallmentRef, in PaymentInput) (*PaymentReceipt, error)
	// RegisterDirectPayment records a payment against the order total with no installment linkage.
	RegisterDirectPayment(ctx context.Context, in PaymentInput) (*PaymentReceipt, error)
}

type paymentService struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPaymentService(pool *pgxpool.Pool) PaymentService {
	return &paymentService{pool: pool, now: time.Now}
}

func (s *paymentService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// lockedInstallment is the installment row plus the order its plan belongs to.
type lockedInstallment struct {
	Installment
	orderID int64
}

func lockInstallment(ctx context.Context, tx pgx.Tx, id int64) (*lockedInstallment, error) {
	var li lockedInstallment
	var status string
	err := tx.QueryRow(ctx, `
		SELECT pi.id, pi.payment_plan_id, pi.installment_number, pi.amount, pi.pay_amount,
		       pi.due_date, pi.status, pp.sales_order_id
		FROM payment_installment pi
		JOIN payment_plan pp ON pp.id = pi.payment_plan_id
		WHERE pi.id = $1
		FOR UPDATE OF pi`,
		id,
	).Scan(&li.ID, &li.PlanID, &li.Number, &li.Amount, &li.PayAmount, &li.DueDate, &status, &li.orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("installment %d", id)
		}
		return nil, storageErr("lock installment", err)
	}
	li.Status = Status(status)
	return &li, nil
}

func (s *paymentService) RegisterPayment(ctx context.Context, ref InstallmentRef, in PaymentInput) (*PaymentReceipt, error) {
	if err := ref.validate(); err != nil {
		return nil, err
	}
	p, err := in.prepare(s.today())
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	installmentID, err := resolveInstallmentID(ctx, tx, ref)
	if err != nil {
		return nil, err
	}
	inst, err := lockInstallment(ctx, tx, installmentID)
	if err != nil {
		return nil, err
	}

	if _, err := checkOrderClient(ctx, tx, p.orderID, p.clientID); err != nil {
		return nil, err
	}
	if ref.PlanID > 0 && ref.PlanID != inst.PlanID {
		return nil, inconsistentf("installment %d belongs to payment plan %d, not plan %d", inst.ID, inst.PlanID, ref.PlanID)
	}
	if ref.Number > 0 && ref.Number != inst.Number {
		return nil, inconsistentf("installment %d is installment number %d, not %d", inst.ID, inst.Number, ref.Number)
	}
	if inst.orderID != p.orderID {
		return nil, inconsistentf("installment %d belongs to sales order %d, not order %d", inst.ID, inst.orderID, p.orderID)
	}

	remaining := inst.Remaining()
	if inst.Status == StatusPaid || !remaining.IsPositive() {
		return nil, validationf("installment %d is already paid", inst.ID)
	}
	if p.amount.GreaterThan(remaining) {
		return nil, validationf("amount %s exceeds remaining balance %s of installment %d",
			p.amount.StringFixed(2), remaining.StringFixed(2), inst.ID)
	}

	paymentID, err := insertPayment(ctx, tx, p, &inst.ID)
	if err != nil {
		return nil, err
	}

	accumulated := inst.PayAmount.Add(p.amount)
	instStatus := StatusPending
	if accumulated.GreaterThanOrEqual(inst.Amount) {
		instStatus = StatusPaid
	}
	if _, err := tx.Exec(ctx,
		"UPDATE payment_installment SET pay_amount = $1, status = $2 WHERE id = $3",
		accumulated, string(instStatus), inst.ID,
	); err != nil {
		return nil, storageErr("update installment", err)
	}

	planPending, planStatus, err := applyToPlan(ctx, tx, inst.PlanID, p.amount)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit payment", err)
	}

	return &PaymentReceipt{
		PaymentID:       paymentID,
		InstallmentID:   &inst.ID,
		Amount:          p.amount,
		NewAccumulated:  accumulated,
		InstallmentDue:  inst.Amount,
		InstallmentPaid: instStatus == StatusPaid,
		PlanPending:     planPending,
		PlanStatus:      planStatus,
	}, nil
}

// applyToPlan moves the plan's signed pending amount toward zero and marks the plan Paid once
// none of its installments is pending. Callers must already hold the installment lock.
func applyToPlan(ctx context.Context, tx pgx.Tx, planID int64, amount decimal.Decimal) (decimal.Decimal, Status, error) {
	var pending decimal.Decimal
	err := tx.QueryRow(ctx,
		"SELECT pending_amount FROM payment_plan WHERE id = $1 FOR UPDATE",
		planID,
	).Scan(&pending)
	if err != nil {
		return decimal.Zero, "", storageErr("lock payment plan", err)
	}

	var open int
	err = tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM payment_installment WHERE payment_plan_id = $1 AND status <> $2",
		planID, string(StatusPaid),
	).Scan(&open)
	if err != nil {
		return decimal.Zero, "", storageErr("count open installments", err)
	}

	pending = pending.Add(amount)
	status := StatusPending
	if open == 0 {
		status = StatusPaid
	}
	if _, err := tx.Exec(ctx,
		"UPDATE payment_plan SET pending_amount = $1, status = $2 WHERE id = $3",
		pending, string(status), planID,
	); err != nil {
		return decimal.Zero, "", storageErr("update payment plan", err)
	}
	return pending, status, nil
}

func (s *paymentService) RegisterDirectPayment(ctx context.Context, in PaymentInput) (*PaymentReceipt, error) {
	p, err := in.prepare(s.today())
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := checkOrderClient(ctx, tx, p.orderID, p.clientID); err != nil {
		return nil, err
	}

	paymentID, err := insertPayment(ctx, tx, p, nil)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit payment", err)
	}
	return &PaymentReceipt{PaymentID: paymentID, Amount: p.amount}, nil
}

// insertPayment writes the payment row and its method side record. installmentID is nil for direct payments.
func insertPayment(ctx context.Context, tx pgx.Tx, p preparedPayment, installmentID *int64) (int64, error) {
	var destiny *string
	if p.destinyBank != nil {
		b := string(*p.destinyBank)
		destiny = &b
	}

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO payments (sales_order_id, payment_installment_id, client_id, payment_method, amount, payment_date, destiny_bank, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.orderID, installmentID, p.clientID, string(p.method), p.amount, p.paymentDate, destiny, p.notes,
	).Scan(&id)
	if err != nil {
		return 0, storageErr("insert payment", err)
	}

	switch {
	case p.transfer != nil:
		t := p.transfer
		if _, err := tx.Exec(ctx, `
			INSERT INTO transfers (payment_id, proof_number, emission_bank, emission_date, destiny_bank, trans_value)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, t.ProofNumber, t.EmissionBank, t.EmissionDate, string(t.DestinyBank), t.Value,
		); err != nil {
			return 0, storageErr("insert transfer", err)
		}
	case p.cheque != nil:
		c := p.cheque
		if _, err := tx.Exec(ctx, `
			INSERT INTO cheques (payment_id, cheque_number, bank, emission_date, estimated_collection_date, cheque_value)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, c.ChequeNumber, c.Bank, c.EmissionDate, c.EstimatedCollectionDate, c.Value,
		); err != nil {
			return 0, storageErr("insert cheque", err)
		}
	}
	return id, nil
}
