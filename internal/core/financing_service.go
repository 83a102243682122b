package core

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PlanInput describes a financing plan to create for an existing sales order.
type PlanInput struct {
	OrderID         int64           `json:"order_id" validate:"required,gt=0"`
	NumInstallments int             `json:"num_installments" validate:"required,gt=0,lte=360"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	StartDate       string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	Frequency       string          `json:"frequency,omitempty"`
	PlanType        string          `json:"plan_type,omitempty"`
	LetraNumber     string          `json:"letra_number,omitempty"`
}

// FinancingService creates installment schedules and answers questions about them.
type FinancingService interface {
	// CreateFinancingPlan writes the plan, its installments and, for letra plans, the letra row
	// in one transaction.
	CreateFinancingPlan(ctx context.Context, in PlanInput) (*PaymentPlan, error)
	GetPlan(ctx context.Context, planID int64) (*PaymentPlan, error)
	// ListPlansByClient returns the client's plans that still have a pending balance.
	ListPlansByClient(ctx context.Context, clientID int64) ([]PaymentPlan, error)
	// ListPendingInstallments returns unpaid installments ordered by number.
	// DisplayNumber is the 1-based position in this listing; pay by RealID or by plan + installment number.
	ListPendingInstallments(ctx context.Context, planID int64) ([]PendingInstallment, error)
}

type financingService struct {
	pool *pgxpool.Pool
}

func NewFinancingService(pool *pgxpool.Pool) FinancingService {
	return &financingService{pool: pool}
}

func (s *financingService) CreateFinancingPlan(ctx context.Context, in PlanInput) (*PaymentPlan, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, validationf("start_date must be a date in YYYY-MM-DD format")
	}
	total := in.TotalAmount
	if !total.Equal(total.Round(2)) {
		return nil, validationf("total_amount %s has more than two decimal places", total.String())
	}
	freq := ParseFrequency(in.Frequency)
	planType := ParsePlanType(in.PlanType)
	letraNumber := strings.TrimSpace(in.LetraNumber)
	if planType == PlanTypeLetra && letraNumber == "" {
		return nil, validationf("letra_number is required for a Letra plan")
	}

	schedule, err := BuildSchedule(total, in.NumInstallments, start, freq)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := loadOrder(ctx, tx, in.OrderID); err != nil {
		return nil, err
	}

	plan := PaymentPlan{
		SalesOrderID:    in.OrderID,
		NumInstallments: in.NumInstallments,
		TotalAmount:     total,
		StartDate:       start,
		Frequency:       freq,
		Type:            planType,
		PendingAmount:   total.Neg(),
		Status:          StatusPending,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO payment_plan (sales_order_id, num_installments, total_amount, start_date, frequency, type, pending_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		plan.SalesOrderID, plan.NumInstallments, plan.TotalAmount, plan.StartDate,
		string(plan.Frequency), string(plan.Type), plan.PendingAmount, string(plan.Status),
	).Scan(&plan.ID, &plan.CreatedAt)
	if err != nil {
		return nil, storageErr("insert payment plan", err)
	}

	plan.Installments = make([]Installment, 0, len(schedule))
	for _, si := range schedule {
		inst := Installment{
			PlanID:    plan.ID,
			Number:    si.Number,
			Amount:    si.Amount,
			PayAmount: decimal.Zero,
			DueDate:   si.DueDate,
			Status:    StatusPending,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO payment_installment (payment_plan_id, installment_number, amount, pay_amount, due_date, status)
			VALUES ($1, $2, $3, 0, $4, $5)
			RETURNING id`,
			inst.PlanID, inst.Number, inst.Amount, inst.DueDate, string(inst.Status),
		).Scan(&inst.ID)
		if err != nil {
			return nil, storageErr("insert installment", err)
		}
		plan.Installments = append(plan.Installments, inst)
	}

	if planType == PlanTypeLetra {
		letra := Letra{
			PlanID:      plan.ID,
			LetraNumber: letraNumber,
			LastDate:    schedule[len(schedule)-1].DueDate,
			Status:      StatusPending,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO letras (payment_plan_id, letra_number, last_date, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			letra.PlanID, letra.LetraNumber, letra.LastDate, string(letra.Status),
		).Scan(&letra.ID)
		if err != nil {
			return nil, storageErr("insert letra", err)
		}
		plan.Letra = &letra
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit payment plan", err)
	}
	return &plan, nil
}

func (s *financingService) GetPlan(ctx context.Context, planID int64) (*PaymentPlan, error) {
	plan, err := loadPlan(ctx, s.pool, planID)
	if err != nil {
		return nil, err
	}
	plan.Installments, err = loadInstallments(ctx, s.pool, planID, false)
	if err != nil {
		return nil, err
	}

	var l Letra
	var status string
	err = s.pool.QueryRow(ctx,
		"SELECT id, payment_plan_id, letra_number, last_date, status FROM letras WHERE payment_plan_id = $1",
		planID,
	).Scan(&l.ID, &l.PlanID, &l.LetraNumber, &l.LastDate, &status)
	switch {
	case err == nil:
		l.Status = Status(status)
		plan.Letra = &l
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, storageErr("load letra", err)
	}
	return plan, nil
}

func (s *financingService) ListPlansByClient(ctx context.Context, clientID int64) ([]PaymentPlan, error) {
	if _, err := loadClient(ctx, s.pool, clientID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+planColumns+`
		FROM payment_plan pp
		JOIN sales_orders so ON so.id = pp.sales_order_id
		WHERE so.client_id = $1 AND pp.status = $2
		ORDER BY pp.id`,
		clientID, string(StatusPending),
	)
	if err != nil {
		return nil, storageErr("list client plans", err)
	}
	defer rows.Close()

	var plans []PaymentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, storageErr("scan payment plan", err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list client plans", err)
	}
	return plans, nil
}

func (s *financingService) ListPendingInstallments(ctx context.Context, planID int64) ([]PendingInstallment, error) {
	if _, err := loadPlan(ctx, s.pool, planID); err != nil {
		return nil, err
	}
	installments, err := loadInstallments(ctx, s.pool, planID, true)
	if err != nil {
		return nil, err
	}

	out := make([]PendingInstallment, 0, len(installments))
	for i, inst := range installments {
		out = append(out, PendingInstallment{
			DisplayNumber: i + 1,
			RealID:        inst.ID,
			PlanID:        inst.PlanID,
			Number:        inst.Number,
			Amount:        inst.Amount,
			Paid:          inst.PayAmount,
			Remaining:     inst.Remaining(),
			DueDate:       inst.DueDate,
			Status:        inst.Status,
		})
	}
	return out, nil
}

const planColumns = `pp.id, pp.sales_order_id, pp.num_installments, pp.total_amount, pp.start_date,
	pp.frequency, pp.type, pp.pending_amount, pp.status, pp.created_at`

func scanPlan(row pgx.Row) (*PaymentPlan, error) {
	var p PaymentPlan
	var freq, planType, status string
	err := row.Scan(&p.ID, &p.SalesOrderID, &p.NumInstallments, &p.TotalAmount, &p.StartDate,
		&freq, &planType, &p.PendingAmount, &status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Frequency = Frequency(freq)
	p.Type = PlanType(planType)
	p.Status = Status(status)
	return &p, nil
}

func loadPlan(ctx context.Context, q pgxQuerier, planID int64) (*PaymentPlan, error) {
	p, err := scanPlan(q.QueryRow(ctx, "SELECT "+planColumns+" FROM payment_plan pp WHERE pp.id = $1", planID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("payment plan %d", planID)
		}
		return nil, storageErr("load payment plan", err)
	}
	return p, nil
}

func loadInstallments(ctx context.Context, q pgxQueryer, planID int64, pendingOnly bool) ([]Installment, error) {
	sql := `SELECT id, payment_plan_id, installment_number, amount, pay_amount, due_date, status
		FROM payment_installment WHERE payment_plan_id = $1`
	args := []any{planID}
	if pendingOnly {
		sql += " AND status = $2"
		args = append(args, string(StatusPending))
	}
	sql += " ORDER BY installment_number"

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageErr("list installments", err)
	}
	defer rows.Close()

	var out []Installment
	for rows.Next() {
		var inst Installment
		var status string
		if err := rows.Scan(&inst.ID, &inst.PlanID, &inst.Number, &inst.Amount, &inst.PayAmount, &inst.DueDate, &status); err != nil {
			return nil, storageErr("scan installment", err)
		}
		inst.Status = Status(status)
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list installments", err)
	}
	return out, nil
}

// resolveInstallmentID turns a reference into a real installment id inside the caller's transaction.
func resolveInstallmentID(ctx context.Context, q pgxQuerier, ref InstallmentRef) (int64, error) {
	if err := ref.validate(); err != nil {
		return 0, err
	}
	if ref.ID > 0 {
		return ref.ID, nil
	}
	var id int64
	err := q.QueryRow(ctx,
		"SELECT id FROM payment_installment WHERE payment_plan_id = $1 AND installment_number = $2",
		ref.PlanID, ref.Number,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, notFoundf("installment %d of payment plan %d", ref.Number, ref.PlanID)
		}
		return 0, storageErr("resolve installment", err)
	}
	return id, nil
}
