package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CashEntity is what an operator opens or closes: the cash drawer, or both bank reconciliations together.
type CashEntity string

const (
	EntityDrawer         CashEntity = "drawer"
	EntityReconciliation CashEntity = "reconciliation"
)

// ParseCashEntity accepts the canonical names and their common Spanish equivalents.
func ParseCashEntity(s string) (CashEntity, error) {
	switch foldKey(s) {
	case "drawer", "cash", "caja":
		return EntityDrawer, nil
	case "reconciliation", "reconciliations", "conciliacion", "conciliaciones":
		return EntityReconciliation, nil
	default:
		return "", validationf("unknown cash register entity %q (accepted: drawer, reconciliation)", s)
	}
}

// CashRow is the fixed identity of one estado_caja row.
type CashRow int16

const (
	RowDrawer CashRow = 1
	RowBankA  CashRow = 2
	RowBankB  CashRow = 3
)

var allCashRows = []CashRow{RowDrawer, RowBankA, RowBankB}

// Rows returns the rows an entity covers, in balance order.
func (e CashEntity) Rows() []CashRow {
	if e == EntityReconciliation {
		return []CashRow{RowBankA, RowBankB}
	}
	return []CashRow{RowDrawer}
}

func (r CashRow) Label() string {
	switch r {
	case RowDrawer:
		return "cash drawer"
	case RowBankA:
		return string(BankA) + " reconciliation"
	case RowBankB:
		return string(BankB) + " reconciliation"
	default:
		return fmt.Sprintf("row %d", r)
	}
}

// RegisterRow is the stored state of one row.
type RegisterRow struct {
	Row            CashRow         `json:"row"`
	Label          string          `json:"label"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	IsOpen         bool            `json:"is_open"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RegisterState is an entity's rows. IsOpen holds only when every row is open.
type RegisterState struct {
	Entity CashEntity    `json:"entity"`
	IsOpen bool          `json:"is_open"`
	Rows   []RegisterRow `json:"rows"`
}

func newRegisterState(entity CashEntity, rows []RegisterRow) *RegisterState {
	st := &RegisterState{Entity: entity, Rows: rows, IsOpen: len(rows) > 0}
	for _, r := range rows {
		if !r.IsOpen {
			st.IsOpen = false
		}
	}
	return st
}

// OpenRegisterInput opens an entity with one balance per row: one for the drawer, two for reconciliation.
type OpenRegisterInput struct {
	Entity   CashEntity        `json:"entity" validate:"required,oneof=drawer reconciliation"`
	Balances []decimal.Decimal `json:"balances" validate:"required"`
}

func (in OpenRegisterInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	want := len(in.Entity.Rows())
	if len(in.Balances) != want {
		return validationf("%s requires exactly %d opening balance(s), got %d", in.Entity, want, len(in.Balances))
	}
	for i, b := range in.Balances {
		if b.IsNegative() {
			return validationf("opening balance for %s cannot be negative", in.Entity.Rows()[i].Label())
		}
	}
	return nil
}

// checkTransition enforces Closed → Open → Closed on every row of the entity.
func checkTransition(rows []RegisterRow, open bool) error {
	for _, r := range rows {
		if open && r.IsOpen {
			return fmt.Errorf("%w: %s", ErrAlreadyOpen, r.Label)
		}
		if !open && !r.IsOpen {
			return fmt.Errorf("%w: %s", ErrAlreadyClosed, r.Label)
		}
	}
	return nil
}

// CashRegisterService tracks the open/closed state of the cash drawer and the bank reconciliations.
type CashRegisterService interface {
	Consult(ctx context.Context, entity CashEntity) (*RegisterState, error)
	// Open fails with ErrAlreadyOpen unless every row of the entity is closed.
	Open(ctx context.Context, in OpenRegisterInput) (*RegisterState, error)
	// Close fails with ErrAlreadyClosed unless every row of the entity is open. Balances are left untouched.
	Close(ctx context.Context, entity CashEntity) (*RegisterState, error)
}

type cashRegisterService struct {
	pool *pgxpool.Pool
}

func NewCashRegisterService(pool *pgxpool.Pool) CashRegisterService {
	return &cashRegisterService{pool: pool}
}

func checkEntity(entity CashEntity) error {
	if entity != EntityDrawer && entity != EntityReconciliation {
		return validationf("unknown cash register entity %q (accepted: drawer, reconciliation)", entity)
	}
	return nil
}

func (s *cashRegisterService) Consult(ctx context.Context, entity CashEntity) (*RegisterState, error) {
	if err := checkEntity(entity); err != nil {
		return nil, err
	}
	rows, err := readRegisterRows(ctx, s.pool, entity.Rows(), false)
	if err != nil {
		return nil, err
	}
	return newRegisterState(entity, rows), nil
}

func (s *cashRegisterService) Open(ctx context.Context, in OpenRegisterInput) (*RegisterState, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureRegisterRows(ctx, tx); err != nil {
		return nil, err
	}
	targets := in.Entity.Rows()
	current, err := readRegisterRows(ctx, tx, targets, true)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(current, true); err != nil {
		return nil, err
	}

	for i, row := range targets {
		if _, err := tx.Exec(ctx, `
			INSERT INTO estado_caja (id, opening_balance, is_open, updated_at)
			VALUES ($1, $2, TRUE, NOW())
			ON CONFLICT (id) DO UPDATE
			SET opening_balance = EXCLUDED.opening_balance, is_open = TRUE, updated_at = NOW()`,
			int16(row), in.Balances[i],
		); err != nil {
			return nil, storageErr("open "+row.Label(), err)
		}
	}

	updated, err := readRegisterRows(ctx, tx, targets, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit register open", err)
	}
	return newRegisterState(in.Entity, updated), nil
}

func (s *cashRegisterService) Close(ctx context.Context, entity CashEntity) (*RegisterState, error) {
	if err := checkEntity(entity); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureRegisterRows(ctx, tx); err != nil {
		return nil, err
	}
	targets := entity.Rows()
	current, err := readRegisterRows(ctx, tx, targets, true)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(current, false); err != nil {
		return nil, err
	}

	for _, row := range targets {
		if _, err := tx.Exec(ctx,
			"UPDATE estado_caja SET is_open = FALSE, updated_at = NOW() WHERE id = $1",
			int16(row),
		); err != nil {
			return nil, storageErr("close "+row.Label(), err)
		}
	}

	updated, err := readRegisterRows(ctx, tx, targets, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit register close", err)
	}
	return newRegisterState(entity, updated), nil
}

// ensureRegisterRows creates any missing fixed row as closed with a zero balance.
func ensureRegisterRows(ctx context.Context, tx pgx.Tx) error {
	for _, row := range allCashRows {
		if _, err := tx.Exec(ctx,
			"INSERT INTO estado_caja (id, opening_balance, is_open) VALUES ($1, 0, FALSE) ON CONFLICT (id) DO NOTHING",
			int16(row),
		); err != nil {
			return storageErr("initialize cash register", err)
		}
	}
	return nil
}

func readRegisterRows(ctx context.Context, q pgxQueryer, targets []CashRow, lock bool) ([]RegisterRow, error) {
	ids := make([]int16, len(targets))
	for i, r := range targets {
		ids[i] = int16(r)
	}
	sql := "SELECT id, opening_balance, is_open, updated_at FROM estado_caja WHERE id = ANY($1) ORDER BY id"
	if lock {
		sql += " FOR UPDATE"
	}

	rows, err := q.Query(ctx, sql, ids)
	if err != nil {
		return nil, storageErr("read cash register", err)
	}
	defer rows.Close()

	found := make(map[CashRow]RegisterRow, len(targets))
	for rows.Next() {
		var r RegisterRow
		var id int16
		if err := rows.Scan(&id, &r.OpeningBalance, &r.IsOpen, &r.UpdatedAt); err != nil {
			return nil, storageErr("scan cash register", err)
		}
		r.Row = CashRow(id)
		r.Label = r.Row.Label()
		found[r.Row] = r
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read cash register", err)
	}

	// Rows that were never initialized read as closed with a zero balance.
	out := make([]RegisterRow, 0, len(targets))
	for _, t := range targets {
		r, ok := found[t]
		if !ok {
			r = RegisterRow{Row: t, Label: t.Label(), OpeningBalance: decimal.Zero}
		}
		out = append(out, r)
	}
	return out, nil
}
