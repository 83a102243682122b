package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderService answers balance questions about sales orders. Orders themselves are created elsewhere.
type OrderService interface {
	GetOrder(ctx context.Context, orderID int64) (*SalesOrder, error)
	GetClient(ctx context.Context, clientID int64) (*Client, error)
	// GetOrderBalance returns total − discount − Σ payments for the order.
	GetOrderBalance(ctx context.Context, orderID int64) (*OrderBalance, error)
	// ListOrderPayments returns every payment recorded against the order, oldest first,
	// with its transfer or cheque details attached.
	ListOrderPayments(ctx context.Context, orderID int64) ([]Payment, error)
	// GetClientCredit returns the orders of a client whose payments exceed total − discount.
	// Direct payments are not capped, so this is where overpayments surface.
	GetClientCredit(ctx context.Context, clientID int64) (*ClientCredit, error)
}

type orderService struct {
	pool *pgxpool.Pool
}

func NewOrderService(pool *pgxpool.Pool) OrderService {
	return &orderService{pool: pool}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxQueryer adds multi-row queries to pgxQuerier.
type pgxQueryer interface {
	pgxQuerier
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadOrder(ctx context.Context, q pgxQuerier, orderID int64) (*SalesOrder, error) {
	var o SalesOrder
	err := q.QueryRow(ctx,
		"SELECT id, client_id, total, discount, created_at FROM sales_orders WHERE id = $1",
		orderID,
	).Scan(&o.ID, &o.ClientID, &o.Total, &o.Discount, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("sales order %d", orderID)
		}
		return nil, storageErr("load order", err)
	}
	return &o, nil
}

func loadClient(ctx context.Context, q pgxQuerier, clientID int64) (*Client, error) {
	var c Client
	var phone, email *string
	err := q.QueryRow(ctx,
		"SELECT id, external_id, name, phone, email, created_at FROM clients WHERE id = $1",
		clientID,
	).Scan(&c.ID, &c.ExternalID, &c.Name, &phone, &email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("client %d", clientID)
		}
		return nil, storageErr("load client", err)
	}
	if phone != nil {
		c.Phone = *phone
	}
	if email != nil {
		c.Email = *email
	}
	return &c, nil
}

// checkOrderClient verifies that the order exists, the client exists, and the order belongs to the client.
func checkOrderClient(ctx context.Context, q pgxQuerier, orderID, clientID int64) (*SalesOrder, error) {
	order, err := loadOrder(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := loadClient(ctx, q, clientID); err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, inconsistentf("sales order %d belongs to client %d, not client %d", orderID, order.ClientID, clientID)
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*SalesOrder, error) {
	return loadOrder(ctx, s.pool, orderID)
}

func (s *orderService) GetClient(ctx context.Context, clientID int64) (*Client, error) {
	return loadClient(ctx, s.pool, clientID)
}

func (s *orderService) GetOrderBalance(ctx context.Context, orderID int64) (*OrderBalance, error) {
	order, err := loadOrder(ctx, s.pool, orderID)
	if err != nil {
		return nil, err
	}

	var paid decimal.Decimal
	var count int
	err = s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM payments WHERE sales_order_id = $1",
		orderID,
	).Scan(&paid, &count)
	if err != nil {
		return nil, storageErr("sum order payments", err)
	}

	return &OrderBalance{
		OrderID:      order.ID,
		ClientID:     order.ClientID,
		Total:        order.Total,
		Discount:     order.Discount,
		Paid:         paid,
		Balance:      order.Total.Sub(order.Discount).Sub(paid),
		PaymentCount: count,
	}, nil
}

func (s *orderService) ListOrderPayments(ctx context.Context, orderID int64) ([]Payment, error) {
	if _, err := loadOrder(ctx, s.pool, orderID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.sales_order_id, p.payment_installment_id, p.client_id, p.payment_method,
		       p.amount, p.payment_date, p.destiny_bank, p.notes, p.created_at,
		       t.proof_number, t.emission_bank, t.emission_date, t.destiny_bank, t.trans_value,
		       c.cheque_number, c.bank, c.emission_date, c.estimated_collection_date, c.cheque_value
		FROM payments p
		LEFT JOIN transfers t ON t.payment_id = p.id
		LEFT JOIN cheques c ON c.payment_id = p.id
		WHERE p.sales_order_id = $1
		ORDER BY p.payment_date, p.id`,
		orderID,
	)
	if err != nil {
		return nil, storageErr("list order payments", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPaymentRow(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list order payments", err)
	}
	return payments, nil
}

func (s *orderService) GetClientCredit(ctx context.Context, clientID int64) (*ClientCredit, error) {
	if _, err := loadClient(ctx, s.pool, clientID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT so.id, so.total - so.discount, COALESCE(SUM(p.amount), 0)
		FROM sales_orders so
		LEFT JOIN payments p ON p.sales_order_id = so.id
		WHERE so.client_id = $1
		GROUP BY so.id, so.total, so.discount
		HAVING COALESCE(SUM(p.amount), 0) > so.total - so.discount
		ORDER BY so.id`,
		clientID,
	)
	if err != nil {
		return nil, storageErr("client credit", err)
	}
	defer rows.Close()

	credit := &ClientCredit{ClientID: clientID, Total: decimal.Zero, Orders: []OrderCredit{}}
	for rows.Next() {
		var oc OrderCredit
		if err := rows.Scan(&oc.OrderID, &oc.Owed, &oc.Paid); err != nil {
			return nil, storageErr("scan client credit", err)
		}
		oc.Credit = oc.Paid.Sub(oc.Owed)
		credit.Total = credit.Total.Add(oc.Credit)
		credit.Orders = append(credit.Orders, oc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("client credit", err)
	}
	return credit, nil
}

// scanPaymentRow scans the payments ⟕ transfers ⟕ cheques projection used by ListOrderPayments.
func scanPaymentRow(rows pgx.Rows) (Payment, error) {
	var (
		p                              Payment
		method                         string
		destiny                        *string
		proof, emissionBank, trDestiny *string
		trDate                         *time.Time
		trValue                        decimal.NullDecimal
		chNumber, chBank               *string
		chEmission, chCollect          *time.Time
		chValue                        decimal.NullDecimal
	)
	err := rows.Scan(
		&p.ID, &p.SalesOrderID, &p.InstallmentID, &p.ClientID, &method,
		&p.Amount, &p.PaymentDate, &destiny, &p.Notes, &p.CreatedAt,
		&proof, &emissionBank, &trDate, &trDestiny, &trValue,
		&chNumber, &chBank, &chEmission, &chCollect, &chValue,
	)
	if err != nil {
		return Payment{}, storageErr("scan payment", fmt.Errorf("failed to scan payment row: %w", err))
	}
	p.Method = PaymentMethod(method)
	if destiny != nil {
		b := Bank(*destiny)
		p.DestinyBank = &b
	}
	if proof != nil {
		p.Transfer = &Transfer{
			PaymentID:    p.ID,
			ProofNumber:  *proof,
			EmissionBank: deref(emissionBank),
			EmissionDate: derefTime(trDate),
			DestinyBank:  Bank(deref(trDestiny)),
			Value:        trValue.Decimal,
		}
	}
	if chNumber != nil {
		p.Cheque = &Cheque{
			PaymentID:               p.ID,
			ChequeNumber:            *chNumber,
			Bank:                    deref(chBank),
			EmissionDate:            derefTime(chEmission),
			EstimatedCollectionDate: derefTime(chCollect),
			Value:                   chValue.Decimal,
		}
	}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
