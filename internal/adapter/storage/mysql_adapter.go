package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nkollections/notifier/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) LowStockProducts(ctx context.Context, threshold, limit int) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, stock, category
		FROM products
		WHERE stock > 0 AND stock < ?
		ORDER BY stock ASC, name ASC
		LIMIT ?`,
		threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Stock, &p.Category); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (m *MySQLAdapter) ActiveOperators(ctx context.Context) ([]domain.Operator, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, email, full_name, role, is_active
		FROM profiles
		WHERE role = ? AND is_active = 1`,
		domain.RoleAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("query operators: %w", err)
	}
	defer rows.Close()

	var operators []domain.Operator
	for rows.Next() {
		var op domain.Operator
		if err := rows.Scan(&op.ID, &op.Email, &op.FullName, &op.Role, &op.Active); err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		operators = append(operators, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operators: %w", err)
	}

	return operators, nil
}

func (m *MySQLAdapter) InsertNotification(ctx context.Context, n domain.Notification) error {
	recipient := sql.NullString{String: n.RecipientID, Valid: n.RecipientID != ""}
	link := sql.NullString{String: n.Link, Valid: n.Link != ""}

	var metadata sql.NullString
	if n.Metadata != nil {
		b, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = sql.NullString{String: string(b), Valid: true}
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, link, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, recipient, string(n.Severity), n.Title, n.Message, link, metadata, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

func (m *MySQLAdapter) CountUsageSince(ctx context.Context, guestID string, since time.Time) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM try_on_sessions
		WHERE guest_id = ? AND created_at >= ?`,
		guestID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usage: %w", err)
	}

	return count, nil
}

func (m *MySQLAdapter) InsertUsageEvent(ctx context.Context, e domain.UsageEvent) error {
	userID := sql.NullString{String: e.UserID, Valid: e.UserID != ""}
	guestID := sql.NullString{String: e.GuestID, Valid: e.GuestID != ""}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO try_on_sessions (id, user_id, guest_id, feature, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, userID, guestID, e.Feature, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}

	return nil
}
