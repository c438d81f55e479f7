package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Statements are applied one at a time because the MySQL driver
// rejects multi-statement Exec by default.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id         VARCHAR(36)  NOT NULL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		stock      INT          NOT NULL DEFAULT 0,
		category   VARCHAR(100) NOT NULL DEFAULT '',
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_products_stock (stock)
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id         VARCHAR(36)  NOT NULL PRIMARY KEY,
		email      VARCHAR(255) NOT NULL,
		full_name  VARCHAR(255) NOT NULL DEFAULT '',
		role       VARCHAR(32)  NOT NULL DEFAULT 'customer',
		is_active  TINYINT(1)   NOT NULL DEFAULT 1,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_profiles_role_active (role, is_active)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         VARCHAR(36)  NOT NULL PRIMARY KEY,
		user_id    VARCHAR(36)  NULL,
		type       VARCHAR(16)  NOT NULL DEFAULT 'info',
		title      VARCHAR(255) NOT NULL,
		message    TEXT         NOT NULL,
		link       VARCHAR(512) NULL,
		metadata   JSON         NULL,
		is_read    TINYINT(1)   NOT NULL DEFAULT 0,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_notifications_user (user_id, is_read)
	)`,
	`CREATE TABLE IF NOT EXISTS try_on_sessions (
		id         VARCHAR(36)  NOT NULL PRIMARY KEY,
		user_id    VARCHAR(36)  NULL,
		guest_id   VARCHAR(64)  NULL,
		feature    VARCHAR(32)  NOT NULL DEFAULT 'try_on',
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_try_on_guest_created (guest_id, created_at)
	)`,
}

// InitSchema creates the tables this service touches when they do not
// exist yet. Safe to run against a store shared with the rest of the
// application.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
