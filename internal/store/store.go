package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"badboys-inventory-api/internal/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver - production backend
	_ "modernc.org/sqlite"             // Pure Go SQLite driver - no CGO required
)

// Store wraps the relational database the core persists to. Every operation
// touching more than one entity must run inside a transaction from BeginTx.
type Store struct {
	DB     *sql.DB
	driver string
}

// Open connects to the configured backend and ensures the schema exists.
func Open(cfg config.StoreConfig) (*Store, error) {
	switch cfg.Type {
	case "mysql":
		return openMySQL(cfg)
	default: // sqlite
		return openSQLite(cfg.Path)
	}
}

func openMySQL(cfg config.StoreConfig) (*Store, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &Store{DB: db, driver: "mysql"}
	if err := s.createTables(mysqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[Store] MySQL initialized: %s/%s", cfg.Host, cfg.Name)
	return s, nil
}

func openSQLite(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{DB: db, driver: "sqlite"}
	if err := s.createTables(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[Store] SQLite initialized: %s", path)
	return s, nil
}

// OpenSQLite opens a SQLite-backed store directly. Used by tests and
// single-binary deployments.
func OpenSQLite(path string) (*Store, error) {
	return openSQLite(path)
}

// BeginTx starts a transaction at the strongest isolation the backend
// supports. SQLite transactions are serializable by definition; MySQL is
// asked for it explicitly.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	var opts *sql.TxOptions
	if s.driver == "mysql" {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	tx, err := s.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) createTables(schema []string) error {
	for _, stmt := range schema {
		if _, err := s.DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// sqliteSchema creates the core tables on the SQLite backend.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		coins NUMERIC NOT NULL DEFAULT 0,
		inventory TEXT NOT NULL DEFAULT '',
		inventory_version INTEGER NOT NULL DEFAULT 0,
		synced_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS item_identities (
		item_uuid TEXT PRIMARY KEY,
		item_id INTEGER NOT NULL,
		wear REAL,
		seed INTEGER,
		name_tag TEXT NOT NULL DEFAULT '',
		stickers TEXT,
		created_by TEXT NOT NULL,
		source TEXT NOT NULL,
		current_owner TEXT,
		created_at DATETIME NOT NULL,
		deleted_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS item_transfers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_uuid TEXT NOT NULL,
		from_user TEXT,
		to_user TEXT NOT NULL,
		transfer_type TEXT NOT NULL,
		trade_id INTEGER,
		listing_id INTEGER,
		metadata TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_item ON item_transfers(item_uuid)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		item_key TEXT NOT NULL,
		item_data TEXT NOT NULL,
		price NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		expires_at DATETIME NOT NULL,
		buyer_id TEXT,
		created_at DATETIME NOT NULL,
		sold_at DATETIME,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status, expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_item ON listings(item_key, status)`,
	`CREATE TABLE IF NOT EXISTS price_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL,
		wear REAL,
		price NUMERIC NOT NULL,
		listing_id INTEGER NOT NULL,
		sold_at DATETIME,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_price_history_item ON price_history(item_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS coin_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_coin_tx_user ON coin_transactions(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS shop_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price NUMERIC NOT NULL,
		category TEXT NOT NULL,
		item_id INTEGER NOT NULL DEFAULT 0,
		coins_granted NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
}

// mysqlSchema creates the core tables on the MySQL backend.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(128) NOT NULL DEFAULT '',
		coins DECIMAL(16,2) NOT NULL DEFAULT 0,
		inventory MEDIUMTEXT NOT NULL,
		inventory_version BIGINT NOT NULL DEFAULT 0,
		synced_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS item_identities (
		item_uuid VARCHAR(36) PRIMARY KEY,
		item_id INT NOT NULL,
		wear DOUBLE,
		seed INT,
		name_tag VARCHAR(128) NOT NULL DEFAULT '',
		stickers TEXT,
		created_by VARCHAR(64) NOT NULL,
		source VARCHAR(32) NOT NULL,
		current_owner VARCHAR(64),
		created_at DATETIME NOT NULL,
		deleted_at DATETIME,
		INDEX idx_identities_owner (current_owner)
	)`,
	`CREATE TABLE IF NOT EXISTS item_transfers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		item_uuid VARCHAR(36) NOT NULL,
		from_user VARCHAR(64),
		to_user VARCHAR(64) NOT NULL,
		transfer_type VARCHAR(32) NOT NULL,
		trade_id BIGINT,
		listing_id BIGINT,
		metadata TEXT,
		created_at DATETIME NOT NULL,
		INDEX idx_transfers_item (item_uuid)
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		item_key VARCHAR(64) NOT NULL,
		item_data TEXT NOT NULL,
		price DECIMAL(16,2) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'active',
		expires_at DATETIME NOT NULL,
		buyer_id VARCHAR(64),
		created_at DATETIME NOT NULL,
		sold_at DATETIME,
		updated_at DATETIME NOT NULL,
		INDEX idx_listings_status (status, expires_at),
		INDEX idx_listings_item (item_key, status)
	)`,
	`CREATE TABLE IF NOT EXISTS price_history (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		item_id INT NOT NULL,
		wear DOUBLE,
		price DECIMAL(16,2) NOT NULL,
		listing_id BIGINT NOT NULL,
		sold_at DATETIME,
		created_at DATETIME NOT NULL,
		INDEX idx_price_history_item (item_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS coin_transactions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		type VARCHAR(32) NOT NULL,
		amount DECIMAL(16,2) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		INDEX idx_coin_tx_user (user_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS shop_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		price DECIMAL(16,2) NOT NULL,
		category VARCHAR(32) NOT NULL,
		item_id INT NOT NULL DEFAULT 0,
		coins_granted DECIMAL(16,2) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
}
