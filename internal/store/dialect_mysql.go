package store

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

func (d *MySQLDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return nil
}

func (d *MySQLDialect) SchemaQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS credentials (
			name VARCHAR(64) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at VARCHAR(64) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id VARCHAR(36) PRIMARY KEY,
			test_id BIGINT NOT NULL,
			test_title TEXT NOT NULL,
			answered_count INT NOT NULL,
			question_count INT NOT NULL,
			submitted_at VARCHAR(64) NOT NULL
		);`,
	}
}
