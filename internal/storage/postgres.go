package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/xaenox/dank-times-bot/internal/chat"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

// PostgresStorage stores one row per chat, the snapshot as a JSONB document.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) LoadChats() ([]chat.Snapshot, error) {
	rows, err := s.db.Query(`SELECT data FROM chats ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying chats: %w", err)
	}
	defer rows.Close()

	var snapshots []chat.Snapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("error scanning chat row: %w", err)
		}
		var snapshot chat.Snapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("error decoding chat snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading chat rows: %w", err)
	}
	s.logger.Info("Loaded chats from database", zap.Int("count", len(snapshots)))
	return snapshots, nil
}

// SaveChats upserts every snapshot and removes rows for chats that no longer
// exist, so the table always mirrors the live registry.
func (s *PostgresStorage) SaveChats(snapshots []chat.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(snapshots))
	for _, snapshot := range snapshots {
		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("error encoding chat %d: %w", snapshot.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO chats (id, data, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
			snapshot.ID, data)
		if err != nil {
			return fmt.Errorf("error upserting chat %d: %w", snapshot.ID, err)
		}
		ids = append(ids, snapshot.ID)
	}

	if _, err := tx.Exec(`DELETE FROM chats WHERE id <> ALL($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("error pruning removed chats: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
