package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	db *sql.DB
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) InitSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS api_keys (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			key_hash VARCHAR(255) NOT NULL UNIQUE,
			key_prefix VARCHAR(10) NOT NULL,
			type ENUM('live', 'test') NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_used_at TIMESTAMP NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS conversion_jobs (
			id VARCHAR(36) PRIMARY KEY,
			source_file VARCHAR(512) NOT NULL,
			format VARCHAR(16) NOT NULL,
			status VARCHAR(16) NOT NULL,
			email VARCHAR(255),
			lang VARCHAR(8),
			records BIGINT NOT NULL DEFAULT 0,
			storage_key VARCHAR(512),
			report TEXT,
			error TEXT,
			submitted_at TIMESTAMP NULL,
			started_at TIMESTAMP NULL,
			finished_at TIMESTAMP NULL
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			// Migrations are additive and re-runnable; log and keep going.
			slog.Warn("Migration query issue (might be expected)", "error", err)
		}
	}
	return nil
}

func (s *Store) CreateUser(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.db.Exec("INSERT INTO users (email, password_hash) VALUES (?, ?)", email, string(hash))
	return err
}

func (s *Store) AuthenticateUser(email, password string) (*User, error) {
	var user User
	var hash string

	err := s.db.QueryRow("SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email).Scan(&user.ID, &user.Email, &hash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invalid credentials")
	} else if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &user, nil
}

// API Key Methods

type APIKey struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	KeyPrefix string    `json:"key_prefix"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) CreateAPIKey(userID int64, keyType string) (string, error) {
	// Key shape: sk_<type>_<random>. Only the hash is stored; the first
	// 10 chars are kept as a lookup prefix.
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	rawKey := fmt.Sprintf("sk_%s_%s", keyType, hex.EncodeToString(buf))

	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(
		"INSERT INTO api_keys (user_id, key_hash, key_prefix, type) VALUES (?, ?, ?, ?)",
		userID, string(hash), rawKey[:10], keyType,
	)
	if err != nil {
		return "", err
	}

	return rawKey, nil
}

func (s *Store) VerifyAPIKey(rawKey string) (*APIKey, error) {
	// Narrow candidates by stored prefix, then bcrypt-compare each.
	prefix := rawKey
	if len(rawKey) > 10 {
		prefix = rawKey[:10]
	}

	rows, err := s.db.Query("SELECT id, user_id, key_hash, key_prefix, type, created_at FROM api_keys WHERE key_prefix = ?", prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var k APIKey
		var hash string
		if err := rows.Scan(&k.ID, &k.UserID, &hash, &k.KeyPrefix, &k.Type, &k.CreatedAt); err != nil {
			continue
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawKey)); err == nil {
			// Update Last Used (async/background ideally)
			go s.db.Exec("UPDATE api_keys SET last_used_at = NOW() WHERE id = ?", k.ID)
			return &k, nil
		}
	}

	return nil, fmt.Errorf("invalid api key")
}

func (s *Store) ListAPIKeys(userID int64) ([]APIKey, error) {
	query := "SELECT id, user_id, key_prefix, type, created_at FROM api_keys WHERE user_id = ? ORDER BY created_at DESC"
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.KeyPrefix, &k.Type, &k.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Conversion Job Methods

// Job is the persisted view of a conversion job.
type Job struct {
	ID          string     `json:"id"`
	SourceFile  string     `json:"source_file"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	Email       string     `json:"email,omitempty"`
	Lang        string     `json:"lang,omitempty"`
	Records     int64      `json:"records"`
	StorageKey  string     `json:"storage_key,omitempty"`
	Report      []string   `json:"report,omitempty"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// SaveJob inserts or refreshes a job row. It is called on every status
// transition, so the same ID may be written several times.
func (s *Store) SaveJob(j Job) error {
	_, err := s.db.Exec(`INSERT INTO conversion_jobs
		(id, source_file, format, status, email, lang, records, storage_key, report, error, submitted_at, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		status = VALUES(status), records = VALUES(records), storage_key = VALUES(storage_key),
		report = VALUES(report), error = VALUES(error), started_at = VALUES(started_at), finished_at = VALUES(finished_at)`,
		j.ID, j.SourceFile, j.Format, j.Status, j.Email, j.Lang, j.Records,
		j.StorageKey, strings.Join(j.Report, "\n"), j.Error,
		j.SubmittedAt, j.StartedAt, j.FinishedAt,
	)
	return err
}

func (s *Store) GetJob(id string) (*Job, error) {
	row := s.db.QueryRow(`SELECT id, source_file, format, status, email, lang, records,
		storage_key, report, error, submitted_at, started_at, finished_at
		FROM conversion_jobs WHERE id = ?`, id)

	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %s not found", id)
	} else if err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Store) ListJobs(limit int) ([]Job, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT id, source_file, format, status, email, lang, records,
		storage_key, report, error, submitted_at, started_at, finished_at
		FROM conversion_jobs ORDER BY submitted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (*Job, error) {
	var j Job
	var email, lang, storageKey, report, jobErr sql.NullString
	var started, finished sql.NullTime

	if err := r.Scan(&j.ID, &j.SourceFile, &j.Format, &j.Status, &email, &lang, &j.Records,
		&storageKey, &report, &jobErr, &j.SubmittedAt, &started, &finished); err != nil {
		return nil, err
	}

	j.Email = email.String
	j.Lang = lang.String
	j.StorageKey = storageKey.String
	j.Error = jobErr.String
	if report.String != "" {
		j.Report = strings.Split(report.String, "\n")
	}
	if started.Valid {
		j.StartedAt = &started.Time
	}
	if finished.Valid {
		j.FinishedAt = &finished.Time
	}
	return &j, nil
}
