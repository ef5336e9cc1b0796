package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/dkotenko/tweetgen-bot/internal/errs"
	"github.com/dkotenko/tweetgen-bot/internal/models"
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

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT user_id, username, first_name, last_name, preferences, created_at, last_active
		FROM users
		WHERE user_id = $1`

	user := &models.User{}
	var username, firstName, lastName sql.NullString
	var prefs []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &username, &firstName, &lastName, &prefs, &user.CreatedAt, &user.LastActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Persistence("error querying user", err)
	}

	user.Username = username.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	if len(prefs) > 0 {
		p := &models.Preferences{}
		if err := json.Unmarshal(prefs, p); err != nil {
			return nil, errs.Persistence("error decoding preferences", err)
		}
		user.Preferences = p
	}

	return user, nil
}

func (s *PostgresStorage) UpsertUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			last_active = NOW()`

	if _, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.FirstName, user.LastName); err != nil {
		return errs.Persistence("error upserting user", err)
	}
	return nil
}

func (s *PostgresStorage) UpdateLastActive(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_active = NOW() WHERE user_id = $1`
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return errs.Persistence("error updating last active", err)
	}
	return nil
}

func (s *PostgresStorage) GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error) {
	query := `SELECT preferences FROM users WHERE user_id = $1`

	var prefs []byte
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&prefs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Persistence("error querying preferences", err)
	}
	if len(prefs) == 0 {
		return nil, nil
	}

	p := &models.Preferences{}
	if err := json.Unmarshal(prefs, p); err != nil {
		return nil, errs.Persistence("error decoding preferences", err)
	}
	return p, nil
}

func (s *PostgresStorage) SetPreferences(ctx context.Context, userID int64, prefs models.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return errs.Persistence("error encoding preferences", err)
	}

	query := `
		INSERT INTO users (user_id, preferences)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET preferences = EXCLUDED.preferences`

	if _, err := s.db.ExecContext(ctx, query, userID, data); err != nil {
		return errs.Persistence("error saving preferences", err)
	}
	return nil
}

func (s *PostgresStorage) GetSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	query := `SELECT tier, expires_at FROM subscriptions WHERE user_id = $1`

	sub := &models.Subscription{UserID: userID}
	var expiresAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&sub.Tier, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Persistence("error querying subscription", err)
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		sub.ExpiresAt = &t
	}
	return sub, nil
}

func (s *PostgresStorage) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	if err := s.ensureUser(ctx, sub.UserID); err != nil {
		return err
	}

	query := `
		INSERT INTO subscriptions (user_id, tier, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			expires_at = EXCLUDED.expires_at`

	var expiresAt interface{}
	if sub.ExpiresAt != nil {
		expiresAt = *sub.ExpiresAt
	}
	if _, err := s.db.ExecContext(ctx, query, sub.UserID, sub.Tier, expiresAt); err != nil {
		return errs.Persistence("error upserting subscription", err)
	}
	return nil
}

func (s *PostgresStorage) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	if err := s.ensureUser(ctx, entry.UserID); err != nil {
		return err
	}

	input, err := json.Marshal(entry.Input)
	if err != nil {
		return errs.Persistence("error encoding history input", err)
	}
	tweets, err := json.Marshal(entry.Tweets)
	if err != nil {
		return errs.Persistence("error encoding history tweets", err)
	}

	query := `
		INSERT INTO tweet_history (id, user_id, input_data, generated_tweets, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, input, tweets, createdAt); err != nil {
		return errs.Persistence("error appending history", err)
	}
	return nil
}

func (s *PostgresStorage) GetHistory(ctx context.Context, userID int64, limit int) ([]*models.HistoryEntry, error) {
	query := `
		SELECT id, user_id, input_data, generated_tweets, created_at
		FROM tweet_history
		WHERE user_id = $1
		ORDER BY created_at DESC`

	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Persistence("error querying history", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		entry := &models.HistoryEntry{}
		var input, tweets []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &input, &tweets, &entry.CreatedAt); err != nil {
			return nil, errs.Persistence("error scanning history entry", err)
		}
		if err := json.Unmarshal(input, &entry.Input); err != nil {
			return nil, errs.Persistence("error decoding history input", err)
		}
		if err := json.Unmarshal(tweets, &entry.Tweets); err != nil {
			return nil, errs.Persistence("error decoding history tweets", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("error iterating history", err)
	}

	return entries, nil
}

// ensureUser creates a bare user row so foreign keys on history and
// subscription writes hold even when the user never ran /start.
func (s *PostgresStorage) ensureUser(ctx context.Context, userID int64) error {
	query := `INSERT INTO users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return errs.Persistence("error ensuring user row", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
