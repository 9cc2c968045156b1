package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/homedash/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

const pushColumns = `id, email, endpoint, p256dh_key, auth_key, device_name, created_at`

// CreateSubscription saves a browser subscription. Subscribing the same
// endpoint again replaces its keys and owner.
func (s *PushStore) CreateSubscription(email, endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (email, endpoint, p256dh_key, auth_key, device_name)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET email = excluded.email, p256dh_key = excluded.p256dh_key,
		 auth_key = excluded.auth_key, device_name = excluded.device_name`,
		email, endpoint, p256dh, auth, deviceName,
	)
	if err != nil {
		return nil, fmt.Errorf("create push subscription: %w", err)
	}

	// LastInsertId is unreliable after the update branch of an upsert.
	sub, err := scanSubscription(s.db.QueryRow(
		`SELECT `+pushColumns+` FROM push_subscriptions WHERE endpoint = ?`, endpoint,
	))
	if err != nil {
		return nil, fmt.Errorf("get push subscription by endpoint: %w", err)
	}
	return sub, nil
}

// GetByID returns nil when no subscription with id belongs to email.
func (s *PushStore) GetByID(id int64, email string) (*model.PushSubscription, error) {
	sub, err := scanSubscription(s.db.QueryRow(
		`SELECT `+pushColumns+` FROM push_subscriptions WHERE id = ? AND email = ?`, id, email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListByEmail(email string) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT `+pushColumns+` FROM push_subscriptions WHERE email = ? ORDER BY created_at DESC, id DESC`, email,
	)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions by email: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// ListAll returns every subscription. Alerts are shared by the whole
// dashboard, so each one goes to every registered browser.
func (s *PushStore) ListAll() ([]model.PushSubscription, error) {
	rows, err := s.db.Query(`SELECT ` + pushColumns + ` FROM push_subscriptions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// DeleteSubscription reports whether a subscription with id belonging to
// email existed.
func (s *PushStore) DeleteSubscription(id int64, email string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE id = ? AND email = ?`, id, email)
	if err != nil {
		return false, fmt.Errorf("delete push subscription: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete push subscription: %w", err)
	}
	return n > 0, nil
}

func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription by endpoint: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := row.Scan(&sub.ID, &sub.Email, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.DeviceName, &sub.CreatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

func scanSubscriptions(rows *sql.Rows) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}
