// Package backup takes encrypted snapshots of the dashboard database and
// keeps them in S3-compatible object storage.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"

	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/store"
)

var (
	// ErrDisabled is returned when storage credentials or the passphrase
	// are missing.
	ErrDisabled = errors.New("backups are not configured")
	ErrNotFound = errors.New("backup not found")
	// ErrIncomplete is returned when restoring a backup that never finished
	// uploading.
	ErrIncomplete = errors.New("backup did not complete")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

type Config struct {
	S3         S3Config
	Passphrase string
	// Prefix is prepended to every object key.
	Prefix string
	// Schedule is a cron spec such as "@daily" or "0 3 * * *". Empty
	// disables scheduled backups.
	Schedule      string
	RetentionDays int
}

// Enabled reports whether there is enough configuration to upload.
func (c Config) Enabled() bool {
	return c.S3.Bucket != "" && c.S3.AccessKey != "" && c.S3.SecretKey != "" && c.Passphrase != ""
}

// Manager runs backups, restores and retention cleanup.
type Manager struct {
	cfg    Config
	db     *sql.DB
	store  *store.BackupStore
	client s3Client
	logger *slog.Logger

	// run serialises backups and restores.
	run sync.Mutex

	mu   sync.Mutex
	cron *cron.Cron
}

func NewManager(cfg Config, db *sql.DB, bs *store.BackupStore, logger *slog.Logger) *Manager {
	if cfg.Prefix == "" {
		cfg.Prefix = "homedash"
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	m := &Manager{cfg: cfg, db: db, store: bs, logger: logger}
	if cfg.Enabled() {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func (m *Manager) Enabled() bool {
	return m.client != nil
}

// Start schedules backups followed by retention cleanup. It does nothing
// when backups are disabled or no schedule is set.
func (m *Manager) Start(ctx context.Context) error {
	if !m.Enabled() || m.cfg.Schedule == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron != nil {
		return fmt.Errorf("backup schedule already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(m.cfg.Schedule, func() { m.scheduled(ctx) }); err != nil {
		return fmt.Errorf("schedule backups %q: %w", m.cfg.Schedule, err)
	}
	c.Start()
	m.cron = c
	m.logger.Info("backups scheduled", "schedule", m.cfg.Schedule, "retention_days", m.cfg.RetentionDays)

	go func() {
		<-ctx.Done()
		m.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running backup to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

func (m *Manager) scheduled(ctx context.Context) {
	if _, err := m.RunNow(ctx); err != nil {
		m.logger.Error("scheduled backup", "error", err)
	}
	if n, err := m.Cleanup(ctx); err != nil {
		m.logger.Error("backup cleanup", "error", err)
	} else if n > 0 {
		m.logger.Info("old backups removed", "count", n)
	}
}

// RunNow snapshots the database, encrypts the snapshot and uploads it.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	if !m.Enabled() {
		return nil, ErrDisabled
	}
	m.run.Lock()
	defer m.run.Unlock()

	now := time.Now().UTC()
	filename := fmt.Sprintf("backup-%s.db.enc", now.Format("2006-01-02T150405.000Z"))
	key := m.cfg.Prefix + "/" + filename

	record, err := m.store.Create(filename, key)
	if err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	size, err := m.upload(ctx, record)
	if err != nil {
		if serr := m.store.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error()); serr != nil {
			m.logger.Error("record backup failure", "id", record.ID, "error", serr)
		}
		return nil, err
	}
	if err := m.store.UpdateCompleted(record.ID, size); err != nil {
		return nil, err
	}

	m.logger.Info("backup uploaded", "id", record.ID, "key", key, "bytes", size)
	return m.store.GetByID(record.ID)
}

func (m *Manager) upload(ctx context.Context, record *model.Backup) (int64, error) {
	if err := m.store.UpdateStatus(record.ID, model.BackupStatusUploading, ""); err != nil {
		return 0, err
	}

	snapshot, err := m.snapshot(ctx)
	if err != nil {
		return 0, err
	}

	sealed, err := Seal(snapshot, m.cfg.Passphrase)
	if err != nil {
		return 0, fmt.Errorf("encrypt: %w", err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(record.S3Key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return 0, fmt.Errorf("upload to s3: %w", err)
	}
	return int64(len(sealed)), nil
}

// snapshot returns a consistent copy of the database. VACUUM INTO works on
// a live database, WAL or in-memory alike.
func (m *Manager) snapshot(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "homedash-backup-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("snapshot database: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// List returns up to limit backups, newest first.
func (m *Manager) List(limit int) ([]model.Backup, error) {
	return m.store.List(limit)
}

// Restore downloads backup id, checks it decrypts to a healthy SQLite
// database and writes it to dst. The server must not be running against
// dst while this happens.
func (m *Manager) Restore(ctx context.Context, id int64, dst string) error {
	if !m.Enabled() {
		return ErrDisabled
	}
	m.run.Lock()
	defer m.run.Unlock()

	record, err := m.store.GetByID(id)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if record == nil {
		return ErrNotFound
	}
	if !record.Restorable() {
		return fmt.Errorf("backup %d is %s: %w", id, record.Status, ErrIncomplete)
	}

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	sealed, err := io.ReadAll(result.Body)
	result.Body.Close()
	if err != nil {
		return fmt.Errorf("read download: %w", err)
	}

	plaintext, err := Open(sealed, m.cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("decrypt backup %d: %w", id, err)
	}

	tmp := dst + ".restore"
	if err := os.WriteFile(tmp, plaintext, 0600); err != nil {
		return fmt.Errorf("write restored db: %w", err)
	}
	defer os.Remove(tmp)

	if err := checkIntegrity(tmp); err != nil {
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}
	os.Remove(dst + "-wal")
	os.Remove(dst + "-shm")

	m.logger.Info("backup restored", "id", id, "path", dst)
	return nil
}

func checkIntegrity(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// Cleanup deletes backups older than the retention period and returns how
// many were removed. Failing to delete an object is logged, not returned.
func (m *Manager) Cleanup(ctx context.Context) (int, error) {
	if !m.Enabled() {
		return 0, nil
	}

	before := time.Now().UTC().AddDate(0, 0, -m.cfg.RetentionDays)
	keys, err := m.store.DeleteOlderThan(before)
	if err != nil {
		return 0, fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.S3.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete backup object", "key", key, "error", err)
		}
	}
	return len(keys), nil
}
