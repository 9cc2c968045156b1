package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/homedash/internal/database"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

var testConfig = Config{
	S3:         S3Config{Bucket: "test", Region: "us-east-1", AccessKey: "key", SecretKey: "secret"},
	Passphrase: "correct horse",
}

type fixture struct {
	db      *sql.DB
	store   *store.BackupStore
	s3      *mockS3Client
	manager *Manager
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	bs := store.NewBackupStore(db)
	mock := newMockS3()
	m := NewManager(testConfig, db, bs, slog.New(slog.DiscardHandler))
	m.client = mock
	return &fixture{db: db, store: bs, s3: mock, manager: m}
}

func TestDisabledManager(t *testing.T) {
	m := NewManager(Config{S3: S3Config{Bucket: "test"}}, nil, nil, slog.New(slog.DiscardHandler))
	if m.Enabled() {
		t.Fatal("manager without credentials should be disabled")
	}
	if _, err := m.RunNow(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Errorf("RunNow err = %v, want ErrDisabled", err)
	}
	if err := m.Restore(context.Background(), 1, "x.db"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Restore err = %v, want ErrDisabled", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Errorf("Start on disabled manager: %v", err)
	}
	m.Stop()
}

func TestConfigEnabledNeedsPassphrase(t *testing.T) {
	cfg := testConfig
	cfg.Passphrase = ""
	if cfg.Enabled() {
		t.Error("config without passphrase should be disabled")
	}
	if !testConfig.Enabled() {
		t.Error("complete config should be enabled")
	}
}

func TestRunNowUploadsEncryptedSnapshot(t *testing.T) {
	f := setup(t)
	if err := store.NewKVStore(f.db).Set("sh_theme", "dark"); err != nil {
		t.Fatalf("seed kv: %v", err)
	}

	b, err := f.manager.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if b.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want completed", b.Status)
	}
	if !strings.HasPrefix(b.S3Key, "homedash/backup-") {
		t.Errorf("key = %q, want homedash/ prefix", b.S3Key)
	}

	sealed := f.s3.objects[b.S3Key]
	if int64(len(sealed)) != b.SizeBytes {
		t.Errorf("size = %d, uploaded %d bytes", b.SizeBytes, len(sealed))
	}
	plain, err := Open(sealed, testConfig.Passphrase)
	if err != nil {
		t.Fatalf("open uploaded snapshot: %v", err)
	}
	if !bytes.HasPrefix(plain, []byte("SQLite format 3\x00")) {
		t.Error("decrypted snapshot is not a SQLite database")
	}
}

func TestRunNowRecordsFailure(t *testing.T) {
	f := setup(t)
	f.s3.putErr = errors.New("bucket unreachable")

	if _, err := f.manager.RunNow(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}

	list, err := f.manager.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d records, want 1", len(list))
	}
	if list[0].Status != model.BackupStatusFailed || !strings.Contains(list[0].ErrorMessage, "bucket unreachable") {
		t.Errorf("record = %+v", list[0])
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	f := setup(t)
	store.NewKVStore(f.db).Set("sh_theme", "dark")

	b, err := f.manager.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "restored.db")
	if err := f.manager.Restore(context.Background(), b.ID, dst); err != nil {
		t.Fatalf("restore: %v", err)
	}

	restored, err := database.Open(dst)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer restored.Close()

	theme, ok, err := store.NewKVStore(restored).Get("sh_theme")
	if err != nil || !ok || theme != "dark" {
		t.Errorf("restored theme = %q, %v, %v; want dark", theme, ok, err)
	}
}

func TestRestoreWrongPassphrase(t *testing.T) {
	f := setup(t)
	b, err := f.manager.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	cfg := testConfig
	cfg.Passphrase = "wrong"
	other := NewManager(cfg, f.db, f.store, slog.New(slog.DiscardHandler))
	other.client = f.s3

	err = other.Restore(context.Background(), b.ID, filepath.Join(t.TempDir(), "restored.db"))
	if !errors.Is(err, ErrBadPassphrase) {
		t.Fatalf("err = %v, want ErrBadPassphrase", err)
	}
}

func TestRestoreRejectsFailedBackup(t *testing.T) {
	f := setup(t)
	f.s3.putErr = errors.New("bucket unreachable")
	b, _ := f.manager.RunNow(context.Background())
	if b == nil {
		list, _ := f.manager.List(1)
		if len(list) != 1 {
			t.Fatal("failed run left no record")
		}
		b = &list[0]
	}

	err := f.manager.Restore(context.Background(), b.ID, filepath.Join(t.TempDir(), "restored.db"))
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("err = %v, want ErrIncomplete", err)
	}
}

func TestRestoreUnknownID(t *testing.T) {
	f := setup(t)
	err := f.manager.Restore(context.Background(), 99, filepath.Join(t.TempDir(), "restored.db"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCleanupRemovesExpired(t *testing.T) {
	f := setup(t)

	old, err := f.manager.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	fresh, err := f.manager.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	aged := time.Now().UTC().AddDate(0, 0, -40)
	if _, err := f.db.Exec(`UPDATE backups SET created_at = ? WHERE id = ?`, aged, old.ID); err != nil {
		t.Fatalf("age backup: %v", err)
	}

	n, err := f.manager.Cleanup(context.Background())
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	keys := f.s3.keys()
	if len(keys) != 1 || keys[0] != fresh.S3Key {
		t.Errorf("remaining objects = %v, want [%s]", keys, fresh.S3Key)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	f := setup(t)
	f.manager.cfg.Schedule = "not a schedule"

	if err := f.manager.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestStartStop(t *testing.T) {
	f := setup(t)
	f.manager.cfg.Schedule = "@daily"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := f.manager.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.manager.Start(ctx); err == nil {
		t.Error("expected error starting twice")
	}
	f.manager.Stop()
	f.manager.Stop()
}
