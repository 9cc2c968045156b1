package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("other", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	original := []byte("SQLite format 3\x00 pretend database pages")

	sealed, err := Seal(original, "test-passphrase-123")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !bytes.HasPrefix(sealed, magic) {
		t.Error("sealed data should start with the magic header")
	}
	if bytes.Contains(sealed, original) {
		t.Error("sealed data contains the plaintext")
	}

	opened, err := Open(sealed, "test-passphrase-123")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, original) {
		t.Errorf("opened = %q, want %q", opened, original)
	}
}

func TestSealUsesFreshSalt(t *testing.T) {
	a, _ := Seal([]byte("same"), "pass")
	b, _ := Seal([]byte("same"), "pass")
	if bytes.Equal(a, b) {
		t.Error("two seals of the same data should differ")
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, _ := Seal([]byte("secret data"), "correct-password")

	_, err := Open(sealed, "wrong-password")
	if !errors.Is(err, ErrBadPassphrase) {
		t.Fatalf("err = %v, want ErrBadPassphrase", err)
	}
}

func TestOpenTampered(t *testing.T) {
	sealed, _ := Seal([]byte("secret data"), "pass")
	sealed[len(sealed)-1] ^= 0xff

	if _, err := Open(sealed, "pass"); !errors.Is(err, ErrBadPassphrase) {
		t.Fatalf("err = %v, want ErrBadPassphrase", err)
	}
}

func TestOpenRejectsForeignData(t *testing.T) {
	if _, err := Open([]byte("short"), "pass"); err == nil {
		t.Error("expected error for short input")
	}
	junk := bytes.Repeat([]byte{0x42}, 64)
	if _, err := Open(junk, "pass"); err == nil || errors.Is(err, ErrBadPassphrase) {
		t.Errorf("err = %v, want a not-a-backup error", err)
	}
}

func TestSealEmptyPassphrase(t *testing.T) {
	if _, err := Seal([]byte("x"), ""); err == nil {
		t.Error("expected error for empty passphrase")
	}
}
