package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"testing"
	"time"
)

func sign(secret, method, path, body, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(method + path + body + timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyHMAC(t *testing.T) {
	secret := "testsecret"
	body := `{"columns":"3"}`
	now := strconv.FormatInt(time.Now().Unix(), 10)

	t.Run("valid signature", func(t *testing.T) {
		sig := sign(secret, "POST", "/convert", body, now)
		if err := VerifyHMAC(secret, "POST", "/convert", body, now, sig); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := sign(secret, "POST", "/convert", body, now)
		err := VerifyHMAC(secret, "POST", "/convert", body+"x", now, sig)
		if !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("err = %v, want ErrInvalidSignature", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		sig := sign("othersecret", "POST", "/convert", body, now)
		err := VerifyHMAC(secret, "POST", "/convert", body, now, sig)
		if !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("err = %v, want ErrInvalidSignature", err)
		}
	})

	t.Run("expired timestamp", func(t *testing.T) {
		old := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		sig := sign(secret, "POST", "/convert", body, old)
		err := VerifyHMAC(secret, "POST", "/convert", body, old, sig)
		if !errors.Is(err, ErrRequestExpired) {
			t.Errorf("err = %v, want ErrRequestExpired", err)
		}
	})

	t.Run("future timestamp", func(t *testing.T) {
		future := strconv.FormatInt(time.Now().Add(10*time.Minute).Unix(), 10)
		sig := sign(secret, "POST", "/convert", body, future)
		err := VerifyHMAC(secret, "POST", "/convert", body, future, sig)
		if !errors.Is(err, ErrRequestExpired) {
			t.Errorf("err = %v, want ErrRequestExpired", err)
		}
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		sig := sign(secret, "POST", "/convert", body, "sometime")
		if err := VerifyHMAC(secret, "POST", "/convert", body, "sometime", sig); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("no secret disables verification", func(t *testing.T) {
		if err := VerifyHMAC("", "POST", "/convert", body, now, "whatever"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
