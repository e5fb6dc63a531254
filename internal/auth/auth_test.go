package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestJWT_SignVerifyRoundTrip(t *testing.T) {
	j := NewJWT("secret")
	tok, err := j.Sign(42)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	uid, err := j.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected uid 42, got %d", uid)
	}
}

func TestJWT_RejectsForeignSecret(t *testing.T) {
	tok, err := NewJWT("a").Sign(7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewJWT("b").Verify(tok); err == nil {
		t.Fatalf("expected verification to fail with another secret")
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !ComparePassword(h, "correct horse") {
		t.Fatalf("expected password to match")
	}
	if ComparePassword(h, "wrong") {
		t.Fatalf("expected mismatch")
	}
}

func TestRequireAuth(t *testing.T) {
	j := NewJWT("secret")
	tok, _ := j.Sign(9)

	var seen uint64
	h := RequireAuth(j)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
	}))

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		uid    uint64
	}{
		{"none", func(r *http.Request) {}, http.StatusUnauthorized, 0},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, http.StatusOK, 9},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: tok}) }, http.StatusOK, 9},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = 0
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(r)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if seen != tc.uid {
				t.Fatalf("expected uid %d, got %d", tc.uid, seen)
			}
		})
	}
}

func TestJWT_Expiry(t *testing.T) {
	issued := time.Date(2025, 9, 28, 9, 0, 0, 0, time.UTC)
	j := NewJWT("secret")
	j.now = func() time.Time { return issued }

	tok, err := j.Sign(3)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	j.now = func() time.Time { return issued.Add(TokenTTL - time.Minute) }
	if _, err := j.Verify(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}
	j.now = func() time.Time { return issued.Add(TokenTTL + time.Minute) }
	if _, err := j.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestJWT_RejectsZeroUser(t *testing.T) {
	if _, err := NewJWT("secret").Sign(0); err == nil {
		t.Fatalf("expected sign to reject user 0")
	}
}

func TestUser_BeforeSaveNormalizes(t *testing.T) {
	blank := "   "
	u := User{Email: "  Ada@Example.COM ", Name: &blank}
	if err := u.BeforeSave(nil); err != nil {
		t.Fatalf("before save: %v", err)
	}
	if u.Email != "ada@example.com" || u.Name != nil {
		t.Fatalf("user = %+v", u)
	}

	name := " Ada "
	u.Name = &name
	_ = u.BeforeSave(nil)
	if u.Name == nil || *u.Name != "Ada" {
		t.Fatalf("name = %v", u.Name)
	}
}
