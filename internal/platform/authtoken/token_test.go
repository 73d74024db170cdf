package authtoken

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestIssueAndVerify(t *testing.T) {
	v, err := NewVerifier("s3cret", "roadmap", 0)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	user := uuid.New()
	tok, err := v.Issue(user, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := v.Verify(tok)
	if err != nil || got != user {
		t.Fatalf("Verify: want=%s got=%s err=%v", user, got, err)
	}
}

func TestVerifyRejects(t *testing.T) {
	v, _ := NewVerifier("s3cret", "roadmap", 0)
	other, _ := NewVerifier("other", "roadmap", 0)
	wrongIssuer, _ := NewVerifier("s3cret", "elsewhere", 0)
	user := uuid.New()

	expired, _ := v.Issue(user, time.Minute, time.Now().Add(-time.Hour))
	foreign, _ := other.Issue(user, time.Hour, time.Now())
	issuer, _ := wrongIssuer.Issue(user, time.Hour, time.Now())
	badSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "nope", Issuer: "roadmap", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("s3cret"))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: user.String(), Issuer: "roadmap",
	}}).SignedString([]byte("s3cret"))

	cases := map[string]string{
		"expired": expired, "foreign key": foreign, "issuer": issuer,
		"subject": badSub, "no exp": noExp, "garbage": "abc.def.ghi",
	}
	for name, tok := range cases {
		if _, err := v.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: want ErrInvalidToken got=%v", name, err)
		}
	}
	if _, err := NewVerifier(" ", "", 0); err == nil {
		t.Fatalf("empty secret: expected error")
	}
}
