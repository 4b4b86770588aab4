package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dinepromo/internal/config"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) *AuthService {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	if err := db.Create(&models.Admin{Username: "boss", PasswordHash: string(hash)}).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "0123456789abcdef0123456789abcdef"
	cfg.JWT.ExpireHours = 2
	return NewAuthService(cfg, repository.NewAdminRepository(db))
}

func TestAuthServiceLogin(t *testing.T) {
	svc := setupAuthServiceTest(t)

	token, admin, err := svc.Login("boss", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || admin == nil || admin.Username != "boss" {
		t.Fatalf("unexpected login result: token=%q admin=%+v", token, admin)
	}

	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("0123456789abcdef0123456789abcdef"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token should parse and validate: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "boss" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := setupAuthServiceTest(t)

	cases := []struct {
		username string
		password string
	}{
		{"boss", "wrong"},
		{"nobody", "secret123"},
		{"", "secret123"},
		{"boss", ""},
	}
	for _, tc := range cases {
		if _, _, err := svc.Login(tc.username, tc.password); !errors.Is(err, ErrLoginInvalid) {
			t.Fatalf("login(%q, %q): expected ErrLoginInvalid, got: %v", tc.username, tc.password, err)
		}
	}
}
