package service

import (
	"strings"
	"time"

	"github.com/dinepromo/internal/config"
	"github.com/dinepromo/internal/models"
	"github.com/dinepromo/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 管理员认证服务
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
}

// NewAuthService 创建认证服务
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		adminRepo: adminRepo,
	}
}

// JWTClaims 管理端令牌载荷
type JWTClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Login 校验凭证并签发令牌
func (s *AuthService) Login(username, password string) (string, *models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, ErrLoginInvalid
	}

	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return "", nil, err
	}
	if admin == nil {
		return "", nil, ErrLoginInvalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrLoginInvalid
	}

	token, err := s.GenerateToken(admin)
	if err != nil {
		return "", nil, err
	}
	return token, admin, nil
}

// GenerateToken 为管理员签发 HS256 令牌
func (s *AuthService) GenerateToken(admin *models.Admin) (string, error) {
	expireHours := s.cfg.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	claims := JWTClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.SecretKey))
}
