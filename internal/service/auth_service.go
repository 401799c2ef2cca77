package service

import (
	"crypto/subtle"
	"study_portal_backend/internal/config"
	"study_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 管理员登录，账号与 bcrypt 哈希来自配置
type AuthService struct {
	Cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{Cfg: cfg}
}

func (s *AuthService) Login(username, password string) (string, error) {
	admin := s.Cfg.Admin
	if admin.PasswordHash == "" {
		return "", util.ErrInvalidCredential
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(admin.Username)) != 1 {
		return "", util.ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", util.ErrInvalidCredential
	}
	return util.GenerateJWT(admin.Username, util.RoleAdmin, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetCurrentAdmin(c *gin.Context) *util.Claims {
	claims := util.GetUserFromContext(c)
	if claims == nil || claims.Role != util.RoleAdmin {
		return nil
	}
	return claims
}

// HashPassword 生成配置文件使用的密码哈希
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
