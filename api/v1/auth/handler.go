package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dns_manager/internal/auth"
	"dns_manager/internal/cache"
	"dns_manager/internal/config"
	"dns_manager/internal/httpx"
	"dns_manager/internal/model"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	Token    string   `json:"token"`
	ExpireAt string   `json:"expireAt"`
	User     UserInfo `json:"user"`
}

// UserInfo represents user information in response
type UserInfo struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ChangePasswordRequest represents change password request body
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// LoginHandler handles user login
func LoginHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
			return
		}

		var user model.User
		if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// User not found or wrong password - return same error for security
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid credentials"))
				return
			}
			httpx.FailErr(c, httpx.ErrDatabaseError("database error", err))
			return
		}

		if user.Status == model.UserStatusInactive {
			httpx.FailErr(c, httpx.ErrForbidden("user is inactive"))
			return
		}

		if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
			httpx.FailErr(c, httpx.ErrInvalidToken("invalid credentials"))
			return
		}

		expireAt := time.Now().Add(time.Duration(cfg.JWT.ExpireMinutes) * time.Minute)
		token, err := auth.GenerateToken(user.ID, user.Username, user.Role, expireAt, cfg.JWT.Issuer)
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to generate token", err))
			return
		}

		httpx.OK(c, LoginResponse{
			Token:    token,
			ExpireAt: expireAt.Format(time.RFC3339),
			User: UserInfo{
				ID:       user.ID,
				Username: user.Username,
				Role:     user.Role,
			},
		})
	}
}

// LogoutHandler revokes the current token until its natural expiry
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		jti := c.GetString("jti")
		if jti == "" {
			httpx.OK(c, nil)
			return
		}

		ttl := time.Hour
		if exp, ok := c.Get("token_expires"); ok {
			if expAt, ok := exp.(time.Time); ok {
				ttl = time.Until(expAt)
			}
		}

		if err := cache.RevokeToken(c.Request.Context(), jti, ttl); err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to revoke token", err))
			return
		}
		httpx.OK(c, nil)
	}
}

// MeHandler returns current user information
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpx.OK(c, gin.H{
			"uid":      c.GetInt("uid"),
			"username": c.GetString("username"),
			"role":     c.GetString("role"),
		})
	}
}

// ChangePasswordHandler updates the current user's password
func ChangePasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
			return
		}

		uid := c.GetInt("uid")
		var user model.User
		if err := db.First(&user, uid).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("database error", err))
			return
		}

		if err := auth.ComparePassword(user.PasswordHash, req.OldPassword); err != nil {
			httpx.FailErr(c, httpx.ErrInvalidToken("old password is incorrect"))
			return
		}

		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to hash password", err))
			return
		}

		if err := db.Model(&user).Update("password_hash", hash).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("database error", err))
			return
		}
		httpx.OK(c, nil)
	}
}
