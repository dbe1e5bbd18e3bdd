package middleware

import (
	"Novii/internal/pkg/logger"
	"Novii/internal/pkg/response"
	"Novii/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserIDKey = "user_id"
	TokenKey  = "token"
)

// RevocationChecker 判断 Token 是否已注销
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware(checker RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		revoked, err := checker.IsRevoked(c.Request.Context(), tokenString)
		if err != nil {
			response.Fail(c, response.InternalServerError, "未知错误")
			c.Abort()
			return
		}
		if revoked {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		setIdentity(c, claims.ProfileID, tokenString)
		c.Next()
	}
}

// AuthOptionalMiddleware 可选鉴权：解析成功注入 UID，失败或缺失则 UID 为 uuid.Nil
func AuthOptionalMiddleware(checker RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserIDKey, uuid.Nil)

		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		if revoked, err := checker.IsRevoked(c.Request.Context(), tokenString); err != nil || revoked {
			c.Next()
			return
		}
		if claims, err := security.ValidateToken(tokenString); err == nil {
			setIdentity(c, claims.ProfileID, tokenString)
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func setIdentity(c *gin.Context, profileID uuid.UUID, token string) {
	c.Set(UserIDKey, profileID)
	c.Set(TokenKey, token)

	newCtx := context.WithValue(c.Request.Context(), logger.ProfileIDKey, profileID)
	c.Request = c.Request.WithContext(newCtx)
}
