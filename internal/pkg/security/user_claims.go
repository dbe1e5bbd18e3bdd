package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	jwtSecret         = []byte("Novii")
	jwtIssuer         = "Novii"
	JWTExpirationTime = time.Hour * 24
)

// Init 使用配置覆盖默认签名参数
func Init(secret, issuer string, expirationHours int) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if issuer != "" {
		jwtIssuer = issuer
	}
	if expirationHours > 0 {
		JWTExpirationTime = time.Duration(expirationHours) * time.Hour
	}
}

// ProfileClaims Token 中携带的业务信息，ProfileID 即当前操作者
type ProfileClaims struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Username  string    `json:"username"`
	jwt.RegisteredClaims
}
