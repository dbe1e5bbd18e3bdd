package dto

// RegisterDTO 注册
type RegisterDTO struct {
	Email    string  `json:"email" validate:"required,novii_email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Username string  `json:"username" validate:"required,username"`
	FullName *string `json:"full_name" validate:"omitempty,max=64"`
}

// LoginDTO 登录
type LoginDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenDTO 登录/注册结果
type TokenDTO struct {
	Token            string      `json:"token"`
	Profile          *ProfileDTO `json:"profile"`
	PasswordStrength *string     `json:"password_strength,omitempty"`
}
