package dto

import "time"

// ============ Пользователи и авторизация ============

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int          `json:"expires_in"`
	User      UserResponse `json:"user"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user manager admin"`
}
