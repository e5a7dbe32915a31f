package domain

import "time"

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	Vehicle   string    `json:"vehicle"` // Biển số xe đăng ký
	Password  string    `json:"-"`       // Không bao giờ trả về password hash trong JSON
	Role      string    `json:"role"`    // "user" hoặc "admin"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type RegisterUserDTO struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Mobile   string `json:"mobile" binding:"required,min=8,max=15"`
	Vehicle  string `json:"vehicle" binding:"required,max=15"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type LoginUserDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponseDTO struct {
	Token string `json:"token"`
}
