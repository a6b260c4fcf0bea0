package model

import "time"

// Employee represents a member of staff who can hold or hand out assets
type Employee struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EmpCode   string    `json:"emp_code" gorm:"type:varchar(32);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"type:varchar(100);index"`
	IsIT      bool      `json:"isIT" gorm:"column:is_it;default:false"`
	Status    string    `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Employee) TableName() string { return "employees" }

// UserLogin holds the credentials of an employee who signed up
type UserLogin struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EmpCode      string    `json:"emp_code" gorm:"type:varchar(32);index;not null"`
	Email        string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (UserLogin) TableName() string { return "user_logins" }

// PasswordResetOTP is a short-lived reset code keyed by email
type PasswordResetOTP struct {
	Email     string    `gorm:"primaryKey;type:varchar(100)"`
	CodeHash  string    `gorm:"type:varchar(255);not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Attempts  int       `gorm:"not null;default:0"`
	CreatedAt time.Time
}

func (PasswordResetOTP) TableName() string { return "password_reset_otps" }
