package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/pkg/config"
	"github.com/Shreehari27/Asset-Management/pkg/jwtutil"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
	"github.com/Shreehari27/Asset-Management/prometheus"
)

const minPasswordLength = 6

// Notifier delivers password reset codes to users
type Notifier interface {
	SendResetOTP(ctx context.Context, email, code string) error
}

// LogNotifier writes reset codes to the log instead of sending them
type LogNotifier struct{}

func (LogNotifier) SendResetOTP(ctx context.Context, email, code string) error {
	logger.FromContext(ctx).Info("Password reset OTP issued",
		zap.String("email", email),
		zap.String("otp", code))
	return nil
}

// AuthService handles signup, login and OTP based password reset
type AuthService struct {
	db       *gorm.DB
	jwt      *jwtutil.JWTUtil
	otp      config.OTPConfig
	notifier Notifier
	now      func() time.Time
	newCode  func() (string, error)
}

func NewAuthService(db *gorm.DB, jwt *jwtutil.JWTUtil, otp config.OTPConfig, notifier Notifier) *AuthService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &AuthService{
		db:       db,
		jwt:      jwt,
		otp:      otp,
		notifier: notifier,
		now:      time.Now,
		newCode:  sixDigitCode,
	}
}

type SignupInput struct {
	EmpCode  string `json:"emp_code" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPInput struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UserInfo is the identity returned on login
type UserInfo struct {
	EmpCode string `json:"emp_code"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsIT    bool   `json:"isIT"`
}

type LoginResult struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Signup registers credentials for an existing employee
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.UserLogin, error) {
	log := logger.FromContext(ctx)
	prometheus.RecordAuthOperation("signup")

	empCode := strings.TrimSpace(in.EmpCode)
	email := normalizeEmail(in.Email)
	if empCode == "" || email == "" || in.Password == "" {
		return nil, apperror.Validation("All fields are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperror.Validation("Password must be at least %d characters", minPasswordLength)
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&model.Employee{}).Where("emp_code = ?", empCode).Count(&n).Error; err != nil {
		return nil, apperror.Store(err, "Failed to look up employee")
	}
	if n == 0 {
		prometheus.RecordAuthError("employee_not_found")
		return nil, apperror.NotFound("Employee not found")
	}
	if err := db.Model(&model.UserLogin{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, apperror.Store(err, "Failed to check email")
	}
	if n > 0 {
		prometheus.RecordAuthError("email_taken")
		return nil, apperror.Conflict("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindInternal, "Failed to hash password")
	}

	user := model.UserLogin{EmpCode: empCode, Email: email, PasswordHash: string(hash)}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflict("Email already registered")
		}
		return nil, apperror.Store(err, "Failed to create user")
	}

	log.Info("User signed up", zap.String("emp_code", empCode), zap.String("email", email))
	return &user, nil
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	log := logger.FromContext(ctx)
	prometheus.RecordAuthOperation("login")
	defer prometheus.TrackDBOperation("login")()

	email := normalizeEmail(in.Email)
	db := s.db.WithContext(ctx)

	var user model.UserLogin
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			prometheus.RecordAuthError("user_not_found")
			return nil, apperror.New(apperror.KindUnauthorized, "Invalid email or password")
		}
		return nil, apperror.Store(err, "Failed to look up user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		prometheus.RecordAuthError("invalid_password")
		return nil, apperror.New(apperror.KindUnauthorized, "Invalid email or password")
	}

	var emp model.Employee
	if err := db.Where("emp_code = ?", user.EmpCode).First(&emp).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.New(apperror.KindUnauthorized, "Employee record no longer exists")
		}
		return nil, apperror.Store(err, "Failed to look up employee")
	}
	if emp.Status == EmployeeInactive {
		prometheus.RecordAuthError("inactive_employee")
		return nil, apperror.New(apperror.KindForbidden, "Employee is inactive")
	}

	token, err := s.jwt.GenerateToken(emp.EmpCode, user.Email, emp.IsIT)
	if err != nil {
		prometheus.RecordAuthError("token_generation_failed")
		return nil, apperror.Wrap(err, apperror.KindInternal, "Failed to issue token")
	}

	log.Info("User logged in", zap.String("emp_code", emp.EmpCode), zap.Bool("is_it", emp.IsIT))
	return &LoginResult{
		Token: token,
		User: UserInfo{
			EmpCode: emp.EmpCode,
			Name:    emp.Name,
			Email:   user.Email,
			IsIT:    emp.IsIT,
		},
	}, nil
}

// SendResetOTP issues a reset code for a registered email, replacing any
// previous one
func (s *AuthService) SendResetOTP(ctx context.Context, email string) error {
	prometheus.RecordAuthOperation("send_otp")
	email = normalizeEmail(email)
	if email == "" {
		return apperror.Validation("email is required")
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&model.UserLogin{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return apperror.Store(err, "Failed to look up user")
	}
	if n == 0 {
		return apperror.NotFound("User not found")
	}

	code, err := s.newCode()
	if err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "Failed to generate OTP")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "Failed to hash OTP")
	}

	otp := model.PasswordResetOTP{
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: s.now().Add(s.otp.TTL),
		Attempts:  0,
		CreatedAt: s.now(),
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "attempts", "created_at"}),
	}).Create(&otp).Error
	if err != nil {
		return apperror.Store(err, "Failed to store OTP")
	}

	if err := s.notifier.SendResetOTP(ctx, email, code); err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "Failed to deliver OTP")
	}
	return nil
}

// VerifyResetOTP checks a reset code and replaces the password. The code is
// consumed on success, on expiry and once the attempt limit is reached.
func (s *AuthService) VerifyResetOTP(ctx context.Context, in VerifyOTPInput) error {
	log := logger.FromContext(ctx)
	prometheus.RecordAuthOperation("verify_otp")

	email := normalizeEmail(in.Email)
	if email == "" || in.OTP == "" || in.NewPassword == "" {
		return apperror.Validation("email, otp and new_password are required")
	}
	if len(in.NewPassword) < minPasswordLength {
		return apperror.Validation("Password must be at least %d characters", minPasswordLength)
	}

	// reject is reported after commit so deletes and attempt counts persist
	var reject error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var otp model.PasswordResetOTP
		if err := tx.Where("email = ?", email).First(&otp).Error; err != nil {
			if isNotFound(err) {
				return apperror.Validation("Invalid or expired OTP")
			}
			return apperror.Store(err, "Failed to look up OTP")
		}

		if !s.now().Before(otp.ExpiresAt) {
			prometheus.RecordAuthError("otp_expired")
			reject = apperror.Validation("Invalid or expired OTP")
			return tx.Delete(&otp).Error
		}
		if otp.Attempts >= s.otp.MaxAttempts {
			prometheus.RecordAuthError("otp_attempts_exceeded")
			reject = apperror.Validation("Too many attempts, request a new OTP")
			return tx.Delete(&otp).Error
		}

		if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(strings.TrimSpace(in.OTP))); err != nil {
			prometheus.RecordAuthError("otp_mismatch")
			reject = apperror.Validation("Invalid OTP")
			return tx.Model(&otp).UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return apperror.Wrap(err, apperror.KindInternal, "Failed to hash password")
		}
		if err := tx.Model(&model.UserLogin{}).Where("email = ?", email).Update("password_hash", string(hash)).Error; err != nil {
			return apperror.Store(err, "Failed to update password")
		}
		if err := tx.Delete(&otp).Error; err != nil {
			return apperror.Store(err, "Failed to clear OTP")
		}

		return nil
	})
	if err != nil {
		return apperror.Store(err, "Failed to verify OTP")
	}
	if reject != nil {
		return reject
	}

	log.Info("Password reset", zap.String("email", email))
	return nil
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
