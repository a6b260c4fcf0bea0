package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shreehari27/Asset-Management/internal/service"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Signup registers login credentials for an existing employee
func (h *Handler) Signup(c echo.Context) error {
	log := logger.FromEcho(c)

	var req service.SignupInput
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Invalid signup request")
	}

	user, err := h.auth.Signup(logger.RequestContext(c), req)
	if err != nil {
		return respondError(c, err, "Signup failed")
	}

	log.Info("Signup completed", zap.String("emp_code", user.EmpCode))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "User registered successfully",
		"emp_code": user.EmpCode,
		"email":    user.Email,
	})
}

// Login handles user authentication and returns a JWT
func (h *Handler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Invalid login request")
	}

	result, err := h.auth.Login(logger.RequestContext(c), req)
	if err != nil {
		return respondError(c, err, "Login failed")
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) SendResetOTP(c echo.Context) error {
	var req sendOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Invalid OTP request")
	}

	if err := h.auth.SendResetOTP(logger.RequestContext(c), req.Email); err != nil {
		return respondError(c, err, "Failed to send OTP")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to email"})
}

func (h *Handler) VerifyResetOTP(c echo.Context) error {
	var req service.VerifyOTPInput
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Invalid OTP verification request")
	}

	if err := h.auth.VerifyResetOTP(logger.RequestContext(c), req); err != nil {
		return respondError(c, err, "Password reset failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully"})
}
