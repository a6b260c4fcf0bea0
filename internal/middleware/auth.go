package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/pkg/jwtutil"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

const userKey = "user"

// JWTAuthMiddleware validates the bearer token and stores its claims
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return deny(c, http.StatusUnauthorized, apperror.KindUnauthorized, "Missing authorization header")
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format")
				return deny(c, http.StatusUnauthorized, apperror.KindUnauthorized, "Invalid authorization header format")
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if errors.Is(err, jwtutil.ErrExpired) {
				log.Info("Expired token")
				return deny(c, http.StatusUnauthorized, apperror.KindUnauthorized, "Token expired")
			}
			if err != nil {
				log.Warn("Invalid token", zap.Error(err))
				return deny(c, http.StatusUnauthorized, apperror.KindUnauthorized, "Invalid token")
			}

			c.Set(userKey, claims)
			log = logger.With(c, zap.String("emp_code", claims.EmpCode))
			log.Debug("JWT token validated successfully",
				zap.String("emp_code", claims.EmpCode),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}

// RequireIT only lets IT staff through
func RequireIT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := Claims(c)
			if claims == nil {
				return deny(c, http.StatusUnauthorized, apperror.KindUnauthorized, "Authentication required")
			}
			if !claims.IsIT {
				logger.FromEcho(c).Warn("Non IT user rejected",
					zap.String("path", c.Path()),
					zap.String("emp_code", claims.EmpCode))
				return deny(c, http.StatusForbidden, apperror.KindForbidden, "Only IT staff can perform this action")
			}
			return next(c)
		}
	}
}

// Claims returns the authenticated caller, or nil
func Claims(c echo.Context) *jwtutil.UserClaims {
	claims, _ := c.Get(userKey).(*jwtutil.UserClaims)
	return claims
}

// Actor is the employee code of the authenticated caller
func Actor(c echo.Context) string {
	if claims := Claims(c); claims != nil {
		return claims.EmpCode
	}
	return ""
}

func deny(c echo.Context, status int, kind apperror.Kind, message string) error {
	return c.JSON(status, echo.Map{"error": message, "kind": kind})
}
