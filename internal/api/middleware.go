package api

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/service"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Constants for context keys
const (
	ContextUserIDKey    = "userID"
	ContextUserRolesKey = "userRoles"
)

// jwtClaims is the payload issued by the identity provider. Tokens carry
// either a single role or a list of roles.
type jwtClaims struct {
	UserID   string        `json:"uid"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Role     domain.Role   `json:"role,omitempty"`
	Roles    []domain.Role `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *jwtClaims) roles() []domain.Role {
	roles := slices.Clone(c.Roles)
	if c.Role != "" && !slices.Contains(roles, c.Role) {
		roles = append(roles, c.Role)
	}
	return roles
}

// AuthMiddleware verifies the bearer token and provisions its user on first sight.
func AuthMiddleware(jwtSecret string, users service.UserService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
			}
			return
		}
		if !token.Valid || claims.UserID == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}
		if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
			abortWithError(c, http.StatusUnauthorized, "Token has expired")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil || userID == uuid.Nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid user id in token")
			return
		}

		user, err := users.Provision(c.Request.Context(), service.Identity{
			UserID:   userID,
			Username: claims.Username,
			Email:    claims.Email,
			Roles:    claims.roles(),
		})
		if err != nil {
			respondError(c, logger, err)
			return
		}

		// The token decides the roles of this request; the stored copy is informational.
		roles := claims.roles()
		if len(roles) == 0 {
			roles = user.Roles
		}
		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserRolesKey, roles)
		c.Next()
	}
}

// RoleMiddleware creates middleware to check if user has one of the allowed roles.
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, err := getUserRolesFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "User roles not found in context")
			return
		}
		for _, role := range roles {
			if slices.Contains(allowedRoles, role) {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, "Access denied: missing required role")
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return uuid.Nil, domain.ErrMissingIdentity
	}
	id, ok := idRaw.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, domain.ErrMissingIdentity
	}
	return id, nil
}

func getUserRolesFromContext(c *gin.Context) ([]domain.Role, error) {
	rolesRaw, exists := c.Get(ContextUserRolesKey)
	if !exists {
		return nil, errors.New("user roles not found in context")
	}
	roles, ok := rolesRaw.([]domain.Role)
	if !ok {
		return nil, errors.New("invalid user roles type in context")
	}
	return roles, nil
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
