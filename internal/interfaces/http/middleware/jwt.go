package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/manufacturing/internal/infrastructure/auth"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys and headers of the caller identity
const (
	JWTClaimsKey  = "jwt_claims"
	TenantIDKey   = "identity_tenant_id"
	UserIDKey     = "identity_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	TenantHeader  = "X-Tenant-ID"
	UserHeader    = "X-User-ID"
)

// JWTConfig holds configuration for the authentication middleware
type JWTConfig struct {
	JWTService *auth.JWTService
	// Required rejects requests without a bearer token. Otherwise the
	// X-Tenant-ID and X-User-ID headers identify the caller.
	Required bool
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

var errMissingCredentials = errors.New("missing credentials")

// DefaultSkipPaths are reachable without credentials
var DefaultSkipPaths = []string{"/health", "/api/v1/system/ping"}

// JWTAuth resolves the caller identity from a bearer token, falling back to
// identity headers when tokens are optional. A token that is present is
// always validated.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			if cfg.Required {
				abortUnauthorized(c, log, errMissingCredentials, "Missing authorization header")
				return
			}
			if !identityFromHeaders(c) {
				return
			}
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}
		// ValidateAccessToken guarantees both ids parse
		tenantID, _ := claims.TenantUUID()
		userID, _ := claims.UserUUID()

		c.Set(JWTClaimsKey, claims)
		setIdentity(c, tenantID, userID)

		log.Debug("JWT authentication successful",
			zap.String("user_id", claims.UserID),
			zap.String("tenant_id", claims.TenantID),
			zap.String("username", claims.Username))

		c.Next()
	}
}

// identityFromHeaders reads the development identity headers. It aborts the
// request and returns false on malformed ids.
func identityFromHeaders(c *gin.Context) bool {
	tenantID, userID := uuid.Nil, uuid.Nil
	if v := c.GetHeader(TenantHeader); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Invalid tenant ID", GetRequestID(c)))
			return false
		}
		tenantID = id
	}
	if v := c.GetHeader(UserHeader); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Invalid user ID", GetRequestID(c)))
			return false
		}
		userID = id
	}
	setIdentity(c, tenantID, userID)
	return true
}

func setIdentity(c *gin.Context, tenantID, userID uuid.UUID) {
	ctx := c.Request.Context()
	if tenantID != uuid.Nil {
		c.Set(TenantIDKey, tenantID)
		ctx = logger.WithField(ctx, logger.FieldTenantID, tenantID.String())
	}
	if userID != uuid.Nil {
		c.Set(UserIDKey, userID)
		ctx = logger.WithField(ctx, logger.FieldUserID, userID.String())
	}
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path))

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingTenantID), errors.Is(err, auth.ErrMissingUserID):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

// GetJWTClaims retrieves the validated token claims, nil for header identities
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetTenantID returns the caller's tenant, if one was resolved
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, TenantIDKey)
}

// GetUserID returns the caller's user, if one was resolved
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, UserIDKey)
}

func getUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	if v, ok := c.Get(key); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
