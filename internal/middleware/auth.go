package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
)

const UserIDKey = "user_id"

// TokenVerifier resolves a bearer token to the owning user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// JWTVerifier checks Supabase access tokens locally against the project's
// JWT secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	if len(strings.Split(tokenString, ".")) != 3 {
		return "", apperror.Unauthorized("invalid token format")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		if len(v.secret) == 0 {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", apperror.New(apperror.KindUnauthorized, "token has expired", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", apperror.New(apperror.KindUnauthorized, "token signature is invalid", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", apperror.New(apperror.KindUnauthorized, "token is malformed", err)
		default:
			return "", apperror.New(apperror.KindUnauthorized, "invalid token", err)
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", apperror.Unauthorized("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", apperror.Unauthorized("missing user id in token")
	}
	return sub, nil
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abortUnauthorized(c, "empty token")
			return
		}

		// Some clients URL-encode the token
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}

		userID, err := verifier.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			abortUnauthorized(c, apperror.Message(err, "invalid token"))
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Error: msg})
}
