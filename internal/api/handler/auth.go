package handler

import (
	"net/http"
	"strings"

	"educhat/backend/internal/models"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// AuthRequired resolves the acting principal from the opaque bearer
// credential. Token issuance lives with the platform's auth service; this
// middleware only validates and extracts {sub, kind}.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}

		principal, err := h.resolvePrincipal(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func (h *Handler) resolvePrincipal(tokenString string) (models.PrincipalRef, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return h.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return models.PrincipalRef{}, jwt.ErrTokenMalformed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.PrincipalRef{}, jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	kind, _ := claims["kind"].(string)

	ref := models.PrincipalRef{ID: sub, Kind: models.PrincipalKind(kind)}
	if ref.ID == "" || !ref.Kind.Valid() {
		return models.PrincipalRef{}, jwt.ErrTokenInvalidClaims
	}
	return ref, nil
}

// currentPrincipal reads what AuthRequired stored on the context.
func currentPrincipal(c *gin.Context) models.PrincipalRef {
	v, _ := c.Get(principalKey)
	ref, _ := v.(models.PrincipalRef)
	return ref
}
