package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"hatbazar/internal/demand-service/adapters/driver/myhttp/handle"

	"github.com/golang-jwt/jwt"
)

type AuthMiddleware struct {
	accessSecret string
}

func NewAuthMiddleware(accessSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		accessSecret: accessSecret,
	}
}

// Wrap verifies the bearer token and injects X-UserId / X-Role for the
// handlers. requiredRole narrows access to one role; pass "" to allow
// any authenticated caller.
func (am *AuthMiddleware) Wrap(requiredRole string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			handle.JsonError(w, http.StatusUnauthorized, fmt.Errorf("empty JWT-Token"))
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(am.accessSecret), nil
		})
		if err != nil {
			handle.JsonError(w, http.StatusUnauthorized, fmt.Errorf("failed to parse JWT-Token"))
			return
		}
		if !token.Valid {
			handle.JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid JWT-Token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			handle.JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid claims"))
			return
		}

		userId, ok := claims["user_id"].(string)
		if !ok {
			handle.JsonError(w, http.StatusUnauthorized, fmt.Errorf("user id not found in token"))
			return
		}

		role, ok := claims["role"].(string)
		if !ok {
			handle.JsonError(w, http.StatusUnauthorized, fmt.Errorf("role not found in token"))
			return
		}

		if requiredRole != "" && role != requiredRole {
			handle.JsonError(w, http.StatusForbidden, fmt.Errorf("only %ss are allowed to use this endpoint", requiredRole))
			return
		}

		r.Header.Set("X-UserId", userId)
		r.Header.Set("X-Role", role)

		next.ServeHTTP(w, r)
	})
}
