package server

import (
	"net/http"

	"github.com/golang-jwt/jwt"
)

const tokenCookieName = "slask-token"

// AuthMiddleware guards admin endpoints. A request passes with either
// the static api key in the Authorization header or a valid signed
// token cookie.
func (ws *BuilderServer) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if ws.ApiKey == "" || auth != ws.ApiKey {
			cookie, err := r.Cookie(tokenCookieName)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
				return ws.TokenSecret, nil
			})
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !token.Valid {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
