package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nerrad567/bookshelf/internal/auth"
)

// loginRequest is the request body for POST /api/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /api/auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleLogin checks the admin credentials and issues an access token,
// returned in the body and as an HttpOnly cookie for browser page access.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	if err := s.credentials.Check(req.Username, req.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Error("checking admin credentials", "error", err)
		}
		s.logger.Warn("login failed", "username", req.Username, "request_id", requestID(r))
		writeUnauthorized(w, "invalid credentials")
		return
	}

	ttl := s.secCfg.JWT.AccessTokenTTL
	signed, err := auth.GenerateAccessToken(req.Username, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.internalError(w, r, "generating access token", err)
		return
	}
	claims, err := auth.ParseToken(signed, s.secCfg.JWT.Secret)
	if err != nil {
		s.internalError(w, r, "reading issued token", err)
		return
	}
	expiresIn := int(time.Until(claims.ExpiresAt.Time).Round(time.Second).Seconds())

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   expiresIn,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("login succeeded", "username", req.Username, "jti", claims.ID)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}
