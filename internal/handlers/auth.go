package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"

	"github.com/rkahn/rundash/internal/services/strava"
)

// stateTTL bounds how long an OAuth round trip may take.
const stateTTL = 10 * time.Minute

// AuthHandler handles the Strava OAuth routes. The state parameter is
// a short-lived signed token so the callback can reject forged
// redirects without any server-side session state.
type AuthHandler struct {
	strava *strava.Client
	secret []byte
	log    *zap.Logger
}

// NewAuthHandler creates an auth handler signing state with secret.
func NewAuthHandler(client *strava.Client, secret string, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{strava: client, secret: []byte(secret), log: log}
}

// RegisterRoutes registers the OAuth routes
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/strava", h.Connect).Methods("GET")
	r.HandleFunc("/auth/callback", h.Callback).Methods("GET")
	r.HandleFunc("/auth/disconnect", h.Disconnect).Methods("GET")
}

// Connect redirects the browser to Strava's authorization page.
func (h *AuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if !h.strava.Configured() {
		respondJSONError(w, http.StatusServiceUnavailable,
			"Strava is not configured. Set STRAVA_CLIENT_ID and STRAVA_CLIENT_SECRET.")
		return
	}

	state, err := h.signState()
	if err != nil {
		h.log.Error("state_sign_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Could not start Strava authorization")
		return
	}

	http.Redirect(w, r, h.strava.AuthURL(state), http.StatusFound)
}

// Callback exchanges the authorization code for tokens and redirects
// to the dashboard.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		respondJSONError(w, http.StatusBadRequest, fmt.Sprintf("Strava auth denied: %s", errParam))
		return
	}

	code := q.Get("code")
	if code == "" {
		respondJSONError(w, http.StatusBadRequest, "No authorization code received")
		return
	}

	if err := h.verifyState(q.Get("state")); err != nil {
		h.log.Warn("state_verify_failed", zap.Error(err))
		respondJSONError(w, http.StatusBadRequest, "Invalid state parameter")
		return
	}

	if err := h.strava.Exchange(r.Context(), code); err != nil {
		h.log.Error("token_exchange_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Token exchange failed")
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Disconnect removes the stored tokens and redirects to the dashboard.
func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.strava.Disconnect(); err != nil {
		h.log.Error("disconnect_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Disconnect failed")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// signState issues a short-lived HS256 token with a fresh nonce.
func (h *AuthHandler) signState() (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Issuer("rundash").
		IssuedAt(now).
		Expiration(now.Add(stateTTL)).
		Claim("nonce", uuid.NewString()).
		Build()
	if err != nil {
		return "", fmt.Errorf("build state token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, h.secret))
	if err != nil {
		return "", fmt.Errorf("sign state token: %w", err)
	}
	return string(signed), nil
}

// verifyState checks the signature, issuer, and expiry of a state token.
func (h *AuthHandler) verifyState(state string) error {
	if state == "" {
		return fmt.Errorf("missing state")
	}
	_, err := jwt.Parse([]byte(state),
		jwt.WithKey(jwa.HS256, h.secret),
		jwt.WithIssuer("rundash"),
		jwt.WithValidate(true),
	)
	return err
}
