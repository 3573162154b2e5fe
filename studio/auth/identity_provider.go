package auth

import (
	"errors"
	"net/http"

	"tunesmith/studio/schema"

	"github.com/go-chi/chi/v5"
)

var (
	ErrUserNotFoundWithEmail = errors.New("no user found for given email")
	ErrInvalidCredentials    = errors.New("invalid login credentials")
	ErrGeneratingJwt         = errors.New("error generating jwt")
	ErrEmailAlreadyInUse     = errors.New("email is already in use")
)

type LoginResult struct {
	UserId      string
	AccessToken string
}

// IdentityProvider abstracts where verified caller identities come from.
// The studio itself never validates credentials beyond what the provider
// exposes; production deployments delegate to Keycloak, while the basic
// provider exists for development and tests.
type IdentityProvider interface {
	AuthMiddleware() chi.Middlewares

	AllowDirectSignup() bool

	LoginWithEmail(email, password string) (LoginResult, error)

	LoginWithToken(accessToken string) (LoginResult, error)

	CreateUser(email, password string) (string, error)
}

type requestContextKey string

const userRequestContextKey requestContextKey = "user"

// UserFromContext returns the authenticated caller resolved by the auth
// middleware. Handlers derive ownership from this, never from request bodies.
func UserFromContext(r *http.Request) (schema.User, error) {
	userUntyped := r.Context().Value(userRequestContextKey)
	if userUntyped == nil {
		return schema.User{}, errors.New("user field not found in request context")
	}
	user, ok := userUntyped.(schema.User)
	if !ok {
		return schema.User{}, errors.New("invalid value for user field")
	}
	return user, nil
}
