package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tunesmith/studio/schema"
	"tunesmith/studio/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BasicIdentityProvider keeps bcrypt-hashed credentials in the local user
// table. It exists so that development and test environments do not need a
// Keycloak deployment; it is not intended for production.
type BasicIdentityProvider struct {
	jwtManager *JwtManager
	store      *store.Store
	auditLog   AuditLogger
}

func NewBasicIdentityProvider(st *store.Store, auditLog AuditLogger, secret []byte) IdentityProvider {
	return &BasicIdentityProvider{
		jwtManager: NewJwtManager(secret),
		store:      st,
		auditLog:   auditLog,
	}
}

func (auth *BasicIdentityProvider) addUserToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			userId, err := ValueFromContext(r, userIdKey)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			user, err := auth.store.GetUser(userId)
			if err != nil {
				if errors.Is(err, schema.ErrUserNotFound) {
					http.Error(w, err.Error(), http.StatusUnauthorized)
					return
				}
				http.Error(w, fmt.Sprintf("unable to find user %v: %v", userId, err), http.StatusInternalServerError)
				return
			}

			reqCtx := context.WithValue(r.Context(), userRequestContextKey, user)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		}

		return http.HandlerFunc(handler)
	}
}

func (auth *BasicIdentityProvider) AuthMiddleware() chi.Middlewares {
	return chi.Middlewares{auth.jwtManager.Verifier(), auth.jwtManager.Authenticator(), auth.addUserToContext(), auth.auditLog.Middleware}
}

func (auth *BasicIdentityProvider) AllowDirectSignup() bool {
	return true
}

func (auth *BasicIdentityProvider) LoginWithEmail(email, password string) (LoginResult, error) {
	user, err := auth.store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, schema.ErrUserNotFound) {
			return LoginResult{}, ErrUserNotFoundWithEmail
		}
		return LoginResult{}, err
	}

	if bcrypt.CompareHashAndPassword(user.Password, []byte(password)) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := auth.jwtManager.CreateUserJwt(user.Id)
	if err != nil {
		return LoginResult{}, ErrGeneratingJwt
	}

	return LoginResult{UserId: user.Id, AccessToken: token}, nil
}

func (auth *BasicIdentityProvider) LoginWithToken(accessToken string) (LoginResult, error) {
	return LoginResult{}, errors.New("login with token is not supported for this identity provider")
}

func (auth *BasicIdentityProvider) CreateUser(email, password string) (string, error) {
	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return "", fmt.Errorf("error encrypting password: %w", err)
	}

	userId := uuid.New().String()
	if err := auth.store.CreateLocalUser(userId, email, hashedPwd); err != nil {
		if store.IsValidationError(err) {
			return "", ErrEmailAlreadyInUse
		}
		return "", err
	}

	return userId, nil
}
