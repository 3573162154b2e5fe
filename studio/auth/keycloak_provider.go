package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tunesmith/studio/store"

	"github.com/Nerzal/gocloak/v13"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// KeycloakIdentityProvider delegates all credential handling to an external
// Keycloak deployment. The studio only ever sees verified tokens; on each
// successful verification the local user row is upserted from the token's
// profile claims.
type KeycloakIdentityProvider struct {
	keycloak *gocloak.GoCloak
	store    *store.Store
	auditLog AuditLogger

	realm string
}

type KeycloakArgs struct {
	ServerUrl string
	Realm     string
}

func NewKeycloakIdentityProvider(st *store.Store, auditLog AuditLogger, args KeycloakArgs) (IdentityProvider, error) {
	if args.ServerUrl == "" || args.Realm == "" {
		return nil, fmt.Errorf("keycloak server url and realm must be specified")
	}

	return &KeycloakIdentityProvider{
		keycloak: gocloak.NewClient(args.ServerUrl),
		store:    st,
		auditLog: auditLog,
		realm:    args.Realm,
	}, nil
}

func getToken(r *http.Request) (string, error) {
	if token := jwtauth.TokenFromHeader(r); token != "" {
		return token, nil
	}
	if token := jwtauth.TokenFromCookie(r); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("unable to find auth token")
}

// profileClaims reads the optional profile fields out of an already
// verified access token. Keycloak's userinfo endpoint omits these unless
// the client requests the profile scope, but the token usually carries them.
func profileClaims(accessToken string) (firstName, lastName, picture string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return "", "", ""
	}
	getStr := func(key string) string {
		if v, ok := claims[key].(string); ok {
			return v
		}
		return ""
	}
	return getStr("given_name"), getStr("family_name"), getStr("picture")
}

func (auth *KeycloakIdentityProvider) upsertFromToken(accessToken string) (LoginResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	userInfo, err := auth.keycloak.GetUserInfo(ctx, accessToken, auth.realm)
	if err != nil {
		return LoginResult{}, fmt.Errorf("unable to verify token with keycloak: %w", err)
	}
	if userInfo.Sub == nil {
		return LoginResult{}, fmt.Errorf("user identifier missing in keycloak response")
	}

	firstName, lastName, picture := profileClaims(accessToken)
	if userInfo.GivenName != nil {
		firstName = *userInfo.GivenName
	}
	if userInfo.FamilyName != nil {
		lastName = *userInfo.FamilyName
	}

	user, err := auth.store.UpsertUser(store.UserUpsert{
		Id:              *userInfo.Sub,
		Email:           userInfo.Email,
		FirstName:       firstName,
		LastName:        lastName,
		ProfileImageUrl: picture,
	})
	if err != nil {
		slog.Error("error upserting user from keycloak claims", "keycloak_id", *userInfo.Sub, "error", err)
		return LoginResult{}, err
	}

	return LoginResult{UserId: user.Id, AccessToken: accessToken}, nil
}

func (auth *KeycloakIdentityProvider) middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			token, err := getToken(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			login, err := auth.upsertFromToken(token)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			user, err := auth.store.GetUser(login.UserId)
			if err != nil {
				http.Error(w, fmt.Sprintf("unable to find user %v: %v", login.UserId, err), http.StatusInternalServerError)
				return
			}

			reqCtx := context.WithValue(r.Context(), userRequestContextKey, user)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		}

		return http.HandlerFunc(handler)
	}
}

func (auth *KeycloakIdentityProvider) AuthMiddleware() chi.Middlewares {
	return chi.Middlewares{auth.middleware(), auth.auditLog.Middleware}
}

func (auth *KeycloakIdentityProvider) AllowDirectSignup() bool {
	return false
}

func (auth *KeycloakIdentityProvider) LoginWithEmail(email, password string) (LoginResult, error) {
	return LoginResult{}, fmt.Errorf("login with email is not supported for this identity provider")
}

func (auth *KeycloakIdentityProvider) LoginWithToken(accessToken string) (LoginResult, error) {
	return auth.upsertFromToken(accessToken)
}

func (auth *KeycloakIdentityProvider) CreateUser(email, password string) (string, error) {
	return "", fmt.Errorf("user creation is managed by keycloak for this identity provider")
}
