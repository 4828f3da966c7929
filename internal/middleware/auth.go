package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

const AccessTokenCookie = "access_token"

type actorKey struct{}

// Claims - содержимое токена сессии.
type Claims struct {
	UserID      string             `json:"userId"`
	AccountType models.AccountType `json:"accountType"`
	jwt.RegisteredClaims
}

// Auth проверяет токены сессии, выпущенные сервисом авторизации.
type Auth struct {
	secret   []byte
	loginURL string
}

// NewAuth создает проверку токенов с общим секретом HS256.
func NewAuth(secret, loginURL string) *Auth {
	return &Auth{secret: []byte(secret), loginURL: loginURL}
}

// IssueToken выпускает токен для пользователя. Используется в тестах и при локальной отладке.
func (a *Auth) IssueToken(actor models.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      actor.UserID,
		AccountType: actor.AccountType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken проверяет подпись и срок действия токена и возвращает пользователя.
func (a *Auth) ParseToken(tokenString string) (models.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return models.Actor{}, err
	}
	actor := models.Actor{UserID: claims.UserID, AccountType: claims.AccountType}
	if actor.UserID == "" || (!actor.IsVendor() && !actor.IsCommunityMember()) {
		return models.Actor{}, errors.New("token has no valid actor")
	}
	return actor, nil
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Authenticate кладет пользователя из токена в контекст запроса. Запрос без
// действительного токена перенаправляется на страницу входа.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			a.RedirectToLogin(w, r)
			return
		}
		actor, err := a.ParseToken(token)
		if err != nil {
			a.RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RedirectToLogin отвечает 303 See Other на страницу входа.
func (a *Auth) RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, a.loginURL, http.StatusSeeOther)
}

// WithActor возвращает контекст с пользователем.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext возвращает пользователя из контекста или пустого пользователя.
func ActorFromContext(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorKey{}).(models.Actor)
	return actor
}
