package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/remiges-tech/numspeak/wscutils"
)

// TokenVerifier verifies a raw ID token. *oidc.IDTokenVerifier satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

type AuthMiddleware struct {
	Verifier TokenVerifier
	Cache    TokenCache
	Logger   *logharbour.Logger
}

func NewAuthMiddleware(clientID string, provider *oidc.Provider, cache TokenCache, logger *logharbour.Logger) *AuthMiddleware {
	verifier := provider.Verifier(&oidc.Config{ClientID: clientID})

	return &AuthMiddleware{
		Verifier: verifier,
		Cache:    cache,
		Logger:   logger,
	}
}

const providerTimeout = 5 * time.Second

// LoadAuthMiddleware discovers the OIDC provider at providerURL and builds an
// AuthMiddleware for clientID.
func LoadAuthMiddleware(ctx context.Context, clientID, providerURL string, cache TokenCache, logger *logharbour.Logger) (*AuthMiddleware, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, providerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider %s: %w", providerURL, err)
	}

	return NewAuthMiddleware(clientID, provider, cache, logger), nil
}

// MiddlewareFunc returns a gin.HandlerFunc (middleware) that checks for a valid
// bearer token and stores its subject under wscutils.RequestUserKey.
func (a *AuthMiddleware) MiddlewareFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		lh := a.Logger.WithModule("auth").WithOp("verify").WithRemoteIP(c.ClientIP())

		rawIDToken, err := ExtractToken(c.Request.Header.Get("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				wscutils.NewErrorResponse(wscutils.MsgIDTokenMissing, wscutils.ErrcodeTokenMissing))
			return
		}

		isCached, err := a.Cache.Get(ctx, rawIDToken)
		if err != nil {
			lh.Error(err).LogActivity("token cache lookup failed", nil)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				wscutils.NewErrorResponse(wscutils.MsgIDTokenCacheFailed, wscutils.ErrcodeTokenCacheFailed))
			return
		}

		var subject string
		if isCached {
			subject, err = SubjectFromToken(rawIDToken)
			if err != nil {
				lh.Warn().LogActivity("cached token has no readable subject", map[string]any{"error": err.Error()})
			}
		} else {
			idToken, err := a.Verifier.Verify(ctx, rawIDToken)
			if err != nil {
				lh.WithStatus(logharbour.Failure).Info().LogActivity("token verification failed", map[string]any{"error": err.Error()})
				c.Set("auth_error", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					wscutils.NewErrorResponse(wscutils.MsgIDTokenVerificationFailed, wscutils.ErrcodeTokenVerificationFailed))
				return
			}
			subject = idToken.Subject

			if err := a.Cache.Set(ctx, rawIDToken); err != nil {
				lh.Error(err).LogActivity("token cache store failed", nil)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					wscutils.NewErrorResponse(wscutils.MsgIDTokenCacheFailed, wscutils.ErrcodeTokenCacheFailed))
				return
			}
		}

		if subject != "" {
			c.Set(wscutils.RequestUserKey, subject)
		}
		c.Next()
	}
}

// SubjectFromToken reads the "sub" claim without verifying the signature.
// Only call it for tokens that were verified earlier.
func SubjectFromToken(rawToken string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	return claims.GetSubject()
}

// ExtractToken extracts the token from the Authorization header.
func ExtractToken(headerValue string) (string, error) {
	const prefix = "Bearer "

	if !strings.HasPrefix(headerValue, prefix) {
		return "", fmt.Errorf("missing or incorrect Authorization header format")
	}

	token := strings.TrimPrefix(headerValue, prefix)
	if token == "" {
		return "", fmt.Errorf("missing token in Authorization header")
	}

	return token, nil
}
