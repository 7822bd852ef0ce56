package middleware

import (
	"log"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	adapter "github.com/gwatts/gin-adapter"
)

// Auth validates Auth0-issued JWTs on every request. The passenger identity
// this service works with is the token's sub claim; no further identity
// lookup happens here.
func Auth(domain, audience string) (gin.HandlerFunc, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
	)
	if err != nil {
		return nil, err
	}

	mw := jwtmiddleware.New(jwtValidator.ValidateToken)
	return adapter.Wrap(mw.CheckJWT), nil
}

// GetUserID extracts the authenticated passenger id (sub claim) from the
// validated token in the request context.
func GetUserID(c *gin.Context) (string, bool) {
	claims, ok := c.Request.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok {
		log.Printf("No user claims found in context")
		return "", false
	}

	return claims.RegisteredClaims.Subject, true
}
