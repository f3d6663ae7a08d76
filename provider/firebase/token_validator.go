package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"

	auth "github.com/bryanshihpeng/AhaAI-exam-backend"
)

// allowedAlgorithm is the only signature algorithm accepted for ID tokens.
// Pinning it ahead of the certificate fetch is the primary defense against
// algorithm downgrade and confusion attacks.
const allowedAlgorithm = "RS256"

// TokenValidator validates Firebase-issued ID tokens.
type TokenValidator struct {
	config Config
}

// Verify interface compliance.
var _ auth.ExternalTokenValidator = (*TokenValidator)(nil)

// NewTokenValidator creates a validator with the given configuration.
func NewTokenValidator(cfg Config) *TokenValidator {
	return &TokenValidator{config: cfg}
}

// Validate runs the full validation protocol and returns the token's
// identity. Every failure mode, including network errors during the
// certificate fetch, surfaces as a token error.
func (v *TokenValidator) Validate(ctx context.Context, idToken string) (*auth.ExternalIdentity, error) {
	kid, err := v.pinnedKeyID(idToken)
	if err != nil {
		return nil, err
	}

	publicKey, err := v.fetchPublicKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		return publicKey, nil
	}, jwt.WithValidMethods([]string{allowedAlgorithm}))
	if err != nil {
		return nil, normalizeValidationError(err)
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, tokenError("ID token has no usable subject claim", nil)
	}

	return &auth.ExternalIdentity{
		UID:         sub,
		DisplayName: stringClaim(claims, "name"),
		Email:       stringClaim(claims, "email"),
	}, nil
}

// pinnedKeyID decodes the token header without verifying the signature and
// returns the key id, rejecting anything not signed with the pinned
// algorithm. It runs before any network round trip, so malformed or
// downgraded tokens never trigger a certificate fetch.
func (v *TokenValidator) pinnedKeyID(idToken string) (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return "", goerrors.Wrap(err, auth.ErrTokenMalformed.Category, auth.ErrTokenMalformed.Message).
			WithTextCode(auth.ErrTokenMalformed.TextCode)
	}

	alg, _ := token.Header["alg"].(string)
	kid, _ := token.Header["kid"].(string)

	if alg == "" || kid == "" {
		return "", tokenError("ID token header lacks kid or alg", nil)
	}

	if alg != allowedAlgorithm {
		return "", tokenError(fmt.Sprintf("ID token algorithm %q is not allowed", alg), nil)
	}

	return kid, nil
}

// fetchPublicKey retrieves the provider's current certificate set and
// selects the certificate matching kid. There is no local cache; each
// validation fetches fresh keys.
func (v *TokenValidator) fetchPublicKey(ctx context.Context, kid string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, v.config.fetchTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.config.keysURL(), nil)
	if err != nil {
		return nil, tokenError("failed to build certificate request", err)
	}

	res, err := v.config.httpClient().Do(req)
	if err != nil {
		return nil, tokenError("failed to fetch signing certificates", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, tokenError(fmt.Sprintf("certificate endpoint returned status %d", res.StatusCode), nil)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, tokenError("failed to read certificate response", err)
	}

	certs := map[string]string{}
	if err := json.Unmarshal(body, &certs); err != nil {
		return nil, tokenError("failed to decode certificate response", err)
	}

	pem, ok := certs[kid]
	if !ok {
		return nil, tokenError("no certificate matches the token key id", nil)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, tokenError("failed to parse signing certificate", err)
	}

	return publicKey, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	if val, ok := claims[name].(string); ok {
		return val
	}
	return ""
}

func tokenError(message string, cause error) error {
	clone := auth.ErrTokenInvalid.Clone()
	clone.Source = cause
	meta := map[string]any{"provider": "firebase", "reason": message}
	if cause != nil {
		meta["cause"] = cause.Error()
	}
	return clone.WithMetadata(meta)
}

func normalizeValidationError(err error) error {
	if err == nil {
		return nil
	}

	if goerrors.Is(err, jwt.ErrTokenExpired) {
		clone := auth.ErrTokenExpired.Clone()
		clone.Source = err
		return clone.WithMetadata(map[string]any{"provider": "firebase"})
	}

	return tokenError("ID token signature verification failed", err)
}
