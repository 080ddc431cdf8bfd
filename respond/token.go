package respond

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/compose/component"
)

// PropsClaim is the token claim holding the props object.
const PropsClaim = "props"

// TokenDecoder reads props from an HS256-signed token, so a page can hand a
// client a sealed prop set for a later fragment request.
//
// The token is taken from the Param query value, falling back to the
// Header with a "Bearer " prefix.
type TokenDecoder struct {
	// Key is the HMAC signing key.
	Key []byte

	// Param is the query parameter carrying the token.
	// Default: "p"
	Param string

	// Header is the header carrying the token.
	// Default: "Authorization"
	Header string

	// Issuer, when set, must match the iss claim.
	Issuer string

	// Leeway is the clock skew tolerated on exp and nbf.
	Leeway time.Duration

	// Optional makes a request without a token decode to empty props.
	Optional bool
}

// Decode implements PropsDecoder.
func (d TokenDecoder) Decode(r *http.Request) (component.Props, error) {
	raw := d.extract(r)
	if raw == "" {
		if d.Optional {
			return component.Props{}, nil
		}
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if d.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(d.Issuer))
	}
	if d.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(d.Leeway))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return d.Key, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	props := component.Props{}
	switch v := claims[PropsClaim].(type) {
	case nil:
	case map[string]any:
		for key, value := range v {
			props[key] = value
		}
	default:
		return nil, fmt.Errorf("%w: %s claim is %T, want object", ErrInvalidToken, PropsClaim, v)
	}
	return props, nil
}

func (d TokenDecoder) extract(r *http.Request) string {
	param := d.Param
	if param == "" {
		param = "p"
	}
	if v := r.URL.Query().Get(param); v != "" {
		return v
	}

	header := d.Header
	if header == "" {
		header = "Authorization"
	}
	v := r.Header.Get(header)
	if v == "" {
		return ""
	}
	if after, ok := strings.CutPrefix(v, "Bearer "); ok {
		return after
	}
	return ""
}

// SignProps seals props into an HS256 token for TokenDecoder. A positive
// ttl sets the exp claim.
func SignProps(key []byte, issuer string, props component.Props, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		PropsClaim: map[string]any(props),
		"iat":      now.Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
