package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"planeat-api/internal/config"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/logx"
)

// Claims represents JWT claims used by this service.
type Claims struct {
	Kind  string   `json:"kind"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type tokenKeys struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
}

var (
	// ErrMissingRSAKeys is returned when JWT_ALGO=RS256 lacks a key pair.
	ErrMissingRSAKeys = errors.New("jwt: RS256 requires JWT_RS_PRIVATE_KEY and JWT_RS_PUBLIC_KEY")
	// ErrInsecureSecret is returned for an empty HS256 secret, or the public
	// default secret outside local development.
	ErrInsecureSecret = errors.New("jwt: JWT_HS_SECRET is empty or the public default")
)

func loadKeys(cfg *config.Config) (*tokenKeys, error) {
	switch cfg.JWT.Algo {
	case "RS256":
		if cfg.JWT.RSPrivateKey == "" || cfg.JWT.RSPublicKey == "" {
			return nil, ErrMissingRSAKeys
		}
		priv, err := parseRSAPrivateKeyFromPEM([]byte(cfg.JWT.RSPrivateKey))
		if err != nil {
			return nil, err
		}
		pub, err := parseRSAPublicKeyFromPEM([]byte(cfg.JWT.RSPublicKey))
		if err != nil {
			return nil, err
		}
		return &tokenKeys{method: jwt.SigningMethodRS256, signKey: priv, verifyKey: pub}, nil
	case "HS256", "":
		secret := cfg.JWT.HSSecret
		if secret == "" || (secret == config.DevJWTSecret && !logx.IsLocalDev(cfg.AppEnv)) {
			return nil, ErrInsecureSecret
		}
		return &tokenKeys{method: jwt.SigningMethodHS256, signKey: []byte(secret), verifyKey: []byte(secret)}, nil
	default:
		return nil, errors.New("unsupported JWT_ALGO")
	}
}

// CheckConfig reports whether cfg can sign and verify tokens. The server
// refuses to start when it cannot.
func CheckConfig(cfg *config.Config) error {
	_, err := loadKeys(cfg)
	return err
}

func parseRSAPrivateKeyFromPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("invalid RSA private PEM")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		return key, nil
	}
	k8, err2 := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err2 != nil {
		return nil, err
	}
	k, ok := k8.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("unsupported PKCS8 private key type")
	}
	return k, nil
}

func parseRSAPublicKeyFromPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("invalid RSA public PEM")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	k, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("unsupported public key type")
	}
	return k, nil
}

// SignAccess issues an access token for userID valid for JWT_ACCESS_MIN minutes.
func SignAccess(cfg *config.Config, userID uuid.UUID, roles []string) (string, error) {
	keys, err := loadKeys(cfg)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	claims := &Claims{
		Kind:  "user",
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWT.Issuer,
			Audience:  jwt.ClaimStrings{cfg.JWT.Audience},
			Subject:   mw.UserSubject(userID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.JWT.AccessMin) * time.Minute)),
		},
	}
	return jwt.NewWithClaims(keys.method, claims).SignedString(keys.signKey)
}

// ParseAndValidate verifies a token string and returns claims.
func ParseAndValidate(cfg *config.Config, tokenStr string) (*Claims, error) {
	keys, err := loadKeys(cfg)
	if err != nil {
		return nil, err
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{keys.method.Alg()}),
		jwt.WithIssuer(cfg.JWT.Issuer),
		jwt.WithAudience(cfg.JWT.Audience),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) { return keys.verifyKey, nil })
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Parser adapts ParseAndValidate to the JWT middleware.
func Parser(cfg *config.Config) mw.TokenParser {
	return func(token string) (*mw.AuthContext, error) {
		claims, err := ParseAndValidate(cfg, token)
		if err != nil {
			return nil, err
		}
		return &mw.AuthContext{Subject: claims.Subject, Kind: claims.Kind, Roles: claims.Roles}, nil
	}
}
