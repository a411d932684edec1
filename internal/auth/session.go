package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenExpireSec is the JWT lifetime in seconds; 0 means no exp claim.
	tokenExpireSec int
)

func parseTokenExpireTime() error {
	duration := os.Getenv("TOKEN_EXPIRE_TIME")
	if duration == "" || duration == "never" || duration == "0" {
		tokenExpireSec = 0
		return nil
	}
	d, err := time.ParseDuration(duration)
	if err != nil {
		return fmt.Errorf("failed to parse TOKEN_EXPIRE_TIME: %w", err)
	}
	tokenExpireSec = int(d.Seconds())
	return nil
}

// Init generates a fresh ed25519 key pair at runtime. Tokens do not survive
// a restart; clients simply log in again.
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return parseTokenExpireTime()
}

// InitFromPath loads a persistent ed25519 key pair from disk.
func InitFromPath(privatePath, publicPath string) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	return parseTokenExpireTime()
}

// CreateJWT signs a token with "sub" = userID and "role" for admin gating.
func CreateJWT(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
	}
	if tokenExpireSec > 0 {
		claims["exp"] = time.Now().Add(time.Duration(tokenExpireSec) * time.Second).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateJWT verifies a token and returns its subject and role.
func AuthenticateJWT(tokenString string) (string, string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid jwt claims")
	}
	userID, ok := claims["sub"].(string)
	if !ok {
		return "", "", fmt.Errorf("missing sub in jwt")
	}
	role, _ := claims["role"].(string)

	return userID, role, nil
}
