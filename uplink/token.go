package uplink

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt"
)

// LoadPrivateKey reads the device key from <dir>/<deviceID>.key.
func LoadPrivateKey(dir, deviceID string) (*ecdsa.PrivateKey, error) {
	privateKeyPath := filepath.Join(dir, deviceID+".key")
	privateKeyBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentials, err)
	}

	privateKey, err := jwt.ParseECPrivateKeyFromPEM(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCredentials, privateKeyPath, err)
	}
	return privateKey, nil
}

// Token signs the ES256 device token the cloud expects on /auth/jwt.
func Token(key *ecdsa.PrivateKey, deviceID string, expires time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.StandardClaims{
		Subject:   deviceID,
		ExpiresAt: expires.Unix(),
	})

	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentials, err)
	}
	return tokenString, nil
}

// DeviceToken loads the device key and signs a token valid for ttl.
func DeviceToken(dir, deviceID string, ttl time.Duration) (string, error) {
	key, err := LoadPrivateKey(dir, deviceID)
	if err != nil {
		return "", err
	}
	return Token(key, deviceID, time.Now().Add(ttl))
}
