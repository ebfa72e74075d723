// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceClaims is the payload of a token the API presents to the food detector.
//
// Subject carries the username the upload was made for, so the detector can
// attribute and throttle work without knowing anything about sessions.
type ServiceClaims struct {
	jwt.RegisteredClaims
}

// ServiceTokenSigner issues and verifies short-lived HS256 service tokens.
type ServiceTokenSigner struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewServiceTokenSigner creates a signer sharing secret with the detector.
func NewServiceTokenSigner(secret, issuer, audience string, ttl time.Duration) (*ServiceTokenSigner, error) {
	if secret == "" {
		return nil, errors.New("sec: service token secret is empty")
	}
	return &ServiceTokenSigner{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Sign creates a token whose subject is the given username.
func (signer *ServiceTokenSigner) Sign(subject string) (string, error) {
	currentTime := signer.now()
	claims := ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    signer.issuer,
			Audience:  jwt.ClaimStrings{signer.audience},
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(signer.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(signer.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign service token: %w", err)
	}
	return signedToken, nil
}

// Verify checks the signature, issuer, audience and expiry of a service token.
func (signer *ServiceTokenSigner) Verify(tokenString string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return signer.secret, nil
	},
		jwt.WithIssuer(signer.issuer),
		jwt.WithAudience(signer.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid service token: %w", err)
	}

	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid service token claims")
	}
	return claims, nil
}
