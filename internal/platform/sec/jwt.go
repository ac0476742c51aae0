// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, token
// signing) from the domain logic. It holds no storage dependency and is
// injected into the auth service at startup.
package sec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Failure Kinds

// Verification failures are distinct so callers can log them; the auth
// service collapses all of them into one unauthorized response.
var (
	ErrTokenExpired          = errors.New("sec: token expired")
	ErrTokenMalformed        = errors.New("sec: token malformed")
	ErrTokenSignatureInvalid = errors.New("sec: token signature invalid")
)

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec signs and verifies HS256 bearer tokens.
//
// The secret is read-only after construction; a codec is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	issuer string
	parser []jwt.ParserOption
}

// NewTokenCodec creates a codec keyed by secret. An empty secret is rejected.
func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("sec: token secret must not be empty")
	}
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		parser: []jwt.ParserOption{
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuer(issuer),
			jwt.WithStrictDecoding(),
		},
	}, nil
}

/*
Issue creates a signed token asserting subjectID for the window [now, now+ttl).

Timestamps are truncated to whole seconds, so a ttl of zero yields a token
that is already expired.

Returns:
  - string: Compact JWS
  - error: Invalid input or signing failures
*/
func (codec *TokenCodec) Issue(subjectID string, now time.Time, ttl time.Duration) (string, error) {
	if subjectID == "" {
		return "", errors.New("sec: token subject must not be empty")
	}
	if ttl < 0 {
		return "", errors.New("sec: token ttl must not be negative")
	}

	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		Issuer:    codec.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec_token_sign_failed: %w", err)
	}
	return signed, nil
}

/*
Verify checks the signature of token and then its validity at now.

The MAC is confirmed before any claim is evaluated; the key function never
looks at claims.

Returns:
  - *TokenClaims: Verified claims
  - error: wraps [ErrTokenExpired], [ErrTokenMalformed] or [ErrTokenSignatureInvalid]
*/
func (codec *TokenCodec) Verify(token string, now time.Time) (*TokenClaims, error) {
	if nonCanonicalSignature(token) {
		return nil, fmt.Errorf("%w: signature is not canonical base64url", ErrTokenSignatureInvalid)
	}

	options := append([]jwt.ParserOption{jwt.WithTimeFunc(func() time.Time { return now })}, codec.parser...)

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.NewParser(options...).ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return codec.secret, nil
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing subject or issued-at", ErrTokenMalformed)
	}

	return &TokenClaims{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// strictSegment decodes JWS segments and rejects non-zero trailing bits, so
// each signature has exactly one accepted encoding.
var strictSegment = base64.RawURLEncoding.Strict()

// nonCanonicalSignature reports a decodable header and payload followed by a
// signature segment that only decodes leniently.
func nonCanonicalSignature(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, segment := range parts[:2] {
		if _, err := strictSegment.DecodeString(segment); err != nil {
			return false
		}
	}
	_, err := strictSegment.DecodeString(parts[2])
	return err != nil
}

// classifyTokenError maps library errors onto the three failure kinds.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
