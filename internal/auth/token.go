// Package auth issues and verifies the self-contained access tokens shared by
// the user service and the PDF service, and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Profile holds the account fields embedded in a token so downstream services
// never need to read the account store.
type Profile struct {
	Name           string
	Surname        string
	DateOfBirthday string // YYYY-MM-DD
}

// Identity is the verified content of an access token.
type Identity struct {
	SubjectID string
	Email     string
	Profile
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims is the wire form of an access token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email          string `json:"email"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	DateOfBirthday string `json:"date_of_birthday"`
	Type           string `json:"type"`
}

// Codec signs and verifies access tokens with a shared HMAC secret.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// Issue returns a signed HS256 token for the subject, valid for ttl.
func (c *Codec) Issue(subjectID, email string, p Profile, ttl time.Duration) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:          email,
		Name:           p.Name,
		Surname:        p.Surname,
		DateOfBirthday: p.DateOfBirthday,
		Type:           common.AccessTokenType,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature, expiry and type of tokenString.
// Failures are reported as common.ErrTokenExpired, common.ErrWrongTokenType
// or common.ErrInvalidToken; it never panics on hostile input.
func (c *Codec) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Type != common.AccessTokenType {
		return nil, common.ErrWrongTokenType
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, common.ErrInvalidToken
	}

	id := &Identity{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Profile: Profile{
			Name:           claims.Name,
			Surname:        claims.Surname,
			DateOfBirthday: claims.DateOfBirthday,
		},
		Type:      claims.Type,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}
