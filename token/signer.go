package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer mints and checks the mock backend's access tokens.
type Signer interface {
	Sign(claims jwt.Claims) (string, error)
	// Keyfunc is handed to the jwt parser.
	Keyfunc(token *jwt.Token) (any, error)
	Alg() string
}

// HS256Signer signs with one shared secret taken from JWT_SECRET. Clients
// never verify these tokens, they only read exp.
type HS256Signer struct {
	secret []byte
}

var _ Signer = (*HS256Signer)(nil)

func NewHS256Signer(secret string) (*HS256Signer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is empty")
	}
	return &HS256Signer{secret: []byte(secret)}, nil
}

func (s *HS256Signer) Sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "HS256Signer.Sign SignedString")
	}
	return signed, nil
}

func (s *HS256Signer) Keyfunc(t *jwt.Token) (any, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, errors.Errorf("token: alg %v is not accepted", t.Header["alg"])
	}
	return s.secret, nil
}

func (s *HS256Signer) Alg() string {
	return jwt.SigningMethodHS256.Alg()
}
