package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("Invalid or expired token")

// Claims is the decoded content of an admin token.
type Claims struct {
	AdminID primitive.ObjectID
	Email   string
	Expires time.Time
}

// Issuer signs and verifies HS256 admin tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret must not be empty")
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) GenerateJWT(adminID primitive.ObjectID, email string) (string, error) {
	now := i.now()

	claims := jwt.MapClaims{
		"admin_id": adminID.Hex(),
		"email":    email,
		"iat":      now.Unix(),
		"exp":      now.Add(i.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *Issuer) VerifyJWT(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return nil, ErrInvalidToken
	}

	rawID, ok := mapClaims["admin_id"].(string)

	if !ok {
		return nil, ErrInvalidToken
	}

	adminID, err := primitive.ObjectIDFromHex(rawID)

	if err != nil {
		return nil, ErrInvalidToken
	}

	email, _ := mapClaims["email"].(string)

	exp, err := mapClaims.GetExpirationTime()

	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{AdminID: adminID, Email: email, Expires: exp.Time}, nil
}
