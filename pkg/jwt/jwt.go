package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// leeway tolerancia de reloj entre el emisor del token y este servicio.
const leeway = 30 * time.Second

// Identity actor autenticado: usuario, tienda a la que pertenece y rol.
type Identity struct {
	UserID  string
	StoreID string
	Role    string // "admin" | "manager" | "staff"
}

// Claims claims registrados más tienda y rol. El usuario viaja en "sub".
type Claims struct {
	jwt.RegisteredClaims
	StoreID string `json:"store_id"`
	Role    string `json:"role"`
}

// Generate firma un token HS256. La emisión real es de otro servicio; se usa en tests y herramientas locales.
func Generate(secret, issuer string, id Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		StoreID: id.StoreID,
		Role:    id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma HS256, expiración y, si issuer no está vacío, el emisor.
// Un token sin sujeto es inválido.
func Parse(secret, issuer, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, errors.New("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("jwt: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, errors.New("jwt: claims inválidos")
	}
	return Identity{UserID: claims.Subject, StoreID: claims.StoreID, Role: claims.Role}, nil
}
