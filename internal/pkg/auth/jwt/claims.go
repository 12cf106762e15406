package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for the friend service.
// It includes standard claims required by the JWT specification and the custom claims
// necessary for identifying the acting user on every authenticated request.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the unique identifier of the authenticated user (UUID string).
	ID string `json:"id"`

	// Username is the account name of the authenticated user, carried for
	// logging and display without an extra directory lookup.
	Username string `json:"username"`
}
