package access

import (
	"context"
	"errors"
	"fmt"

	"go-marketplace/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidCredential marks a token or session that does not identify anyone.
// Any other verifier error means the check itself could not run.
var ErrInvalidCredential = errors.New("invalid credential")

// Verifier turns a credential into an admin id without judging permissions.
type Verifier interface {
	VerifyBearerToken(token string) (primitive.ObjectID, error)
	VerifySession(ctx context.Context, sessionID string) (primitive.ObjectID, error)
}

type CredentialVerifier struct {
	tokens   *utils.TokenIssuer
	sessions SessionStore
}

func NewCredentialVerifier(tokens *utils.TokenIssuer, sessions SessionStore) Verifier {
	return &CredentialVerifier{tokens: tokens, sessions: sessions}
}

func (v *CredentialVerifier) VerifyBearerToken(token string) (primitive.ObjectID, error) {
	claims, err := v.tokens.ValidateToken(token)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	id, err := primitive.ObjectIDFromHex(claims.AdminID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return id, nil
}

func (v *CredentialVerifier) VerifySession(ctx context.Context, sessionID string) (primitive.ObjectID, error) {
	return v.sessions.Lookup(ctx, sessionID)
}
