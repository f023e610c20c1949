// README: Signed-in caller identity for quotas, backed by Firebase Auth ID tokens.
package infra

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// CallerVerifier turns a bearer credential into the uid a monthly quota is charged to.
type CallerVerifier interface {
	VerifyCaller(ctx context.Context, bearer string) (string, error)
}

// ErrNoSubject is returned for a token that verifies but names no user.
var ErrNoSubject = errors.New("firebase: verified token has no uid")

const firebaseUIDPrefix = "firebase:"

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseCallers charges quotas to Firebase users as "firebase:<uid>".
type FirebaseCallers struct {
	tokens idTokenVerifier
}

// NewFirebaseCallers connects to Firebase Auth for projectID.
// An empty credentialsFile uses application-default credentials.
func NewFirebaseCallers(ctx context.Context, projectID, credentialsFile string) (*FirebaseCallers, error) {
	if projectID == "" {
		return nil, errors.New("firebase: project id is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseCallers{tokens: client}, nil
}

func (f *FirebaseCallers) VerifyCaller(ctx context.Context, bearer string) (string, error) {
	token, err := f.tokens.VerifyIDToken(ctx, bearer)
	if err != nil {
		return "", fmt.Errorf("verify firebase id token: %w", err)
	}
	if token == nil || token.UID == "" {
		return "", ErrNoSubject
	}
	return firebaseUIDPrefix + token.UID, nil
}
