// Package firebase verifies Firebase ID tokens for firebase-login.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var ErrNoCredentials = errors.New("firebase credentials path not provided")

type Config struct {
	CredentialsPath string
	// ProjectID overrides the project named in the service account.
	ProjectID string
	// CheckRevoked also rejects tokens whose session was revoked in Firebase.
	// Costs one round trip per login.
	CheckRevoked bool
}

// Verifier checks ID tokens minted by Firebase client SDKs.
type Verifier struct {
	client       *auth.Client
	checkRevoked bool
}

// NewVerifier builds the Admin SDK auth client from a service-account file.
func NewVerifier(ctx context.Context, cfg Config) (*Verifier, error) {
	if cfg.CredentialsPath == "" {
		return nil, ErrNoCredentials
	}
	if _, err := os.Stat(cfg.CredentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file %s: %w", cfg.CredentialsPath, err)
	}

	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, appConfig, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firebase auth client: %w", err)
	}

	slog.Info("firebase token verifier ready",
		slog.String("project_id", cfg.ProjectID),
		slog.Bool("check_revoked", cfg.CheckRevoked))
	return &Verifier{client: client, checkRevoked: cfg.CheckRevoked}, nil
}

func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if v.checkRevoked {
		return v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	}
	return v.client.VerifyIDToken(ctx, idToken)
}
