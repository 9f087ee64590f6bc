package server

import (
	"context"

	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/server/authctx"
)

// BackendTokens relays the caller's Firebase ID token to the Cloud
// Functions and falls back to the service token otherwise.
func BackendTokens(serviceToken string) backend.TokenFunc {
	return func(ctx context.Context) (string, error) {
		if u := authctx.FromContext(ctx); u != nil && u.Forward && u.Token != "" {
			return u.Token, nil
		}
		if serviceToken == "" {
			return "", backend.ErrNoToken
		}
		return serviceToken, nil
	}
}
