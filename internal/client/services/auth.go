// Package services contains the application services of the postplanner
// CLI: session handling, workspaces, media upload and platform
// connections. They sit between the cobra commands and the API client.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/postplanner/internal/client/client"
	"github.com/dmitrijs2005/postplanner/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/go-playground/validator/v10"
)

// AuthService signs users in and out and keeps the session tokens in the
// local metadata store between invocations. It is the SessionProvider of
// the schedule views.
type AuthService interface {
	schedule.SessionProvider
	Register(ctx context.Context, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) error
	// Restore loads persisted tokens into the client. It reports whether a
	// session was found.
	Restore(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
}

type authService struct {
	client   SessionClient
	meta     metadata.Repository
	validate *validator.Validate
}

type credentials struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=8,max=72"`
}

// NewAuthService binds the service to the API client and registers the
// token persistence hook on it.
func NewAuthService(c SessionClient, meta metadata.Repository) AuthService {
	a := &authService{client: c, meta: meta, validate: validator.New()}
	c.OnTokens(a.persistTokens)
	return a
}

func (a *authService) persistTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" && refreshToken == "" {
		return a.meta.Delete(ctx, metadata.KeyAccessToken, metadata.KeyRefreshToken)
	}
	if err := a.meta.Set(ctx, metadata.KeyAccessToken, []byte(accessToken)); err != nil {
		return err
	}
	return a.meta.Set(ctx, metadata.KeyRefreshToken, []byte(refreshToken))
}

func (a *authService) Register(ctx context.Context, email string, password []byte) error {
	defer common.WipeByteArray(password)

	creds := credentials{Email: strings.ToLower(strings.TrimSpace(email)), Password: string(password)}
	if err := a.validate.Struct(creds); err != nil {
		return fmt.Errorf("%w: %s", common.ErrorValidation, describe(err))
	}

	if _, err := a.client.Register(ctx, creds.Email, creds.Password); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, strings.ToLower(strings.TrimSpace(email)), string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return nil
}

func (a *authService) Restore(ctx context.Context) (bool, error) {
	accessToken, err := metadata.GetString(ctx, a.meta, metadata.KeyAccessToken)
	if err != nil {
		return false, err
	}
	refreshToken, err := metadata.GetString(ctx, a.meta, metadata.KeyRefreshToken)
	if err != nil {
		return false, err
	}
	if accessToken == "" && refreshToken == "" {
		return false, nil
	}
	a.client.SetTokens(accessToken, refreshToken)
	return true, nil
}

// CurrentUser restores the session and asks the server who it belongs to.
// Without a usable session it returns an error wrapping
// schedule.ErrUnauthenticated.
func (a *authService) CurrentUser(ctx context.Context) (*models.Identity, error) {
	ok, err := a.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		return nil, schedule.ErrUnauthenticated
	}

	id, err := a.client.WhoAmI(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		return nil, fmt.Errorf("%w: %w", schedule.ErrUnauthenticated, err)
	}
	if err != nil {
		return nil, err
	}
	return id, nil
}

// SignOut ends the session on the server and forgets it locally, together
// with any pending connection marker.
func (a *authService) SignOut(ctx context.Context) error {
	if _, err := a.Restore(ctx); err != nil {
		return err
	}
	err := a.client.Logout(ctx)

	if derr := a.meta.Delete(ctx, metadata.KeyAccessToken, metadata.KeyRefreshToken, metadata.KeyPendingWorkspace, metadata.KeyPendingPlatform); derr != nil {
		return derr
	}
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Healthy(ctx)
}

// describe flattens validator errors into "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", strings.ToLower(fe.Field()), fe.ActualTag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.ActualTag()))
	}
	return strings.Join(parts, ", ")
}
