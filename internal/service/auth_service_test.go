package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterAndLogin(t *testing.T) {
	creds := &memCredentials{byPID: map[string]model.Credential{}}
	svc := NewAuthService(creds, staticTokens{}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "P-1", "Dr. Sana", "4321"))
	assert.NotEqual(t, "4321", creds.byPID["P-1"].PinHash)

	err := svc.Register(ctx, "P-1", "Dr. Sana", "0000")
	assert.Equal(t, KindAlreadyExists, KindOf(err))
	assert.ErrorIs(t, err, ErrAccountExists)

	token, cred, err := svc.Login(ctx, "P-1", "4321")
	require.NoError(t, err)
	assert.Equal(t, "token-for-P-1", token)
	assert.Equal(t, "Dr. Sana", cred.RegisteredName)

	_, _, err = svc.Login(ctx, "P-1", "1111")
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, _, err = svc.Login(ctx, "P-404", "4321")
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestAuthValidationAndUpstream(t *testing.T) {
	creds := &memCredentials{byPID: map[string]model.Credential{}}
	svc := NewAuthService(creds, staticTokens{}, zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, KindInvalid, KindOf(svc.Register(ctx, " ", "name", "1")))
	_, _, err := svc.Login(ctx, "P-1", "")
	assert.Equal(t, KindInvalid, KindOf(err))

	creds.err = errStoreDown
	_, _, err = svc.Login(ctx, "P-1", "4321")
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Equal(t, KindUpstream, KindOf(svc.Register(ctx, "P-2", "name", "1")))
}

func TestRegisterRejectsOverlongPIN(t *testing.T) {
	creds := &memCredentials{byPID: map[string]model.Credential{}}
	svc := NewAuthService(creds, staticTokens{}, zap.NewNop())

	err := svc.Register(context.Background(), "P-1", "Dr. Sana", strings.Repeat("9", 80))
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.Contains(t, err.Error(), "72 bytes")
	assert.NotContains(t, creds.byPID, "P-1")

	require.NoError(t, svc.Register(context.Background(), "P-1", "Dr. Sana", strings.Repeat("9", 72)))
}
