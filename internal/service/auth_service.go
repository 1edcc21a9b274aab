package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/makeup_scheduler/internal/auth"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type CredentialStore interface {
	Create(ctx context.Context, c *model.Credential) error
	GetByPID(ctx context.Context, pid string) (*model.Credential, error)
}

type TokenIssuer interface {
	Issue(pid, name string) (string, error)
}

type AuthService struct {
	credentials CredentialStore
	tokens      TokenIssuer
	logger      *zap.Logger
}

func NewAuthService(credentials CredentialStore, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		tokens:      tokens,
		logger:      logger,
	}
}

// Register creates a faculty account with a bcrypt-hashed PIN
func (s *AuthService) Register(ctx context.Context, pid, name, pin string) error {
	const op = "account-create"

	pid, name = strings.TrimSpace(pid), strings.TrimSpace(name)
	if pid == "" || name == "" || pin == "" {
		return Invalid(op, "p_id, registered_name and pin are required")
	}

	hash, err := auth.HashPIN(pin)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Invalid(op, "pin must be at most 72 bytes")
		}
		return E(KindUnknown, op, err)
	}

	err = s.credentials.Create(ctx, &model.Credential{PID: pid, RegisteredName: name, PinHash: hash})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return E(KindAlreadyExists, op, ErrAccountExists)
		}
		return E(KindUpstream, op, err)
	}

	s.logger.Info("Account created", zap.String("p_id", pid))
	return nil
}

// Login verifies the PIN and returns a signed access token
func (s *AuthService) Login(ctx context.Context, pid, pin string) (string, *model.Credential, error) {
	const op = "login"

	pid = strings.TrimSpace(pid)
	if pid == "" || pin == "" {
		return "", nil, Invalid(op, "p_id and pin are required")
	}

	cred, err := s.credentials.GetByPID(ctx, pid)
	if err != nil {
		return "", nil, E(KindUpstream, op, err)
	}
	if cred == nil || !auth.CheckPIN(cred.PinHash, pin) {
		s.logger.Warn("Login rejected", zap.String("p_id", pid))
		return "", nil, E(KindUnauthorized, op, ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(cred.PID, cred.RegisteredName)
	if err != nil {
		return "", nil, E(KindUnknown, op, err)
	}

	return token, cred, nil
}
