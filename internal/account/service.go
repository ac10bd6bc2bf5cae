// Package account implements the account lifecycle: registration with
// mobile verification, login, and the password reset/change flows. The
// protocol pieces (tickets, codes, tokens, hashing) live in
// internal/auth; this package wires them to the store.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shoplight/shoplight/internal/apperr"
	"github.com/shoplight/shoplight/internal/auth"
)

// Service is the account state machine. All operations are safe for
// concurrent use; every store write is a single atomic statement.
type Service struct {
	repo   Repository
	hasher *auth.Hasher
	sealer *auth.Sealer
	codes  *auth.CodeGenerator
	tokens *auth.TokenIssuer
	logger *slog.Logger
}

// NewService wires the account service.
func NewService(repo Repository, hasher *auth.Hasher, sealer *auth.Sealer, codes *auth.CodeGenerator, tokens *auth.TokenIssuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, sealer: sealer, codes: codes, tokens: tokens, logger: logger}
}

// Registration is the input to Register.
type Registration struct {
	MobileNumber string
	Password     string
	Profile      Profile
}

// Register creates or refreshes a Pending account and issues a
// verification ticket. Re-registering a still-pending mobile number
// overwrites the profile and credential in place, so the client-visible
// behavior is the same on every branch; only an Active account blocks
// the number.
func (s *Service) Register(ctx context.Context, reg Registration) (auth.Ticket, error) {
	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return auth.Ticket{}, fmt.Errorf("hash credential: %w", err)
	}

	now := time.Now().UTC()
	existing, err := s.repo.FindByMobileNumber(ctx, reg.MobileNumber)
	switch {
	case err == nil && existing.State == StateActive:
		return auth.Ticket{}, apperr.AlreadyExists("please use another mobile number")
	case err == nil:
		if err := s.repo.ReplacePending(ctx, existing.ID, reg.Profile, hash, now); err != nil {
			return auth.Ticket{}, fmt.Errorf("refresh pending account: %w", err)
		}
	case errors.Is(err, ErrNoAccount):
		_, err := s.repo.Create(ctx, Account{
			MobileNumber:        reg.MobileNumber,
			Name:                reg.Profile.Name,
			Email:               reg.Profile.Email,
			CredentialHash:      hash,
			State:               StatePending,
			Role:                RoleCustomer,
			CredentialUpdatedAt: now,
			CreatedAt:           now,
		})
		if errors.Is(err, ErrDuplicateMobile) {
			return auth.Ticket{}, apperr.AlreadyExists("please use another mobile number")
		}
		if err != nil {
			return auth.Ticket{}, err
		}
	default:
		return auth.Ticket{}, err
	}

	return s.issueTicket(ctx, reg.MobileNumber)
}

// ConfirmMobile validates the echoed ticket and flips the account to
// Active, returning a fresh session token. Integrity is checked before
// expiry, so a forged ticket never learns whether its window passed.
func (s *Service) ConfirmMobile(ctx context.Context, ticket auth.Ticket) (string, error) {
	if err := s.checkTicket(ticket); err != nil {
		return "", err
	}

	activated, err := s.repo.Activate(ctx, ticket.MobileNumber)
	if errors.Is(err, ErrNoAccount) {
		return "", apperr.NotFound("no account found with this mobile number")
	}
	if err != nil {
		return "", err
	}

	s.logger.Info("mobile number verified",
		slog.String("account_id", activated.ID),
		slog.String("mobile_number", activated.MobileNumber),
	)
	return s.tokens.IssueSession(activated.ID)
}

// Login authenticates an Active account and issues a session token. The
// NotFound and InvalidCredential tags stay distinct here; the HTTP
// handler collapses them into one generic response.
func (s *Service) Login(ctx context.Context, mobileNumber, password string) (string, error) {
	a, err := s.repo.FindByMobileNumber(ctx, mobileNumber)
	if errors.Is(err, ErrNoAccount) {
		return "", apperr.NotFound("no account found with this mobile number")
	}
	if err != nil {
		return "", err
	}
	if a.State != StateActive {
		return "", apperr.NotFound("no active account with this mobile number")
	}
	if !s.hasher.Verify(password, a.CredentialHash) {
		return "", apperr.InvalidCredential("password is wrong")
	}
	return s.tokens.IssueSession(a.ID)
}

// BeginPasswordReset issues a verification ticket for an Active account
// without mutating any state.
func (s *Service) BeginPasswordReset(ctx context.Context, mobileNumber string) (auth.Ticket, error) {
	a, err := s.repo.FindByMobileNumber(ctx, mobileNumber)
	if errors.Is(err, ErrNoAccount) {
		return auth.Ticket{}, apperr.NotFound("no account found with this mobile number")
	}
	if err != nil {
		return auth.Ticket{}, err
	}
	if a.State != StateActive {
		return auth.Ticket{}, apperr.NotFound("no active account with this mobile number")
	}
	return s.issueTicket(ctx, mobileNumber)
}

// ConfirmPasswordReset validates the echoed ticket and mints a
// short-lived password-reset token for the matched account.
func (s *Service) ConfirmPasswordReset(ctx context.Context, ticket auth.Ticket) (string, error) {
	if err := s.checkTicket(ticket); err != nil {
		return "", err
	}

	a, err := s.repo.FindByMobileNumber(ctx, ticket.MobileNumber)
	if errors.Is(err, ErrNoAccount) {
		return "", apperr.NotFound("no account found with this mobile number")
	}
	if err != nil {
		return "", err
	}
	return s.tokens.IssuePasswordReset(a.ID)
}

// ApplyPasswordReset redeems a password-reset token and overwrites the
// credential. The token carries only the identity, so the account is
// re-resolved through the atomic credential update.
func (s *Service) ApplyPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.Verify(resetToken)
	if err != nil {
		return err
	}
	if claims.Purpose != auth.PurposePasswordReset {
		return apperr.New(apperr.CodeTokenMalformed, "not a password reset token")
	}
	return s.replaceCredential(ctx, claims.Subject, newPassword)
}

// ChangePassword verifies the current credential of an authenticated
// account before overwriting it.
func (s *Service) ChangePassword(ctx context.Context, identity, currentPassword, newPassword string) error {
	a, err := s.repo.FindByID(ctx, identity)
	if errors.Is(err, ErrNoAccount) {
		return apperr.NotFound("account no longer exists")
	}
	if err != nil {
		return err
	}
	if !s.hasher.Verify(currentPassword, a.CredentialHash) {
		return apperr.InvalidCredential("current password is wrong")
	}
	return s.replaceCredential(ctx, identity, newPassword)
}

// Resolve looks up an account by identity, as the authenticate
// middleware does after token verification.
func (s *Service) Resolve(ctx context.Context, identity string) (Account, error) {
	a, err := s.repo.FindByID(ctx, identity)
	if errors.Is(err, ErrNoAccount) {
		return Account{}, apperr.NotFound("account no longer exists")
	}
	return a, err
}

func (s *Service) replaceCredential(ctx context.Context, identity, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash credential: %w", err)
	}
	err = s.repo.UpdateCredential(ctx, identity, hash, time.Now().UTC())
	if errors.Is(err, ErrNoAccount) {
		return apperr.NotFound("account no longer exists")
	}
	return err
}

func (s *Service) issueTicket(ctx context.Context, mobileNumber string) (auth.Ticket, error) {
	code, expiresAt, err := s.codes.Generate(ctx, mobileNumber)
	if err != nil {
		return auth.Ticket{}, err
	}
	return auth.Ticket{
		MobileNumber: mobileNumber,
		Code:         code,
		ExpiresAt:    expiresAt,
		Tag:          s.sealer.Seal(mobileNumber, code, expiresAt),
	}, nil
}

func (s *Service) checkTicket(ticket auth.Ticket) error {
	if !s.sealer.Check(ticket.MobileNumber, ticket.Code, ticket.ExpiresAt, ticket.Tag) {
		return apperr.New(apperr.CodeTicketInvalid, "wrong verification code, try again")
	}
	if ticket.Expired(time.Now()) {
		return apperr.New(apperr.CodeTicketExpired, "verification code expired, try again")
	}
	return nil
}
