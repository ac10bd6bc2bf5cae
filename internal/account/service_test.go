package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shoplight/shoplight/internal/apperr"
	"github.com/shoplight/shoplight/internal/auth"
	"github.com/shoplight/shoplight/internal/logging"
)

type fixture struct {
	svc    *Service
	repo   Repository
	sealer *auth.Sealer
	tokens *auth.TokenIssuer
}

func newFixture(t *testing.T, sessionTTL, resetTTL time.Duration) fixture {
	t.Helper()
	logger := logging.Discard()
	repo := NewMemoryRepository()
	sealer := auth.NewSealer([]byte("test-ticket-secret"))
	tokens := auth.NewTokenIssuer([]byte("test-token-secret"), sessionTTL, resetTTL)
	codes := auth.NewCodeGenerator(10*time.Minute, nil, logger)
	hasher := auth.NewHasher(bcrypt.MinCost)
	return fixture{
		svc:    NewService(repo, hasher, sealer, codes, tokens, logger),
		repo:   repo,
		sealer: sealer,
		tokens: tokens,
	}
}

func (f fixture) register(t *testing.T, mobile string) auth.Ticket {
	t.Helper()
	ticket, err := f.svc.Register(context.Background(), Registration{
		MobileNumber: mobile,
		Password:     "secret123",
		Profile:      Profile{Name: "Asha"},
	})
	require.NoError(t, err)
	return ticket
}

func (f fixture) activate(t *testing.T, mobile string) string {
	t.Helper()
	token, err := f.svc.ConfirmMobile(context.Background(), f.register(t, mobile))
	require.NoError(t, err)
	return token
}

func TestRegisterIssuesSealedTicket(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)

	ticket := f.register(t, "9876543210")
	require.Equal(t, "9876543210", ticket.MobileNumber)
	require.True(t, f.sealer.Check(ticket.MobileNumber, ticket.Code, ticket.ExpiresAt, ticket.Tag))

	a, err := f.repo.FindByMobileNumber(context.Background(), "9876543210")
	require.NoError(t, err)
	require.Equal(t, StatePending, a.State)
	require.Equal(t, RoleCustomer, a.Role)
	require.NotEmpty(t, a.ID)
}

// racingRepository simulates two registrations racing on the same
// mobile number: the existence check sees nothing, then the insert
// trips the uniqueness constraint.
type racingRepository struct {
	Repository
}

func (r racingRepository) FindByMobileNumber(context.Context, string) (Account, error) {
	return Account{}, ErrNoAccount
}

func (r racingRepository) Create(context.Context, Account) (Account, error) {
	return Account{}, ErrDuplicateMobile
}

func TestRegisterLostRaceReportsAlreadyExists(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	svc := NewService(racingRepository{Repository: f.repo}, auth.NewHasher(bcrypt.MinCost),
		f.sealer, auth.NewCodeGenerator(10*time.Minute, nil, logging.Discard()), f.tokens, logging.Discard())

	_, err := svc.Register(context.Background(), Registration{
		MobileNumber: "9876543210",
		Password:     "secret123",
		Profile:      Profile{Name: "Asha"},
	})
	require.Equal(t, apperr.CodeAlreadyExists, apperr.CodeOf(err))
}

func TestRegisterPendingOverwritesInPlace(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	ctx := context.Background()

	f.register(t, "9876543210")
	first, err := f.repo.FindByMobileNumber(ctx, "9876543210")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, Registration{
		MobileNumber: "9876543210",
		Password:     "newsecret",
		Profile:      Profile{Name: "Binta"},
	})
	require.NoError(t, err)

	second, err := f.repo.FindByMobileNumber(ctx, "9876543210")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "pending re-registration keeps the identity")
	require.Equal(t, "Binta", second.Name)
	require.Equal(t, StatePending, second.State)
}

func TestRegisterActiveFailsAlreadyExists(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	f.activate(t, "9876543210")

	_, err := f.svc.Register(context.Background(), Registration{
		MobileNumber: "9876543210",
		Password:     "secret123",
		Profile:      Profile{Name: "Asha"},
	})
	require.Error(t, err)
	require.Equal(t, apperr.CodeAlreadyExists, apperr.CodeOf(err))
}

func TestConfirmMobileActivatesAndIssuesSession(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	ctx := context.Background()

	token, err := f.svc.ConfirmMobile(ctx, f.register(t, "9876543210"))
	require.NoError(t, err)

	a, err := f.repo.FindByMobileNumber(ctx, "9876543210")
	require.NoError(t, err)
	require.Equal(t, StateActive, a.State)

	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, a.ID, claims.Subject)
	require.Equal(t, auth.PurposeSession, claims.Purpose)
}

func TestConfirmMobileWrongCodeFailsTicketInvalid(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)

	ticket := f.register(t, "9876543210")
	ticket.Code++

	_, err := f.svc.ConfirmMobile(context.Background(), ticket)
	require.Error(t, err)
	require.Equal(t, apperr.CodeTicketInvalid, apperr.CodeOf(err))
}

func TestConfirmMobileExpiredTicketFailsTicketExpired(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	f.register(t, "9876543210")

	// A correctly sealed ticket whose window has already passed.
	expiresAt := time.Now().Add(-time.Minute)
	ticket := auth.Ticket{
		MobileNumber: "9876543210",
		Code:         654321,
		ExpiresAt:    expiresAt,
		Tag:          f.sealer.Seal("9876543210", 654321, expiresAt),
	}

	_, err := f.svc.ConfirmMobile(context.Background(), ticket)
	require.Error(t, err)
	require.Equal(t, apperr.CodeTicketExpired, apperr.CodeOf(err))
}

func TestConfirmMobileUnknownNumberFailsNotFound(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)

	expiresAt := time.Now().Add(time.Minute)
	ticket := auth.Ticket{
		MobileNumber: "1112223334",
		Code:         654321,
		ExpiresAt:    expiresAt,
		Tag:          f.sealer.Seal("1112223334", 654321, expiresAt),
	}

	_, err := f.svc.ConfirmMobile(context.Background(), ticket)
	require.Error(t, err)
	require.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestLoginPendingAccountFailsNotFound(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	f.register(t, "9876543210")

	_, err := f.svc.Login(context.Background(), "9876543210", "secret123")
	require.Error(t, err)
	require.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestLoginWrongPasswordFailsInvalidCredential(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	f.activate(t, "9876543210")

	_, err := f.svc.Login(context.Background(), "9876543210", "wrongpass")
	require.Error(t, err)
	require.Equal(t, apperr.CodeInvalidCredential, apperr.CodeOf(err))
}

func TestLoginIssuesTokenForSameIdentity(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	ctx := context.Background()
	f.activate(t, "9876543210")

	token, err := f.svc.Login(ctx, "9876543210", "secret123")
	require.NoError(t, err)

	a, err := f.repo.FindByMobileNumber(ctx, "9876543210")
	require.NoError(t, err)

	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, a.ID, claims.Subject)
}

func TestBeginPasswordResetRequiresActiveAccount(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	ctx := context.Background()

	_, err := f.svc.BeginPasswordReset(ctx, "9876543210")
	require.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	f.register(t, "9876543210")
	_, err = f.svc.BeginPasswordReset(ctx, "9876543210")
	require.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	ctx := context.Background()
	f.activate(t, "9876543210")

	ticket, err := f.svc.BeginPasswordReset(ctx, "9876543210")
	require.NoError(t, err)

	resetToken, err := f.svc.ConfirmPasswordReset(ctx, ticket)
	require.NoError(t, err)

	claims, err := f.tokens.Verify(resetToken)
	require.NoError(t, err)
	require.Equal(t, auth.PurposePasswordReset, claims.Purpose)

	require.NoError(t, f.svc.ApplyPasswordReset(ctx, resetToken, "brandnewpass"))

	_, err = f.svc.Login(ctx, "9876543210", "secret123")
	require.Equal(t, apperr.CodeInvalidCredential, apperr.CodeOf(err), "old password must stop working")

	_, err = f.svc.Login(ctx, "9876543210", "brandnewpass")
	require.NoError(t, err)
}

func TestApplyPasswordResetExpiredTokenFailsTokenExpired(t *testing.T) {
	f := newFixture(t, time.Hour, -time.Minute)
	ctx := context.Background()
	f.activate(t, "9876543210")

	ticket, err := f.svc.BeginPasswordReset(ctx, "9876543210")
	require.NoError(t, err)
	resetToken, err := f.svc.ConfirmPasswordReset(ctx, ticket)
	require.NoError(t, err)

	err = f.svc.ApplyPasswordReset(ctx, resetToken, "brandnewpass")
	require.Equal(t, apperr.CodeTokenExpired, apperr.CodeOf(err))
}

func TestApplyPasswordResetRejectsSessionToken(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	ctx := context.Background()
	sessionToken := f.activate(t, "9876543210")

	err := f.svc.ApplyPasswordReset(ctx, sessionToken, "brandnewpass")
	require.Equal(t, apperr.CodeTokenMalformed, apperr.CodeOf(err))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, time.Hour, time.Minute)
	ctx := context.Background()
	f.activate(t, "9876543210")

	a, err := f.repo.FindByMobileNumber(ctx, "9876543210")
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, a.ID, "wrongpass", "brandnewpass")
	require.Equal(t, apperr.CodeInvalidCredential, apperr.CodeOf(err))

	require.NoError(t, f.svc.ChangePassword(ctx, a.ID, "secret123", "brandnewpass"))

	_, err = f.svc.Login(ctx, "9876543210", "brandnewpass")
	require.NoError(t, err)
}
