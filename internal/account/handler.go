package account

import (
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shoplight/shoplight/internal/apperr"
	"github.com/shoplight/shoplight/internal/auth"
)

var mobileNumberRe = regexp.MustCompile(`^[0-9]{10}$`)

// Handler exposes the account endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler constructs an account HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type registerRequest struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
	Email        string `json:"email"`
}

// Register handles account creation and returns the verification ticket
// the client must echo back.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if req.Name == "" {
		return apperr.InvalidInput("please provide the name")
	}
	if len(req.Name) > 24 {
		return apperr.InvalidInput("name can be a maximum of 24 characters")
	}
	if !mobileNumberRe.MatchString(req.MobileNumber) {
		return apperr.InvalidInput("please provide a valid mobile number")
	}
	if len(req.Password) < 8 {
		return apperr.InvalidInput("password must be of at least 8 characters")
	}

	ticket, err := h.svc.Register(c.UserContext(), Registration{
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
		Profile:      Profile{Name: req.Name, Email: req.Email},
	})
	if err != nil {
		return err
	}
	return success(c, ticketPayload(ticket))
}

type ticketRequest struct {
	MobileNumber string     `json:"mobileNumber"`
	Code         *int       `json:"verificationCode"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	Tag          string     `json:"hash"`
}

func (r ticketRequest) validate() error {
	if r.MobileNumber == "" {
		return apperr.InvalidInput("please provide the mobile number")
	}
	if r.Code == nil {
		return apperr.InvalidInput("please provide the verification code")
	}
	if r.ExpiresAt == nil {
		return apperr.InvalidInput("please provide the expires at")
	}
	if r.Tag == "" {
		return apperr.InvalidInput("please provide the hash")
	}
	return nil
}

func (r ticketRequest) ticket() auth.Ticket {
	return auth.Ticket{
		MobileNumber: r.MobileNumber,
		Code:         *r.Code,
		ExpiresAt:    *r.ExpiresAt,
		Tag:          r.Tag,
	}
}

// VerifyMobile validates the echoed verification ticket and activates
// the account.
func (h *Handler) VerifyMobile(c *fiber.Ctx) error {
	var req ticketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	token, err := h.svc.ConfirmMobile(c.UserContext(), req.ticket())
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"token": token})
}

type loginRequest struct {
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

// Login authenticates and returns a session token. Missing account and
// wrong password collapse into one generic response so the endpoint
// does not reveal which mobile numbers are registered.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if !mobileNumberRe.MatchString(req.MobileNumber) {
		return apperr.InvalidInput("please provide a valid mobile number")
	}
	if req.Password == "" {
		return apperr.InvalidInput("please provide the password")
	}

	token, err := h.svc.Login(c.UserContext(), req.MobileNumber, req.Password)
	if err != nil {
		code := apperr.CodeOf(err)
		if code == apperr.CodeNotFound || code == apperr.CodeInvalidCredential {
			h.logger.Info("login rejected",
				slog.String("mobile_number", req.MobileNumber),
				slog.String("reason", string(code)),
			)
			return apperr.InvalidCredential("invalid mobile number or password")
		}
		return err
	}
	return success(c, fiber.Map{"token": token})
}

type forgotPasswordRequest struct {
	MobileNumber string `json:"mobileNumber"`
}

// ForgotPassword issues a fresh verification ticket for the password
// reset flow.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if !mobileNumberRe.MatchString(req.MobileNumber) {
		return apperr.InvalidInput("please provide a valid mobile number")
	}

	ticket, err := h.svc.BeginPasswordReset(c.UserContext(), req.MobileNumber)
	if err != nil {
		return err
	}
	return success(c, ticketPayload(ticket))
}

// PasswordResetToken exchanges a valid verification ticket for a
// short-lived password reset token.
func (h *Handler) PasswordResetToken(c *fiber.Ctx) error {
	var req ticketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	token, err := h.svc.ConfirmPasswordReset(c.UserContext(), req.ticket())
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"passwordResetToken": token})
}

type resetPasswordRequest struct {
	PasswordResetToken string `json:"passwordResetToken"`
	NewPassword        string `json:"newPassword"`
}

// ResetPassword redeems a password reset token and stores the new
// credential.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if req.PasswordResetToken == "" {
		return apperr.InvalidInput("password reset token is required")
	}
	if len(req.NewPassword) < 8 {
		return apperr.InvalidInput("password must be of at least 8 characters")
	}

	if err := h.svc.ApplyPasswordReset(c.UserContext(), req.PasswordResetToken, req.NewPassword); err != nil {
		return err
	}
	return success(c, nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the credential of the authenticated account.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	a, ok := FromContext(c)
	if !ok {
		return apperr.Unauthorized("please login to access this route")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if req.CurrentPassword == "" {
		return apperr.InvalidInput("current password is required")
	}
	if len(req.NewPassword) < 8 {
		return apperr.InvalidInput("password must be of at least 8 characters")
	}

	if err := h.svc.ChangePassword(c.UserContext(), a.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return success(c, nil)
}

func ticketPayload(t auth.Ticket) fiber.Map {
	// The one-time code itself travels over SMS, never in the response.
	return fiber.Map{
		"mobileNumber": t.MobileNumber,
		"expiresAt":    t.ExpiresAt,
		"hash":         t.Tag,
	}
}

func success(c *fiber.Ctx, data any) error {
	body := fiber.Map{"status": "success"}
	if data != nil {
		body["data"] = data
	}
	return c.Status(http.StatusOK).JSON(body)
}
