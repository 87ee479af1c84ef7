// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "enroll/internal/delivery/context"
	"enroll/internal/delivery/http/response"
	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for the authentication endpoints.
type AuthHandler struct {
	registrationUC usecase.RegistrationUsecase
	tokenUC        usecase.TokenUsecase
	accountUC      usecase.AccountUsecase
	logger         *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(
	registrationUC usecase.RegistrationUsecase,
	tokenUC usecase.TokenUsecase,
	accountUC usecase.AccountUsecase,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		registrationUC: registrationUC,
		tokenUC:        tokenUC,
		accountUC:      accountUC,
		logger:         logger,
	}
}

type addressRequest struct {
	Line      string `json:"line"`
	ZipCode   string `json:"zipCode"`
	City      string `json:"city"`
	State     string `json:"state"`
	CountryID *int   `json:"countryId"`
}

type individualRequest struct {
	PassportNumber string `json:"passportNumber"`
	PhoneNumber    string `json:"phoneNumber"`
}

type registrationRequest struct {
	Email                string             `json:"email" validate:"required,email"`
	Password             string             `json:"password" validate:"required,min=5"`
	PasswordConfirmation string             `json:"passwordConfirmation" validate:"required"`
	FirstName            string             `json:"firstName" validate:"required"`
	LastName             string             `json:"lastName" validate:"required"`
	Role                 string             `json:"role"`
	Address              *addressRequest    `json:"address"`
	Individual           *individualRequest `json:"individual"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// registrationResponse returns the committed registration without echoing
// any credential material.
type registrationResponse struct {
	Profile   *entity.UserProfile `json:"profile"`
	AccountID string              `json:"accountId"`
	Tokens    *entity.TokenBundle `json:"tokens"`
}

// Register handles the registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registrationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	input := toRegisterInput(&req)

	output, err := h.registrationUC.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, registrationResponse{
		Profile:   output.Profile,
		AccountID: output.AccountID,
		Tokens:    output.Tokens,
	}, "Registration successful")
}

func toRegisterInput(req *registrationRequest) *usecase.RegisterInput {
	role := entity.Role(req.Role)
	if req.Role == "" {
		role = entity.RoleUser
	}

	input := &usecase.RegisterInput{
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Role:                 role,
	}

	if req.Address != nil {
		input.Address = &usecase.AddressInput{
			Line:      req.Address.Line,
			ZipCode:   req.Address.ZipCode,
			City:      req.Address.City,
			State:     req.Address.State,
			CountryID: req.Address.CountryID,
		}
	}
	if req.Individual != nil {
		input.Individual = &usecase.IndividualInput{
			PassportNumber: req.Individual.PassportNumber,
			PhoneNumber:    req.Individual.PhoneNumber,
		}
	}

	return input
}

// Login handles the login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.tokenUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output.Tokens, "Login successful")
}

// Refresh handles the token refresh request.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), "Invalid refresh input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.tokenUC.Refresh(c.Request().Context(), &usecase.RefreshInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output.Tokens, "Token refreshed successfully")
}

// UserExists reports whether the identity provider already holds an account
// for the queried email. Used by registration front-ends before submitting.
func (h *AuthHandler) UserExists(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), "email query parameter is required")
	}

	exists, err := h.accountUC.Exists(c.Request().Context(), email)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"exists": exists}, "")
}

// Me returns the provider-side account behind the authenticated principal.
func (h *AuthHandler) Me(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), "Not authenticated")
	}

	account, err := h.accountUC.CurrentAccount(c.Request().Context(), principal.Subject)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, account, "")
}

// DeleteMe removes the authenticated principal's provider-side account.
func (h *AuthHandler) DeleteMe(c echo.Context) error {
	principal := deliverycontext.GetPrincipal(c.Request().Context())
	if principal == nil {
		return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), "Not authenticated")
	}

	if err := h.accountUC.DeleteAccount(c.Request().Context(), principal.Subject); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Account deleted")
}
