package handler

import (
	"log/slog"
	"net/http"

	"enroll/internal/delivery/http/response"
	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for the profile CRUD endpoints.
type UserHandler struct {
	profileUC usecase.ProfileUsecase
	logger    *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(profileUC usecase.ProfileUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		profileUC: profileUC,
		logger:    logger,
	}
}

type createProfileRequest struct {
	Email      string             `json:"email" validate:"required,email"`
	FirstName  string             `json:"firstName" validate:"required"`
	LastName   string             `json:"lastName" validate:"required"`
	Address    *addressRequest    `json:"address"`
	Individual *individualRequest `json:"individual"`
}

type updateAddressRequest struct {
	Line      *string `json:"line"`
	ZipCode   *string `json:"zipCode"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	CountryID *int    `json:"countryId"`
}

type updateIndividualRequest struct {
	PassportNumber *string `json:"passportNumber"`
	PhoneNumber    *string `json:"phoneNumber"`
	Status         *string `json:"status"`
}

type updateProfileRequest struct {
	FirstName  *string                  `json:"firstName"`
	LastName   *string                  `json:"lastName"`
	Filled     *bool                    `json:"filled"`
	Address    *updateAddressRequest    `json:"address"`
	Individual *updateIndividualRequest `json:"individual"`
}

func profileIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails("id must be a UUID")
	}

	return id, nil
}

// CreateUser writes a profile directly. No identity-provider account is
// involved; registration is the only path that creates credentials.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	input := &usecase.CreateProfileInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
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

	profile, err := h.profileUC.CreateProfile(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, profile, "Profile created")
}

// GetUser returns a single profile by id.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := profileIDParam(c)
	if err != nil {
		return errors.WithStack(err)
	}

	profile, err := h.profileUC.GetProfile(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "")
}

// FindUserByEmail returns a single profile matching the email query parameter.
func (h *UserHandler) FindUserByEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), "email query parameter is required")
	}

	profile, err := h.profileUC.GetProfileByEmail(c.Request().Context(), email)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "")
}

// UpdateUser applies a partial update to a profile.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := profileIDParam(c)
	if err != nil {
		return errors.WithStack(err)
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), "Invalid profile update input")
	}

	profile, err := h.profileUC.UpdateProfile(c.Request().Context(), id, toUpdateInput(&req))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "Profile updated")
}

func toUpdateInput(req *updateProfileRequest) *usecase.UpdateProfileInput {
	input := &usecase.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Filled:    req.Filled,
	}

	if req.Address != nil {
		input.Address = &usecase.UpdateAddressInput{
			Line:      req.Address.Line,
			ZipCode:   req.Address.ZipCode,
			City:      req.Address.City,
			State:     req.Address.State,
			CountryID: req.Address.CountryID,
		}
	}

	if req.Individual != nil {
		input.Individual = &usecase.UpdateIndividualInput{
			PassportNumber: req.Individual.PassportNumber,
			PhoneNumber:    req.Individual.PhoneNumber,
		}
		if req.Individual.Status != nil {
			status := entity.IndividualStatus(*req.Individual.Status)
			input.Individual.Status = &status
		}
	}

	return input
}

// DeleteUser removes a profile and its owned records.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := profileIDParam(c)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.profileUC.DeleteProfile(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Profile deleted")
}
