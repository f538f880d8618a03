package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/http/middleware"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/domain"
	"github.com/abhigupta0507/NadiRakshak-Backend/internal/usecase"
	res "github.com/abhigupta0507/NadiRakshak-Backend/pkg/http"
)

type AuthHandler struct {
	service usecase.Service
}

func NewAuthHandler(s usecase.Service) *AuthHandler { return &AuthHandler{service: s} }

type signupInitiateRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	Age          int    `json:"age" validate:"omitempty,min=0,max=150"`
	City         string `json:"city"`
	State        string `json:"state"`
	MobileNumber string `json:"mobileNumber"`
	Role         string `json:"role"`
}

type signupVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type profileRequest struct {
	ID string `json:"id"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func newSessionResponse(u *domain.User, t *usecase.Tokens) sessionResponse {
	return sessionResponse{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
}

func (h *AuthHandler) SignupInitiate(c echo.Context) error {
	req := new(signupInitiateRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}
	in := usecase.SignupInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Age:          req.Age,
		City:         req.City,
		State:        req.State,
		MobileNumber: req.MobileNumber,
		Role:         req.Role,
	}
	sessionID := middleware.SessionIDFromContext(c.Request().Context())
	email, err := h.service.InitiateSignup(c.Request().Context(), res.RequestID(c), sessionID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "OTP sent successfully", "email": email})
}

func (h *AuthHandler) SignupVerify(c echo.Context) error {
	req := new(signupVerifyRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}
	sessionID := middleware.SessionIDFromContext(c.Request().Context())
	user, tokens, err := h.service.VerifySignup(c.Request().Context(), res.RequestID(c), sessionID, req.Email, req.OTP)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, newSessionResponse(user, tokens))
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := new(loginRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}
	user, tokens, err := h.service.Login(c.Request().Context(), res.RequestID(c), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(user, tokens))
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	req := new(refreshRequest)
	if err := c.Bind(req); err != nil {
		return writeError(c, domain.ErrInvalidRefreshToken)
	}
	access, err := h.service.Refresh(c.Request().Context(), res.RequestID(c), req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"accessToken": access})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.service.Logout(c.Request().Context(), res.RequestID(c), middleware.UserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	req := new(profileRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", res.RequestID(c), nil)
	}
	profile, err := h.service.GetProfile(c.Request().Context(), res.RequestID(c), middleware.UserID(c), req.ID)
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, profile)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	req := new(forgotPasswordRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}
	if err := h.service.ForgotPassword(c.Request().Context(), res.RequestID(c), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Password reset email sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	req := new(resetPasswordRequest)
	if ok, err := bind(c, req); !ok {
		return err
	}
	if err := h.service.ResetPassword(c.Request().Context(), res.RequestID(c), c.Param("token"), req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Password reset successful"})
}

func (h *AuthHandler) VerifyToken(c echo.Context) error {
	req := new(verifyTokenRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", res.RequestID(c), nil)
	}
	result, err := h.service.VerifyToken(c.Request().Context(), res.RequestID(c), req.Token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// bind decodes and validates the body. When ok is false the error response has been written
// and err is whatever writing it returned.
func bind(c echo.Context, req interface{}) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", res.RequestID(c), nil)
	}
	if err := c.Validate(req); err != nil {
		return false, res.ErrorJSON(c, http.StatusBadRequest, "validation_failed", "invalid input", res.RequestID(c), res.FieldErrors(err))
	}
	return true, nil
}
