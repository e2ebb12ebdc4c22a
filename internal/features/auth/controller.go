package auth

import (
	"time"

	common_api "go-marketplace/internal/common/api"
	"go-marketplace/internal/config"
	"go-marketplace/internal/features/admin"
	"go-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthController struct {
	AuthService  AuthService
	AdminService admin.AdminService
	config       *config.Config
}

func NewAuthController(authService AuthService, adminService admin.AdminService, cfg *config.Config) *AuthController {
	return &AuthController{
		AuthService:  authService,
		AdminService: adminService,
		config:       cfg,
	}
}

// Login godoc
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "Credentials"
// @Success      200  {object} LoginResult
// @Router       /api/auth/login [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}

	result, err := ctrl.AuthService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return common_api.RespondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.SessionID,
		Expires:  time.Now().Add(ctrl.config.SessionTTL),
		HTTPOnly: true,
		Secure:   ctrl.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(result)
}

func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	cred := middleware.CredentialFrom(c)
	if err := ctrl.AuthService.Logout(c.UserContext(), cred.SessionID); err != nil {
		return common_api.RespondError(c, err)
	}
	c.ClearCookie(middleware.SessionCookie)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me returns the caller together with the permissions resolved for this request
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	p := middleware.PrincipalFrom(c)
	return c.JSON(fiber.Map{
		"admin":       p.Admin,
		"permissions": p.Permissions,
	})
}

func (ctrl *AuthController) UpdateMe(c *fiber.Ctx) error {
	var req admin.UpdateProfileRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	p := middleware.PrincipalFrom(c)
	updated, err := ctrl.AdminService.UpdateProfile(c.UserContext(), p.Admin.ID, req)
	if err != nil {
		return common_api.RespondError(c, err)
	}
	return c.JSON(updated)
}

func (ctrl *AuthController) ChangePassword(c *fiber.Ctx) error {
	var req admin.ChangePasswordRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return common_api.RespondError(c, err)
	}
	p := middleware.PrincipalFrom(c)
	if err := ctrl.AdminService.ChangePassword(c.UserContext(), p.Admin.ID, req); err != nil {
		return common_api.RespondError(c, err)
	}
	c.ClearCookie(middleware.SessionCookie)
	return c.JSON(fiber.Map{"message": "Password changed, sign in again"})
}
