package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/config"
	"github.com/nnomo/apartment-reservations/internal/middleware"
	"github.com/nnomo/apartment-reservations/internal/model"
	"github.com/nnomo/apartment-reservations/internal/repository"
	"github.com/nnomo/apartment-reservations/internal/utils"
)

// AdminStore is the part of *repository.AdminRepo used by authentication.
type AdminStore interface {
	Create(ctx context.Context, a *model.Admin) error
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Admins AdminStore
	Now    func() time.Time
	Log    *slog.Logger
}

func NewAuthHandler(cfg config.Config, admins AdminStore, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{Cfg: cfg, Admins: admins, Now: time.Now, Log: log.With("component", "auth")}
}

// ----- DTOs -----

type registerReq struct {
	LastName  string `json:"last_name" validate:"required,max=120"`
	FirstName string `json:"first_name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type adminPart struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Privileges []string `json:"privileges"`
	Sections   []string `json:"sections"`
	Status     string   `json:"status"`
}
type authResp struct {
	Admin  adminPart `json:"admin"`
	Access tokenPart `json:"access"`
}

// claimsFor builds the token identity of an admin.  Superadmins hold the
// ALL wildcard for both privileges and sections.
func claimsFor(a *model.Admin) utils.AdminClaims {
	cl := utils.AdminClaims{
		Subject:    a.ID,
		Role:       a.Role,
		Name:       strings.TrimSpace(a.FirstName + " " + a.LastName),
		Privileges: a.Privileges,
		Sections:   a.Sections,
		Status:     a.Status,
	}
	if a.Role == model.RoleSuperAdmin {
		cl.Privileges = []string{model.PrivAll}
		cl.Sections = []string{model.PrivAll}
	}
	return cl
}

func (h *AuthHandler) issue(c echo.Context, status int, a *model.Admin) error {
	cl := claimsFor(a)
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, cl, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(status, authResp{
		Admin: adminPart{
			ID: a.ID, Email: a.Email, Name: cl.Name, Role: a.Role,
			Privileges: cl.Privileges, Sections: cl.Sections, Status: a.Status,
		},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Login handles POST /v1/auth/login for superadmins and secondary admins.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return writeError(c, h.Log, err)
	}
	if !utils.VerifyPassword(a.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	switch a.Role {
	case model.RoleSuperAdmin:
	case model.RoleSecondaryAdmin:
		if a.Status == model.AdminSuspended {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account suspended"})
		}
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Admins.TouchLastLogin(ctx, a.ID, h.Now()); err != nil {
		h.Log.Warn("touch last login failed", "admin_id", a.ID, "error", err)
	}
	return h.issue(c, http.StatusOK, a)
}

// RegisterSuper creates a superadmin and logs it in.  It is only routed
// when SUPER_REGISTER_PATH is configured.
func (h *AuthHandler) RegisterSuper(c echo.Context) error {
	var req registerReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	a := &model.Admin{
		ID:           uuid.NewString(),
		LastName:     strings.TrimSpace(req.LastName),
		FirstName:    strings.TrimSpace(req.FirstName),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		Status:       model.AdminActive,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Admins.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return writeError(c, h.Log, err)
	}
	return h.issue(c, http.StatusCreated, a)
}

// Me returns the claims of the authenticated admin.
func (h *AuthHandler) Me(c echo.Context) error {
	cl, ok := middleware.Claims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	return c.JSON(http.StatusOK, cl)
}
