package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
	"github.com/wichananm65/juice-shop-backend/internal/media"
)

type Handler struct {
	service *Service
	images  media.Storage
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func NewHandler(service *Service, images media.Storage) *Handler {
	return &Handler{service: service, images: images}
}

// RegisterPublicRoutes mounts the credential endpoints behind limit.
func (h *Handler) RegisterPublicRoutes(r fiber.Router, limit fiber.Handler) {
	r.Post("/api/v1/sign-up", limit, h.register)
	r.Post("/api/v1/sign-in", limit, h.login)
	r.Post("/api/v1/password/forgot", limit, h.forgotPassword)
	r.Post("/api/v1/password/reset", limit, h.resetPassword)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router, authn fiber.Handler) {
	r.Post("/api/v1/sign-out", authn, h.logout)
	r.Get("/api/v1/profile", authn, h.getProfile)
	r.Patch("/api/v1/profile", authn, h.updateProfile)
	r.Get("/api/v1/profile/preferences", authn, h.getPreferences)
	r.Patch("/api/v1/profile/preferences", authn, h.updatePreferences)
	r.Get("/api/v1/profile/stats", authn, h.getStats)
	r.Post("/api/v1/profile/avatar", authn, h.uploadAvatar)
	r.Delete("/api/v1/profile/avatar", authn, h.removeAvatar)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(RegisterInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Register(c.UserContext(), *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    created.Sanitized(),
	})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	token, u, err := h.service.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    u.Sanitized(),
		"token":   token,
	})
}

func (h *Handler) logout(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if err := h.service.Logout(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

func (h *Handler) forgotPassword(c *fiber.Ctx) error {
	payload := new(forgotRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Email == "" {
		return apperr.Respond(c, apperr.Invalid("email", "is required"))
	}
	if err := h.service.ForgotPassword(c.UserContext(), payload.Email); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "If the email is registered, a reset link has been sent"})
}

func (h *Handler) resetPassword(c *fiber.Ctx) error {
	payload := new(resetRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.service.ResetPassword(c.UserContext(), payload.Token, payload.Password); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	u, err := h.service.GetByID(c.UserContext(), id.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(u.Sanitized())
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	payload := new(ProfileUpdate)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	u, err := h.service.UpdateProfile(c.UserContext(), id.UserID, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(u.Sanitized())
}

func (h *Handler) getPreferences(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	prefs, err := h.service.Preferences(c.UserContext(), id.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"preferences": prefs})
}

func (h *Handler) updatePreferences(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	payload := new(PreferencesUpdate)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	prefs, err := h.service.UpdatePreferences(c.UserContext(), id.UserID, *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Preferences updated successfully", "preferences": prefs})
}

func (h *Handler) getStats(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	stats, err := h.service.Stats(c.UserContext(), id.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"stats": stats})
}

func (h *Handler) uploadAvatar(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	files, err := media.FormImages(c, "avatar", 1)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if len(files) == 0 {
		return apperr.Respond(c, apperr.Invalid("avatar", "file is required"))
	}

	ctx := c.UserContext()
	urls, err := media.SaveImages(ctx, h.images, "avatars", files)
	if err != nil {
		return apperr.Respond(c, err)
	}
	u, previous, err := h.service.SetAvatar(ctx, id.UserID, &urls[0])
	if err != nil {
		return apperr.Respond(c, err)
	}
	h.discard(c, previous)
	return c.JSON(fiber.Map{"avatar": u.Avatar, "user": u.Sanitized()})
}

func (h *Handler) removeAvatar(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	u, previous, err := h.service.SetAvatar(c.UserContext(), id.UserID, nil)
	if err != nil {
		return apperr.Respond(c, err)
	}
	h.discard(c, previous)
	return c.JSON(fiber.Map{"avatar": nil, "user": u.Sanitized()})
}

func (h *Handler) discard(c *fiber.Ctx, url *string) {
	if url == nil {
		return
	}
	if err := h.images.Delete(c.UserContext(), *url); err != nil {
		log.Warnf("delete old avatar %s: %v", *url, err)
	}
}
