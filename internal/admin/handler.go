package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router, authn fiber.Handler) {
	admin := auth.RequireRole(auth.RoleAdmin)
	r.Get("/api/v1/admin/dashboard", authn, admin, h.getDashboard)
	r.Get("/api/v1/admin/users", authn, admin, h.getUsers)
	r.Delete("/api/v1/admin/users/:id<int>", authn, admin, h.deleteUser)
}

func (h *Handler) getDashboard(c *fiber.Ctx) error {
	d, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(d)
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	users, err := h.service.Users(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	who, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	id, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.DeleteUser(c.UserContext(), who.UserID, id); err != nil {
		return apperr.Respond(c, err)
	}
	log.Infof("admin %d deleted user %d", who.UserID, id)
	return c.JSON(fiber.Map{"message": "User deleted", "userId": id})
}
