package address

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
)

// Handler delegates address operations to the address service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router, authn fiber.Handler) {
	r.Get("/api/v1/addresses", authn, h.getAddresses)
	r.Post("/api/v1/addresses", authn, h.addAddress)
	r.Patch("/api/v1/addresses/:id<int>", authn, h.updateAddress)
	r.Delete("/api/v1/addresses/:id<int>", authn, h.deleteAddress)
}

func (h *Handler) getAddresses(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	addrs, err := h.service.List(c.UserContext(), id.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(addrs)
}

func (h *Handler) addAddress(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return apperr.Respond(c, apperr.Invalid("body", err.Error()))
	}
	addr, err := h.service.Create(c.UserContext(), id.UserID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(addr)
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return apperr.Respond(c, apperr.Invalid("body", err.Error()))
	}
	addressID, _ := strconv.Atoi(c.Params("id"))
	addr, err := h.service.Update(c.UserContext(), id.UserID, addressID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(addr)
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	addressID, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.Delete(c.UserContext(), id.UserID, addressID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Address deleted"})
}
