package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router, authn fiber.Handler) {
	r.Get("/api/v1/cart", authn, h.getCart)
	r.Delete("/api/v1/cart", authn, h.clearCart)
	r.Post("/api/v1/cart/:productId<int>", authn, h.addToCart)
	r.Patch("/api/v1/cart/:productId<int>", authn, h.updateCart)
	r.Delete("/api/v1/cart/:productId<int>", authn, h.removeFromCart)
}

type updateRequest struct {
	Action string `json:"action"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	cart, err := h.service.Get(c.UserContext(), id.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(cart)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	productID, _ := strconv.Atoi(c.Params("productId"))
	cart, err := h.service.Add(c.UserContext(), id.UserID, productID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(cart)
}

func (h *Handler) updateCart(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Invalid("body", err.Error()))
	}
	productID, _ := strconv.Atoi(c.Params("productId"))
	cart, err := h.service.Update(c.UserContext(), id.UserID, productID, req.Action)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(cart)
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	productID, _ := strconv.Atoi(c.Params("productId"))
	cart, err := h.service.Remove(c.UserContext(), id.UserID, productID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(cart)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if err := h.service.Clear(c.UserContext(), id.UserID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
