package wishlist

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
)

// Handler delegates wishlist operations to the wishlist service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router, authn fiber.Handler) {
	r.Get("/api/v1/wishlist", authn, h.getWishlist)
	r.Delete("/api/v1/wishlist", authn, h.clearWishlist)
	r.Post("/api/v1/wishlist/:productId<int>", authn, h.addToWishlist)
	r.Delete("/api/v1/wishlist/:productId<int>", authn, h.removeFromWishlist)
}

func (h *Handler) getWishlist(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	products, err := h.service.List(c.UserContext(), id.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) addToWishlist(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	productID, _ := strconv.Atoi(c.Params("productId"))
	ids, err := h.service.Add(c.UserContext(), id.UserID, productID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"productIds": ids})
}

func (h *Handler) removeFromWishlist(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	productID, _ := strconv.Atoi(c.Params("productId"))
	ids, err := h.service.Remove(c.UserContext(), id.UserID, productID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"productIds": ids})
}

func (h *Handler) clearWishlist(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if err := h.service.Clear(c.UserContext(), id.UserID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
