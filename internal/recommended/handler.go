package recommended

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/v1/products/top-rated", h.getTopRated)
}

func (h *Handler) getTopRated(c *fiber.Ctx) error {
	items, err := h.service.TopRated(c.UserContext(), c.QueryInt("limit", defaultLimit), c.QueryInt("offset", 0))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}
