package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
)

// Handler delegates order operations to the order service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router, authn fiber.Handler) {
	admin := auth.RequireRole(auth.RoleAdmin)

	r.Post("/api/v1/orders", authn, h.createOrder)
	r.Post("/api/v1/orders/buy-now/:productId<int>", authn, h.buyNow)
	r.Post("/api/v1/orders/checkout", authn, h.checkout)
	r.Get("/api/v1/orders", authn, h.getOrders)
	r.Get("/api/v1/orders/:id<int>", authn, h.getOrder)
	r.Patch("/api/v1/orders/:id<int>/cancel", authn, h.cancelOrder)

	r.Get("/api/v1/admin/orders", authn, admin, h.getAllOrders)
	r.Patch("/api/v1/orders/:id<int>/status", authn, admin, h.updateStatus)
	r.Patch("/api/v1/orders/:id<int>/payment", authn, admin, h.updatePayment)
}

type createOrderRequest struct {
	Items []Line `json:"items"`
	Delivery
}

type buyNowRequest struct {
	Quantity int `json:"quantity"`
	Delivery
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Invalid("body", err.Error()))
	}
	o, err := h.service.Place(c.UserContext(), id.UserID, req.Items, req.Delivery)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) buyNow(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var req buyNowRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Invalid("body", err.Error()))
	}
	productID, _ := strconv.Atoi(c.Params("productId"))
	o, err := h.service.BuyNow(c.UserContext(), id.UserID, productID, req.Quantity, req.Delivery)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	var req Delivery
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Invalid("body", err.Error()))
	}
	o, err := h.service.Checkout(c.UserContext(), id.UserID, req)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

// getOrders returns the caller's orders, newest first.
func (h *Handler) getOrders(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	page, err := h.service.ListMine(c.UserContext(), id.UserID, c.QueryInt("page", 1), c.QueryInt("limit", defaultPageSize), c.Query("status"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(page)
}

func (h *Handler) getAllOrders(c *fiber.Ctx) error {
	page, err := h.service.ListAll(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", defaultPageSize), c.Query("status"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(page)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	orderID, _ := strconv.Atoi(c.Params("id"))
	o, err := h.service.Get(c.UserContext(), id, orderID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	orderID, _ := strconv.Atoi(c.Params("id"))
	o, err := h.service.Cancel(c.UserContext(), id.UserID, orderID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Invalid("body", err.Error()))
	}
	orderID, _ := strconv.Atoi(c.Params("id"))
	o, err := h.service.UpdateStatus(c.UserContext(), orderID, req.Status)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) updatePayment(c *fiber.Ctx) error {
	var req struct {
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Invalid("body", err.Error()))
	}
	orderID, _ := strconv.Atoi(c.Params("id"))
	o, err := h.service.UpdatePaymentStatus(c.UserContext(), orderID, req.PaymentStatus)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}
