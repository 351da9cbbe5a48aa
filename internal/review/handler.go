package review

import (
	"strconv"
	"strings"

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

func NewHandler(s *Service, images media.Storage) *Handler {
	return &Handler{service: s, images: images}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/v1/products/:id<int>/reviews", h.getReviews)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router, authn fiber.Handler) {
	r.Post("/api/v1/products/:id<int>/reviews", authn, h.createReview)
	r.Patch("/api/v1/reviews/:id<int>", authn, h.updateReview)
	r.Delete("/api/v1/reviews/:id<int>", authn, h.deleteReview)
}

func (h *Handler) getReviews(c *fiber.Ctx) error {
	productID, _ := strconv.Atoi(c.Params("id"))
	reviews, err := h.service.ListByProduct(c.UserContext(), productID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(reviews)
}

func (h *Handler) createReview(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	in, err := parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	files, err := media.FormImages(c, "images", MaxImages)
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx := c.UserContext()
	urls, err := media.SaveImages(ctx, h.images, "reviews", files)
	if err != nil {
		return apperr.Respond(c, err)
	}
	productID, _ := strconv.Atoi(c.Params("id"))
	created, err := h.service.Create(ctx, id.UserID, productID, in, urls)
	if err != nil {
		h.discard(c, urls)
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateReview(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	in, err := parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	files, err := media.FormImages(c, "images", MaxImages)
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx := c.UserContext()
	urls, err := media.SaveImages(ctx, h.images, "reviews", files)
	if err != nil {
		return apperr.Respond(c, err)
	}
	reviewID, _ := strconv.Atoi(c.Params("id"))
	updated, replaced, err := h.service.Update(ctx, id.UserID, reviewID, in, urls)
	if err != nil {
		h.discard(c, urls)
		return apperr.Respond(c, err)
	}
	h.discard(c, replaced)
	return c.JSON(updated)
}

func (h *Handler) deleteReview(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	reviewID, _ := strconv.Atoi(c.Params("id"))
	deleted, err := h.service.Delete(c.UserContext(), id.UserID, reviewID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	h.discard(c, deleted.Images)
	return c.JSON(fiber.Map{"message": "Review deleted", "reviewId": deleted.ID})
}

func (h *Handler) discard(c *fiber.Ctx, urls []string) {
	for _, u := range urls {
		if err := h.images.Delete(c.UserContext(), u); err != nil {
			log.Warnf("delete review image %s: %v", u, err)
		}
	}
}

func parseInput(c *fiber.Ctx) (Input, error) {
	var in Input
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if len(c.Body()) == 0 {
			return in, nil
		}
		if err := c.BodyParser(&in); err != nil {
			return in, apperr.Invalid("body", err.Error())
		}
		return in, nil
	}
	if v := c.FormValue("rating"); v != "" {
		rating, err := strconv.Atoi(v)
		if err != nil {
			return in, apperr.Invalid("rating", "rating must be an integer")
		}
		in.Rating = &rating
	}
	if v := c.FormValue("comment"); v != "" {
		in.Comment = &v
	}
	return in, nil
}
