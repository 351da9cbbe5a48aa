package product

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
	"github.com/wichananm65/juice-shop-backend/internal/media"
)

const maxPageSize = 100

type Handler struct {
	service *Service
	images  media.Storage
}

func NewHandler(service *Service, images media.Storage) *Handler {
	return &Handler{service: service, images: images}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/v1/products", h.getProducts)
	r.Get("/api/v1/products/:id<int>", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router, authn fiber.Handler) {
	admin := auth.RequireRole(auth.RoleAdmin)
	r.Post("/api/v1/products", authn, admin, h.createProduct)
	r.Patch("/api/v1/products/:id<int>", authn, admin, h.updateProduct)
	r.Delete("/api/v1/products/:id<int>", authn, admin, h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	products, err := h.service.List(c.UserContext(), Filter{
		Category: strings.ToLower(c.Query("category")),
		Query:    strings.TrimSpace(c.Query("q")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	in, err := parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	files, err := media.FormImages(c, "images", MaxImages)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if len(files) == 0 {
		return apperr.Respond(c, apperr.Invalid("images", "at least one image is required"))
	}

	ctx := c.UserContext()
	urls, err := media.SaveImages(ctx, h.images, "products", files)
	if err != nil {
		return apperr.Respond(c, err)
	}
	created, err := h.service.Create(ctx, in, urls)
	if err != nil {
		h.discard(c, urls)
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	in, err := parseInput(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	files, err := media.FormImages(c, "images", MaxImages)
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx := c.UserContext()
	urls, err := media.SaveImages(ctx, h.images, "products", files)
	if err != nil {
		return apperr.Respond(c, err)
	}
	updated, replaced, err := h.service.Update(ctx, id, in, urls)
	if err != nil {
		h.discard(c, urls)
		return apperr.Respond(c, err)
	}
	h.discard(c, replaced)
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	deleted, err := h.service.Delete(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	h.discard(c, deleted.Images)
	return c.JSON(fiber.Map{"message": "Product deleted", "productId": deleted.ID})
}

func (h *Handler) discard(c *fiber.Ctx, urls []string) {
	for _, u := range urls {
		if err := h.images.Delete(c.UserContext(), u); err != nil {
			log.Warnf("delete product image %s: %v", u, err)
		}
	}
}

// parseInput reads product fields from a multipart form or a JSON body.
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

	errs := map[string]string{}
	if v := c.FormValue("name"); v != "" {
		in.Name = &v
	}
	if v := c.FormValue("category"); v != "" {
		in.Category = &v
	}
	if v := c.FormValue("description"); v != "" {
		in.Description = &v
	}
	if v := c.FormValue("price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			errs["price"] = "price must be a number"
		} else {
			in.Price = &price
		}
	}
	if v := c.FormValue("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			errs["stock"] = "stock must be an integer"
		} else {
			in.Stock = &stock
		}
	}
	if v := c.FormValue("ingredients"); v != "" {
		var ings []Ingredient
		if err := json.Unmarshal([]byte(v), &ings); err != nil {
			errs["ingredients"] = "ingredients must be a JSON array of {name, quantity}"
		} else {
			in.Ingredients = &ings
		}
	}
	if v := c.FormValue("benefits"); v != "" {
		benefits := parseList(v)
		in.Benefits = &benefits
	}
	if len(errs) > 0 {
		return in, apperr.Validation(errs)
	}
	return in, nil
}

// parseList accepts a JSON string array or a comma separated list.
func parseList(v string) []string {
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err == nil {
		return out
	}
	out = []string{}
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
