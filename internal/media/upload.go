package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

const MaxImageSize = 2 << 20

// FormImages returns the image files sent under field. A request that is not
// multipart yields no files.
func FormImages(c *fiber.Ctx, field string, max int) ([]*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.Invalid(field, "malformed multipart form")
	}
	files := form.File[field]
	if len(files) > max {
		return nil, apperr.Invalid(field, fmt.Sprintf("at most %d images allowed", max))
	}
	for _, fh := range files {
		if fh.Size > MaxImageSize {
			return nil, apperr.Invalid(field, fmt.Sprintf("%s exceeds 2MB", fh.Filename))
		}
	}
	return files, nil
}

// SaveImages stores every file after checking its content is an image. Files
// saved before a failure are removed again.
func SaveImages(ctx context.Context, store Storage, folder string, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := saveImage(ctx, store, folder, fh)
		if err != nil {
			for _, u := range urls {
				if derr := store.Delete(ctx, u); derr != nil {
					log.Warnf("cleanup %s: %v", u, derr)
				}
			}
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func saveImage(ctx context.Context, store Storage, folder string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return "", apperr.Invalid("images", fmt.Sprintf("%s is not an image", fh.Filename))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return store.Save(ctx, folder, fh.Filename, f)
}
