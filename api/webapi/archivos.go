package webapi

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/pjecz/plataforma-web/internal/blob"
	"github.com/pjecz/plataforma-web/storage/model"
)

// registerArchivos serves stored files. It is mounted before authentication
// because published files are public.
func registerArchivos(r fiber.Router, blobs blob.Store) {
	r.Get(
		"/archivos/*", func(c *fiber.Ctx) error {
			p, err := url.PathUnescape(c.Params("*"))
			if err != nil || p == "" {
				return badRequest(c, "invalid path")
			}
			data, contentType, err := blobs.Get(c.UserContext(), p)
			if err != nil {
				if errors.Is(err, blob.ErrNotFound) {
					return writeError(c, model.NotFoundErrorFmt("archivo not found: %s", p))
				}
				return writeError(c, err)
			}
			c.Set(fiber.HeaderContentType, contentType)
			return c.Send(data)
		},
	)
}
