package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response header carrying the request's ray ID.
const HeaderName = "X-Ray-ID"

// LocalsKey is the fiber locals key under which the ray ID is stored.
const LocalsKey = "ray_id"

// New returns a middleware that assigns a unique ray ID to every request.
// Incoming requests that already carry the header keep their ID so traces
// survive proxy hops.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
