package http

import (
	"strconv"

	"engage_server/core/domain"
	"engage_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// GetAuthUser extracts the authorization context the auth middleware put
// on the request.
func GetAuthUser(c *fiber.Ctx) (domain.AuthUser, error) {
	user, ok := c.Locals("auth_user").(domain.AuthUser)
	if !ok {
		return domain.AuthUser{}, apperr.Unauthorized("")
	}
	return user, nil
}

// ParamID parses a path parameter as an int64 id.
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return id, nil
}

// QueryStringPtr returns a pointer to a query param, nil when absent.
func QueryStringPtr(c *fiber.Ctx, key string) *string {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	return &val
}

// QueryBoolPtr parses a boolean query param, nil when absent.
func QueryBoolPtr(c *fiber.Ctx, key string) *bool {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	b := val == "true" || val == "1"
	return &b
}
