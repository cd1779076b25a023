package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	pkgError "github.com/ateneai/wa-relay/pkg/error"
	"github.com/ateneai/wa-relay/pkg/utils"
)

// BearerAuth guards a route group with a static service token. An empty
// token disables the check, matching deployments that rely on network
// isolation instead.
func BearerAuth(token string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if token == "" {
			return ctx.Next()
		}

		header := ctx.Get(fiber.HeaderAuthorization)
		provided, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || provided != token {
			unauthorized := pkgError.UnauthorizedError("Invalid or missing service token")
			return ctx.Status(unauthorized.StatusCode()).JSON(utils.ResponseData{
				Status:  unauthorized.StatusCode(),
				Code:    unauthorized.ErrCode(),
				Message: unauthorized.Error(),
			})
		}
		return ctx.Next()
	}
}
