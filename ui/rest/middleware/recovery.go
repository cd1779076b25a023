package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	pkgError "github.com/ateneai/wa-relay/pkg/error"
	"github.com/ateneai/wa-relay/pkg/utils"
)

func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			res := utils.ResponseData{
				Status:  500,
				Code:    "INTERNAL_SERVER_ERROR",
				Message: fmt.Sprintf("%v", recovered),
			}
			if genericErr, ok := recovered.(pkgError.GenericError); ok {
				res.Status = genericErr.StatusCode()
				res.Code = genericErr.ErrCode()
				res.Message = genericErr.Error()
			}

			logrus.WithField("path", ctx.Path()).Errorf("Panic recovered: %v", recovered)
			_ = ctx.Status(res.Status).JSON(res)
		}()

		return ctx.Next()
	}
}
