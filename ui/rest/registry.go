package rest

import (
	"github.com/gofiber/fiber/v2"

	domainRegistry "github.com/ateneai/wa-relay/domains/registry"
	pkgError "github.com/ateneai/wa-relay/pkg/error"
	"github.com/ateneai/wa-relay/pkg/utils"
)

type Registry struct {
	Service domainRegistry.IRegistryUsecase
}

func InitRestRegistry(app fiber.Router, service domainRegistry.IRegistryUsecase) Registry {
	handler := Registry{Service: service}

	group := app.Group("/whatsapp/webhooks")
	group.Get("/", handler.List)
	group.Post("/", handler.Create)
	group.Put("/:key", handler.Update)
	group.Delete("/:key", handler.Delete)

	return handler
}

func (h *Registry) List(c *fiber.Ctx) error {
	targets, err := h.Service.List(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Webhooks retrieved",
		Results: targets,
	})
}

func (h *Registry) Create(c *fiber.Ctx) error {
	var request CreateWebhookRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	target, err := h.Service.Add(c.UserContext(), request.Key, request.URL, request.Name)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "CREATED",
		Message: "Webhook registered",
		Results: target,
	})
}

func (h *Registry) Update(c *fiber.Ctx) error {
	var request UpdateWebhookRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	target, err := h.Service.Update(c.UserContext(), c.Params("key"), domainRegistry.UpdateWebhookRequest{
		URL:     request.URL,
		Name:    request.Name,
		Enabled: request.Enabled,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	if target == nil {
		return errorResponse(c, pkgError.NotFoundError("Unknown webhook key"))
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Webhook updated",
		Results: target,
	})
}

func (h *Registry) Delete(c *fiber.Ctx) error {
	removed, err := h.Service.Remove(c.UserContext(), c.Params("key"))
	if err != nil {
		return errorResponse(c, err)
	}
	if !removed {
		return errorResponse(c, pkgError.NotFoundError("Unknown webhook key"))
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Webhook removed",
	})
}
