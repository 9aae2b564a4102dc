package controller

import (
	"agentic-bi-be/internal/dto"
	"agentic-bi-be/internal/entity"
	"agentic-bi-be/internal/pkg/serverutils"
	"agentic-bi-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type conversationController struct {
	conversationService service.IConversationService
}

func NewConversationController(conversationService service.IConversationService) IConversationController {
	return &conversationController{
		conversationService: conversationService,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversations")
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id/messages", c.Messages)
	h.Delete(":id", c.Delete)
}

func (c *conversationController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	conv, err := c.conversationService.CreateConversation(ctx.Context(), req.Title)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create conversation", dto.CreateConversationResponse{Id: conv.Id}))
}

func (c *conversationController) List(ctx *fiber.Ctx) error {
	convs, err := c.conversationService.ListConversations(ctx.Context())
	if err != nil {
		return err
	}

	out := make([]dto.ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		out = append(out, conversationToDTO(conv))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list conversations", out))
}

func (c *conversationController) Messages(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	limit := ctx.QueryInt("limit", 0)
	msgs, err := c.conversationService.GetHistory(ctx.Context(), id, limit)
	if err != nil {
		return err
	}

	out := make([]dto.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, dto.MessageResponse{
			Id:             m.Id,
			ConversationId: m.ConversationId,
			Role:           m.Role,
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get messages", out))
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	if err := c.conversationService.DeleteConversation(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete conversation", nil))
}

func conversationToDTO(conv *entity.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		Id:        conv.Id,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
	}
}
