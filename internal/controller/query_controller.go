package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"agentic-bi-be/internal/dto"
	"agentic-bi-be/internal/pkg/serverutils"
	"agentic-bi-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Run(ctx *fiber.Ctx) error
	GenerateMessage(ctx *fiber.Ctx) error
	GenerateMessageStream(ctx *fiber.Ctx) error
	LastReport(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{
		queryService: queryService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Get("/query", c.Query)

	h := r.Group("/agents")
	h.Post("run", c.Run)
	h.Post("messages/generate", c.GenerateMessage)
	h.Post("messages/generate/stream", c.GenerateMessageStream)
	h.Get("reports/:conversation_id", c.LastReport)
}

// Query is the one-shot GET entrypoint: ?q=<query> runs the full
// workflow without conversation state.
func (c *queryController) Query(ctx *fiber.Ctx) error {
	q := ctx.Query("q")
	if q == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'q' is required")
	}

	res, err := c.queryService.RunQuery(ctx.Context(), &dto.RunQueryRequest{Query: q})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run query", res))
}

func (c *queryController) Run(ctx *fiber.Ctx) error {
	var req dto.RunQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.RunQuery(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run workflow", res))
}

func (c *queryController) GenerateMessage(ctx *fiber.Ctx) error {
	var req dto.GenerateMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.GenerateMessage(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate message", res))
}

// GenerateMessageStream relays workflow progress as server-sent events.
// Each event is one `data: <json>` frame; the stream ends after the
// final or error event.
func (c *queryController) GenerateMessageStream(ctx *fiber.Ctx) error {
	var req dto.GenerateMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The fiber ctx is recycled once the handler returns, so the
	// stream writer gets its own context.
	streamCtx, cancel := context.WithCancel(context.Background())

	events, err := c.queryService.GenerateMessageStream(streamCtx, &req)
	if err != nil {
		cancel()
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}

func (c *queryController) LastReport(ctx *fiber.Ctx) error {
	conversationId := ctx.Params("conversation_id")

	report, found := c.queryService.GetLastReport(ctx.Context(), conversationId)
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "no report for conversation")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get report", report))
}
