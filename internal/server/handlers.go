package server

import (
	"context"
	"encoding/xml"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bunge-labs/billbot/internal/kb"
	"github.com/bunge-labs/billbot/internal/resolve"
	"github.com/bunge-labs/billbot/models"
	"github.com/bunge-labs/billbot/repository"
)

// Twilio hard-limits both directions of a WhatsApp exchange.
const (
	maxInboundRunes  = 500
	maxOutboundRunes = 1600
)

// Answerer is the engine surface the handlers need.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, resolve.Mode)
}

// WebhookHandler serves the WhatsApp webhook and the plain JSON API.
type WebhookHandler struct {
	Engine        Answerer
	Index         *kb.Index
	Conversations repository.ConversationRepository
	Logger        *log.Logger
}

func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/whatsapp", h.WhatsApp)
	e.POST("/api/ask", h.Ask)
	e.GET("/api/search", h.Search)
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// WhatsApp handles one inbound Twilio message and replies with TwiML.
func (h *WebhookHandler) WhatsApp(c echo.Context) error {
	body := truncateRunes(strings.TrimSpace(c.FormValue("Body")), maxInboundRunes)
	from := c.FormValue("From")

	answer, mode := h.Engine.Answer(c.Request().Context(), body)
	answer = clampReply(answer, maxOutboundRunes)

	if h.Conversations != nil && from != "" {
		err := h.Conversations.Append(c.Request().Context(), models.ConversationMessage{
			From:     from,
			Question: body,
			Answer:   answer,
			Mode:     mode.String(),
		})
		if err != nil {
			// Best effort; the reply still goes out.
			h.Logger.Printf("conversation append failed for %s: %v", from, err)
		}
	}

	return c.XML(http.StatusOK, twimlResponse{Message: answer})
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Mode   string `json:"mode"`
}

// Ask answers one query over plain JSON, without the WhatsApp size limits.
func (h *WebhookHandler) Ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	answer, mode := h.Engine.Answer(c.Request().Context(), req.Query)
	return c.JSON(http.StatusOK, askResponse{Answer: answer, Mode: mode.String()})
}

type searchHit struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
}

// Search exposes the ranked full-text index directly.
func (h *WebhookHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query parameter q")
	}
	k, _ := strconv.Atoi(c.QueryParam("k"))
	if k <= 0 {
		k = 5
	}
	nodes, err := h.Index.Search(q, k)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	hits := make([]searchHit, 0, len(nodes))
	for _, n := range nodes {
		hits = append(hits, searchHit{
			ID:          n.ID,
			Title:       resolve.NormalizeTitle(n.Title),
			Description: n.Description,
			URL:         n.URL,
			FilePath:    n.FilePath,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"hits": hits})
}
