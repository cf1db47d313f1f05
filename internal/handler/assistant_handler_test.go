package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/handler"
	"github.com/manara-platform/manara-api/internal/service"
	"github.com/manara-platform/manara-api/pkg/ai"
)

type mockAssistantService struct {
	lastSession service.Session
	response    dto.AssistantChatResponse
	err         error
}

func (m *mockAssistantService) Chat(_ context.Context, session service.Session, _ dto.AssistantChatRequest) (dto.AssistantChatResponse, error) {
	m.lastSession = session
	if m.err != nil {
		return dto.AssistantChatResponse{}, m.err
	}
	return m.response, nil
}

func newAssistantApp(svc service.AssistantService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/assistant", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		c.Locals("user_role", "student")
		return c.Next()
	})
	handler.NewAssistantHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func postChat(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()

	payload := dto.AssistantChatRequest{
		Messages:  []dto.AssistantMessage{{Role: "user", Content: "اشرح الدرس"}},
		SubjectID: 5,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAssistantChatSuccess(t *testing.T) {
	svc := &mockAssistantService{response: dto.AssistantChatResponse{Response: "إليك الشرح"}}
	app := newAssistantApp(svc)

	resp := postChat(t, app)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "u1", svc.lastSession.UserID)

	var envelope struct {
		Success bool                      `json:"success"`
		Data    dto.AssistantChatResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.True(t, envelope.Success)
	require.Equal(t, "إليك الشرح", envelope.Data.Response)
}

func TestAssistantChatUpstreamErrorMapping(t *testing.T) {
	cases := map[string]struct {
		err     error
		status  int
		message string
	}{
		"rate limited":   {ai.ErrRateLimited, fiber.StatusTooManyRequests, "assistant busy"},
		"quota":          {ai.ErrQuotaExhausted, fiber.StatusPaymentRequired, "quota exhausted"},
		"no entitlement": {service.ErrAssistantAccessDenied, fiber.StatusForbidden, "no active subscription for this subject"},
		"other upstream": {ai.ErrEmptyCompletion, fiber.StatusBadGateway, "assistant unavailable"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := newAssistantApp(&mockAssistantService{err: tc.err})

			resp := postChat(t, app)
			require.Equal(t, tc.status, resp.StatusCode)

			var envelope struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			decodeResponse(t, resp, &envelope)
			require.False(t, envelope.Success)
			require.Equal(t, tc.message, envelope.Message)
		})
	}
}

func TestAssistantChatRequiresAuthentication(t *testing.T) {
	app := fiber.New()
	handler.NewAssistantHandler(&mockAssistantService{}, zerolog.New(io.Discard)).Register(app.Group("/api/v1/assistant"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
