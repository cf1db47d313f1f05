package handler_test

import (
	"context"
	"fmt"
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
)

type mockEntitlementService struct {
	allowed bool
	reason  string
	err     error
}

func (m *mockEntitlementService) HasAccess(_ context.Context, _ service.Session, _ uint) (bool, string, error) {
	return m.allowed, m.reason, m.err
}

func (m *mockEntitlementService) ListSubscriptions(_ context.Context, _ service.Session) ([]dto.SubscriptionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []dto.SubscriptionResponse{{ID: 1, SubjectID: 5}}, nil
}

func newEntitlementApp(svc service.EntitlementService, authed bool) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/entitlements", func(c *fiber.Ctx) error {
		if authed {
			c.Locals("user_id", "u1")
			c.Locals("user_role", "student")
		}
		return c.Next()
	})
	handler.NewEntitlementHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestCheckAccessAllowed(t *testing.T) {
	app := newEntitlementApp(&mockEntitlementService{allowed: true, reason: service.ReasonSubscription}, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entitlements/subjects/5/access", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool                    `json:"success"`
		Data    dto.EntitlementResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.True(t, envelope.Data.Allowed)
	require.Equal(t, uint(5), envelope.Data.SubjectID)
	require.Equal(t, service.ReasonSubscription, envelope.Data.Reason)
}

func TestCheckAccessFailsClosedAsServiceUnavailable(t *testing.T) {
	svc := &mockEntitlementService{err: fmt.Errorf("%w: db down", service.ErrEntitlementUnknown)}
	app := newEntitlementApp(svc, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entitlements/subjects/5/access", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestCheckAccessRejectsAnonymous(t *testing.T) {
	app := newEntitlementApp(&mockEntitlementService{allowed: true}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entitlements/subjects/5/access", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCheckAccessInvalidSubjectID(t *testing.T) {
	app := newEntitlementApp(&mockEntitlementService{}, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entitlements/subjects/abc/access", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListSubscriptions(t *testing.T) {
	app := newEntitlementApp(&mockEntitlementService{}, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entitlements/subscriptions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool                       `json:"success"`
		Data    []dto.SubscriptionResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.Len(t, envelope.Data, 1)
}
