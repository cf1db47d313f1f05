package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/observability"
	"github.com/manara-platform/manara-api/internal/repository"
	"github.com/manara-platform/manara-api/pkg/ai"
)

// ErrAssistantAccessDenied means the caller holds no entitlement for the
// requested subject.
var ErrAssistantAccessDenied = errors.New("no active subscription for subject")

// AssistantService proxies subject-scoped conversations to the completion
// gateway.
type AssistantService interface {
	Chat(ctx context.Context, session Session, req dto.AssistantChatRequest) (dto.AssistantChatResponse, error)
}

type assistantService struct {
	completer    ai.Completer
	entitlements EntitlementService
	subjects     repository.SubjectRepository
	materials    repository.MaterialRepository
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// NewAssistantService constructs the assistant proxy.
func NewAssistantService(completer ai.Completer, entitlements EntitlementService, subjects repository.SubjectRepository, materials repository.MaterialRepository, validate *validator.Validate, logger zerolog.Logger) AssistantService {
	return &assistantService{
		completer:    completer,
		entitlements: entitlements,
		subjects:     subjects,
		materials:    materials,
		validator:    validate,
		logger:       logger.With().Str("component", "assistant_service").Logger(),
		tracer:       otel.Tracer("github.com/manara-platform/manara-api/internal/service/assistant"),
	}
}

// Chat gates the request on the caller's entitlement, scopes the prompt to
// the subject and relays the conversation. The is_admin flag in the payload
// is advisory only; the verified session decides the bypass.
func (s *assistantService) Chat(ctx context.Context, session Session, req dto.AssistantChatRequest) (dto.AssistantChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssistantChatResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "assistant.chat", trace.WithAttributes(
		attribute.String("user.id", session.UserID),
		attribute.Int64("subject.id", int64(req.SubjectID)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.AssistantLatency().Observe(time.Since(start).Seconds())
	}()

	if !session.IsAdmin() {
		allowed, _, err := s.entitlements.HasAccess(spanCtx, session, req.SubjectID)
		if err != nil {
			observability.AssistantFailures().WithLabelValues("entitlement").Inc()
			return dto.AssistantChatResponse{}, err
		}
		if !allowed {
			observability.AssistantFailures().WithLabelValues("denied").Inc()
			return dto.AssistantChatResponse{}, ErrAssistantAccessDenied
		}
	}

	subject, err := s.subjects.FindByID(spanCtx, req.SubjectID)
	if err != nil {
		span.RecordError(err)
		observability.AssistantFailures().WithLabelValues("subject").Inc()
		return dto.AssistantChatResponse{}, fmt.Errorf("load subject: %w", err)
	}

	fileNames, err := s.materials.FileNamesBySubject(spanCtx, req.SubjectID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("subject_id", req.SubjectID).Msg("failed to load reference material catalog")
		fileNames = nil
	}

	messages := make([]ai.Message, 0, len(req.Messages)+1)
	messages = append(messages, ai.Message{
		Role:    "system",
		Content: buildSystemPrompt(subjectDisplayName(req, subject.Name), req, subject.AssistantPrompt, fileNames),
	})
	for _, message := range req.Messages {
		// Client-authored system turns are dropped so the subject scope and
		// admin instructions cannot be overridden.
		if message.Role == "system" {
			continue
		}
		messages = append(messages, ai.Message{Role: message.Role, Content: message.Content})
	}

	content, err := s.completer.Complete(spanCtx, messages)
	if err != nil {
		span.RecordError(err)
		observability.AssistantFailures().WithLabelValues("upstream").Inc()
		return dto.AssistantChatResponse{}, err
	}

	return dto.AssistantChatResponse{Response: content}, nil
}

func subjectDisplayName(req dto.AssistantChatRequest, catalogName string) string {
	if name := strings.TrimSpace(req.SubjectName); name != "" {
		return name
	}
	return catalogName
}

func buildSystemPrompt(subjectName string, req dto.AssistantChatRequest, adminInstructions string, fileNames []string) string {
	builder := strings.Builder{}
	builder.WriteString("أنت مساعد تعليمي لمنصة منارة. أجب حصراً ضمن نطاق مادة ")
	builder.WriteString(subjectName)
	builder.WriteString(".")

	if req.Stage != "" {
		builder.WriteString(fmt.Sprintf("\nالمرحلة: %s", req.Stage))
	}
	if req.Grade > 0 {
		builder.WriteString(fmt.Sprintf("\nالصف: %d", req.Grade))
	}
	if req.Section != "" {
		builder.WriteString(fmt.Sprintf("\nالشعبة: %s", req.Section))
	}

	if instructions := strings.TrimSpace(adminInstructions); instructions != "" {
		builder.WriteString("\n\nتعليمات المشرف:\n")
		builder.WriteString(instructions)
	}

	if len(fileNames) > 0 {
		builder.WriteString("\n\nالمواد المرجعية المرفوعة لهذه المادة:\n")
		for _, name := range fileNames {
			builder.WriteString("- ")
			builder.WriteString(name)
			builder.WriteString("\n")
		}
	}

	return builder.String()
}
