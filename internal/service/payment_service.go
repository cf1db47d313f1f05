package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ErrPaymentTemplateMissing signals that the confirmation-link template was
// not configured. Selection still succeeds; only the link is omitted.
var ErrPaymentTemplateMissing = errors.New("payment link template not configured")

// PaymentLinkParams are the placeholder values substituted into the
// confirmation-link template.
type PaymentLinkParams struct {
	SubjectName string
	Stage       string
	Grade       int
	Section     string
	StudentID   string
	TeacherID   string
}

// PaymentService produces the out-of-band payment confirmation deep link.
// The platform's responsibility ends at the link: an admin confirms payment
// externally and activates the subscription by hand.
type PaymentService interface {
	ConfirmationLink(params PaymentLinkParams) (string, error)
}

type paymentService struct {
	template string
	logger   zerolog.Logger
}

// NewPaymentService constructs the link builder. The template carries
// {subject}, {stage}, {grade}, {section}, {student_id} and {teacher_id}
// placeholders.
func NewPaymentService(template string, logger zerolog.Logger) PaymentService {
	return &paymentService{
		template: strings.TrimSpace(template),
		logger:   logger.With().Str("component", "payment_service").Logger(),
	}
}

func (s *paymentService) ConfirmationLink(params PaymentLinkParams) (string, error) {
	if s.template == "" {
		return "", ErrPaymentTemplateMissing
	}

	replacer := strings.NewReplacer(
		"{subject}", params.SubjectName,
		"{stage}", params.Stage,
		"{grade}", strconv.Itoa(params.Grade),
		"{section}", params.Section,
		"{student_id}", params.StudentID,
		"{teacher_id}", params.TeacherID,
	)

	return replacer.Replace(s.template), nil
}
