package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfirmationLinkSubstitutesAllPlaceholders(t *testing.T) {
	svc := NewPaymentService("https://wa.me/2010?text={subject}-{stage}-{grade}-{section}-{student_id}-{teacher_id}", testLogger())

	link, err := svc.ConfirmationLink(PaymentLinkParams{
		SubjectName: "الرياضيات",
		Stage:       "secondary",
		Grade:       11,
		Section:     "science",
		StudentID:   "u1",
		TeacherID:   "t1",
	})
	require.NoError(t, err)
	require.Equal(t, "https://wa.me/2010?text=الرياضيات-secondary-11-science-u1-t1", link)
}

func TestConfirmationLinkMissingTemplate(t *testing.T) {
	svc := NewPaymentService("  ", testLogger())

	_, err := svc.ConfirmationLink(PaymentLinkParams{SubjectName: "الرياضيات"})
	require.ErrorIs(t, err, ErrPaymentTemplateMissing)
}

func TestResolveCategoryLabelArabicAndCanonical(t *testing.T) {
	arabic, err := ResolveCategoryLabel("لغة فرنسية")
	require.NoError(t, err)
	require.Equal(t, "french", arabic.Key)
	require.Equal(t, "اللغة الفرنسية", arabic.SubjectName)

	canonical, err := ResolveCategoryLabel("french")
	require.NoError(t, err)
	require.Equal(t, arabic, canonical)

	trimmed, err := ResolveCategoryLabel("  رياضيات ")
	require.NoError(t, err)
	require.Equal(t, "math", trimmed.Key)
}

func TestResolveCategoryLabelUnknownIsHardError(t *testing.T) {
	for _, label := range []string{"", "موسيقى", "unknown"} {
		_, err := ResolveCategoryLabel(label)
		require.ErrorIs(t, err, ErrUnknownCategoryLabel, "label %q", label)
	}
}
