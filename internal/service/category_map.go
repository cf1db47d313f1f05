package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategoryLabel marks a registration-form label with no catalog
// mapping. It must never degrade into a match-all filter.
var ErrUnknownCategoryLabel = errors.New("unknown category label")

// CategoryMapping binds a student-facing label to the catalog's internal
// category key and canonical subject display name.
type CategoryMapping struct {
	Key         string
	SubjectName string
}

// categoryByLabel is the fixed lookup from every label the registration form
// can produce to the catalog key. The languages group splits into
// per-language keys because the catalog stores per-language subject rows.
// Canonical keys map to themselves so already-normalized input stays stable.
var categoryByLabel = map[string]CategoryMapping{
	"لغة عربية":        {Key: "arabic", SubjectName: "اللغة العربية"},
	"لغة إنجليزية":     {Key: "english", SubjectName: "اللغة الإنجليزية"},
	"لغة فرنسية":       {Key: "french", SubjectName: "اللغة الفرنسية"},
	"لغة ألمانية":      {Key: "german", SubjectName: "اللغة الألمانية"},
	"لغة إيطالية":      {Key: "italian", SubjectName: "اللغة الإيطالية"},
	"لغة إسبانية":      {Key: "spanish", SubjectName: "اللغة الإسبانية"},
	"رياضيات":          {Key: "math", SubjectName: "الرياضيات"},
	"علوم":             {Key: "science", SubjectName: "العلوم"},
	"فيزياء":           {Key: "physics", SubjectName: "الفيزياء"},
	"كيمياء":           {Key: "chemistry", SubjectName: "الكيمياء"},
	"أحياء":            {Key: "biology", SubjectName: "الأحياء"},
	"جيولوجيا":         {Key: "geology", SubjectName: "الجيولوجيا"},
	"دراسات اجتماعية":  {Key: "social_studies", SubjectName: "الدراسات الاجتماعية"},
	"تاريخ":            {Key: "history", SubjectName: "التاريخ"},
	"جغرافيا":          {Key: "geography", SubjectName: "الجغرافيا"},
	"فلسفة":            {Key: "philosophy", SubjectName: "الفلسفة"},
	"علم نفس واجتماع":  {Key: "psychology", SubjectName: "علم النفس والاجتماع"},
	"تربية دينية":      {Key: "religion", SubjectName: "التربية الدينية"},
	"arabic":           {Key: "arabic", SubjectName: "اللغة العربية"},
	"english":          {Key: "english", SubjectName: "اللغة الإنجليزية"},
	"french":           {Key: "french", SubjectName: "اللغة الفرنسية"},
	"german":           {Key: "german", SubjectName: "اللغة الألمانية"},
	"italian":          {Key: "italian", SubjectName: "اللغة الإيطالية"},
	"spanish":          {Key: "spanish", SubjectName: "اللغة الإسبانية"},
	"math":             {Key: "math", SubjectName: "الرياضيات"},
	"science":          {Key: "science", SubjectName: "العلوم"},
	"physics":          {Key: "physics", SubjectName: "الفيزياء"},
	"chemistry":        {Key: "chemistry", SubjectName: "الكيمياء"},
	"biology":          {Key: "biology", SubjectName: "الأحياء"},
	"geology":          {Key: "geology", SubjectName: "الجيولوجيا"},
	"social_studies":   {Key: "social_studies", SubjectName: "الدراسات الاجتماعية"},
	"history":          {Key: "history", SubjectName: "التاريخ"},
	"geography":        {Key: "geography", SubjectName: "الجغرافيا"},
	"philosophy":       {Key: "philosophy", SubjectName: "الفلسفة"},
	"psychology":       {Key: "psychology", SubjectName: "علم النفس والاجتماع"},
	"religion":         {Key: "religion", SubjectName: "التربية الدينية"},
}

// ResolveCategoryLabel maps a form label to its catalog mapping. Unmapped
// labels, the empty string included, are a hard error.
func ResolveCategoryLabel(label string) (CategoryMapping, error) {
	mapping, ok := categoryByLabel[strings.TrimSpace(label)]
	if !ok {
		return CategoryMapping{}, fmt.Errorf("%w: %q", ErrUnknownCategoryLabel, label)
	}

	return mapping, nil
}
