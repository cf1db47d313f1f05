package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/config"
	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/handler"
	"github.com/manara-platform/manara-api/internal/middleware"
	"github.com/manara-platform/manara-api/internal/models"
	"github.com/manara-platform/manara-api/internal/repository"
	"github.com/manara-platform/manara-api/internal/router"
	"github.com/manara-platform/manara-api/internal/service"
)

// headerAuth substitutes the JWT middleware: identity comes from test
// headers instead of a signed token.
func headerAuth(c *fiber.Ctx) error {
	if user := c.Get("X-Test-User"); user != "" {
		c.Locals("user_id", user)
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	if c.Get("X-Test-Banned") == "true" {
		c.Locals("user_banned", true)
	}
	return c.Next()
}

func setupPlatformApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TeacherProfile{},
		&models.Subject{},
		&models.TeacherAssignment{},
		&models.Subscription{},
		&models.TeacherChoice{},
		&models.Notification{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	userRepo := repository.NewUserRepository(db)

	paymentService := service.NewPaymentService("https://pay.test/{subject}/{grade}?student={student_id}&teacher={teacher_id}", logger)
	entitlementService := service.NewEntitlementService(userRepo, subscriptionRepo, logger, time.Now)
	teacherService := service.NewTeacherDirectoryService(teacherRepo, paymentService, nil, time.Minute, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, nil, "", nil, validate, logger)
	expiryService := service.NewExpiryService(subscriptionRepo, notificationRepo, notificationService, logger, time.Now)
	adminService := service.NewAdminService(userRepo, subscriptionRepo, teacherRepo, validate, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "Manara Test", JWTSecret: "secret"}, router.Dependencies{
		EntitlementHandler:  handler.NewEntitlementHandler(entitlementService, logger),
		TeacherHandler:      handler.NewTeacherHandler(teacherService, logger),
		CatalogHandler:      handler.NewCatalogHandler(subjectRepo, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, time.Second),
		AdminHandler:        handler.NewAdminHandler(adminService, notificationService, logger),
		ExpiryJobHandler:    handler.NewExpiryJobHandler(expiryService, "job-secret", logger),
		JWTMiddleware:       headerAuth,
	})

	return app, db
}

func seedPlatform(t *testing.T, db *gorm.DB) models.Subject {
	t.Helper()

	users := []models.User{
		{ID: "student-1", Email: "student@manara.test", DisplayName: "سارة", Role: models.RoleStudent},
		{ID: "teacher-1", Email: "teacher@manara.test", DisplayName: "أستاذ كريم", Role: models.RoleTeacher},
		{ID: "admin-1", Email: "admin@manara.test", DisplayName: "Admin", Role: models.RoleAdmin},
	}
	for _, user := range users {
		require.NoError(t, db.Create(&user).Error)
	}

	require.NoError(t, db.Create(&models.TeacherProfile{UserID: "teacher-1", Bio: "math teacher", IsApproved: false}).Error)
	require.NoError(t, db.Create(&models.TeacherAssignment{TeacherID: "teacher-1", Category: "math", Stage: "preparatory", Grade: 8}).Error)

	subject := models.Subject{Category: "math", Stage: "preparatory", Grade: 8, Name: "الرياضيات"}
	require.NoError(t, db.Create(&subject).Error)
	return subject
}

func doJSON(t *testing.T, app *fiber.App, method, path, user, role string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
		req.Header.Set("X-Test-Role", role)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
}

func TestSubscriptionLifecycleControlsAccess(t *testing.T) {
	app, db := setupPlatformApp(t)
	subject := seedPlatform(t, db)

	subjectPath := "/api/v1/entitlements/subjects/" + strconv.FormatUint(uint64(subject.ID), 10) + "/access"

	// No subscription yet.
	resp := doJSON(t, app, http.MethodGet, subjectPath, "student-1", "student", nil)
	var access dto.EntitlementResponse
	decodeData(t, resp, &access)
	require.False(t, access.Allowed)

	// Admin confirms a payment and creates the subscription.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/admin/subscriptions", "admin-1", "admin", dto.SubscriptionCreateRequest{
		StudentID: "student-1",
		SubjectID: subject.ID,
		StartDate: time.Now().UTC().Add(-time.Hour),
		EndDate:   time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.SubscriptionResponse
	decodeData(t, resp, &created)

	resp = doJSON(t, app, http.MethodGet, subjectPath, "student-1", "student", nil)
	decodeData(t, resp, &access)
	require.True(t, access.Allowed)

	// Deactivation is a hard override regardless of dates.
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/admin/subscriptions/"+strconv.FormatUint(uint64(created.ID), 10)+"/state", "admin-1", "admin", dto.SubscriptionStateRequest{Active: false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, subjectPath, "student-1", "student", nil)
	decodeData(t, resp, &access)
	require.False(t, access.Allowed)
}

func TestAdminBanOverridesActiveSubscription(t *testing.T) {
	app, db := setupPlatformApp(t)
	subject := seedPlatform(t, db)

	subjectPath := "/api/v1/entitlements/subjects/" + strconv.FormatUint(uint64(subject.ID), 10) + "/access"

	resp := doJSON(t, app, http.MethodPost, "/api/v1/admin/subscriptions", "admin-1", "admin", dto.SubscriptionCreateRequest{
		StudentID: "student-1",
		SubjectID: subject.ID,
		StartDate: time.Now().UTC().Add(-time.Hour),
		EndDate:   time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var access dto.EntitlementResponse
	resp = doJSON(t, app, http.MethodGet, subjectPath, "student-1", "student", nil)
	decodeData(t, resp, &access)
	require.True(t, access.Allowed)

	// The ban lands on the account record, so it bites even though the
	// session still claims an unbanned student.
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/admin/users/student-1/ban", "admin-1", "admin", dto.BanRequest{Banned: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, subjectPath, "student-1", "student", nil)
	decodeData(t, resp, &access)
	require.False(t, access.Allowed)
	require.Equal(t, service.ReasonBanned, access.Reason)

	// Lifting the ban restores the subscription-backed access.
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/admin/users/student-1/ban", "admin-1", "admin", dto.BanRequest{Banned: false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, subjectPath, "student-1", "student", nil)
	decodeData(t, resp, &access)
	require.True(t, access.Allowed)
}

func TestTeacherSelectionRequiresApproval(t *testing.T) {
	app, db := setupPlatformApp(t)
	seedPlatform(t, db)

	selectReq := dto.TeacherSelectRequest{
		TeacherID:     "teacher-1",
		CategoryLabel: "رياضيات",
		Stage:         "preparatory",
		Grade:         8,
	}

	// Unapproved profile blocks selection.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/teachers/select", "student-1", "student", selectReq)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/admin/teachers/teacher-1/approval", "admin-1", "admin", dto.TeacherApprovalRequest{Approved: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/teachers/select", "student-1", "student", selectReq)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var choice dto.TeacherChoiceResponse
	decodeData(t, resp, &choice)
	require.Equal(t, "teacher-1", choice.TeacherID)
	require.Equal(t, "math", choice.Category)
	require.Contains(t, choice.PaymentLink, "student=student-1")
	require.Contains(t, choice.PaymentLink, "teacher=teacher-1")

	// The approved teacher now appears in the directory.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/teachers/?category=%D8%B1%D9%8A%D8%A7%D8%B6%D9%8A%D8%A7%D8%AA&stage=preparatory&grade=8", "student-1", "student", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var teachers []dto.EligibleTeacherResponse
	decodeData(t, resp, &teachers)
	require.Len(t, teachers, 1)
	require.Equal(t, "teacher-1", teachers[0].TeacherID)
	require.Equal(t, []int{8}, teachers[0].Grades)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	app, db := setupPlatformApp(t)
	seedPlatform(t, db)

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/admin/users/student-1/ban", "student-1", "student", dto.BanRequest{Banned: true})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestBroadcastReachesStudentList(t *testing.T) {
	app, db := setupPlatformApp(t)
	seedPlatform(t, db)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/admin/notifications", "admin-1", "admin", dto.NotificationBroadcastRequest{
		Title:   "إعلان",
		Message: "تم فتح باب الاشتراك للفصل الجديد",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/notifications/", "student-1", "student", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var notifications []dto.NotificationResponse
	decodeData(t, resp, &notifications)
	require.Len(t, notifications, 1)
	require.True(t, notifications[0].Broadcast)
	require.Equal(t, "إعلان", notifications[0].Title)
}

func TestExpiryJobCreatesNotificationsOnce(t *testing.T) {
	app, db := setupPlatformApp(t)
	subject := seedPlatform(t, db)

	require.NoError(t, db.Create(&models.Subscription{
		StudentID: "student-1",
		SubjectID: subject.ID,
		StartDate: time.Now().UTC().Add(-30 * 24 * time.Hour),
		EndDate:   time.Now().UTC().Add(6*24*time.Hour + time.Hour),
		IsActive:  true,
	}).Error)

	runJob := func() dto.ExpiryRunResponse {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/subscription-expiry", nil)
		req.Header.Set("X-Job-Token", "job-secret")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		var result dto.ExpiryRunResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		return result
	}

	first := runJob()
	require.True(t, first.Success)
	require.Equal(t, 1, first.NotificationsSent)
	require.Equal(t, 1, first.SubscriptionsChecked)

	// Second run on the same day must not duplicate the notice.
	second := runJob()
	require.True(t, second.Success)
	require.Equal(t, 0, second.NotificationsSent)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
