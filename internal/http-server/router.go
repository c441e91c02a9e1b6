// Package httpserver REST API администратора.
package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	courseEnrollments "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/courses/enrollments"
	courseList "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/courses/list"
	courseSave "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/courses/save"
	courseSessions "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/courses/sessions"
	discountCreate "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/discounts/create"
	discountList "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/discounts/list"
	enrollmentConsume "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/enrollments/consume"
	importStudents "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/imports/students"
	invoiceCreate "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/invoices/create"
	invoiceGet "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/invoices/get"
	invoicePayment "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/invoices/payment"
	priceRuleCreate "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/price_rules/create"
	priceRuleList "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/price_rules/list"
	pricingQuote "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/pricing/quote"
	sessionUpdate "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/sessions/update"
	studentList "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/students/list"
	studentSave "github.com/Freeeeeet/tutoring_admin/internal/http-server/handlers/students/save"
	mwLogger "github.com/Freeeeeet/tutoring_admin/internal/http-server/middleware/logger"
	"github.com/Freeeeeet/tutoring_admin/internal/http-server/response"
	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

// Services сервисы, обслуживающие маршруты API
type Services struct {
	Accounts    *service.AccountService
	Courses     *service.CourseService
	Sessions    *service.SessionService
	Pricing     *service.PricingService
	Invoices    *service.InvoiceService
	Enrollments *service.EnrollmentService
	Imports     *service.ImportService
}

// NewRouter собирает маршруты API
func NewRouter(log *zap.Logger, svc Services, timeout time.Duration) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	if timeout > 0 {
		router.Use(middleware.Timeout(timeout))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, r, http.StatusNotFound, response.NotFound, "route not found")
	})

	// Students
	router.Get("/students", studentList.New(log, svc.Accounts))
	router.Post("/students", studentSave.New(log, svc.Accounts))
	router.Post("/imports/students", importStudents.New(log, svc.Imports))

	// Courses
	router.Get("/courses", courseList.New(log, svc.Courses))
	router.Post("/courses", courseSave.New(log, svc.Courses))
	router.Get("/courses/{id}/sessions", courseSessions.New(log, svc.Sessions))
	router.Get("/courses/{id}/enrollments", courseEnrollments.New(log, svc.Enrollments))
	router.Put("/sessions/{id}", sessionUpdate.New(log, svc.Sessions))
	router.Post("/enrollments/{id}/consume", enrollmentConsume.New(log, svc.Enrollments))

	// Pricing
	router.Post("/pricing/quote", pricingQuote.New(log, svc.Pricing))
	router.Get("/price-rules", priceRuleList.New(log, svc.Pricing))
	router.Post("/price-rules", priceRuleCreate.New(log, svc.Pricing))
	router.Get("/discounts", discountList.New(log, svc.Pricing))
	router.Post("/discounts", discountCreate.New(log, svc.Pricing))

	// Invoices
	router.Post("/invoices", invoiceCreate.New(log, svc.Invoices))
	router.Get("/invoices/{id}", invoiceGet.New(log, svc.Invoices))
	router.Post("/invoices/{id}/payments", invoicePayment.New(log, svc.Invoices))

	return router
}
