package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/internal/api/handlers"
	"github.com/octavia-ai/octavia/internal/api/middleware"
	"github.com/octavia-ai/octavia/internal/metrics"
)

type Deps struct {
	Logger *logrus.Logger

	// AuthEnabled turns on JWT identity checks. RequireRoles additionally
	// restricts admin surfaces by role claim.
	AuthEnabled  bool
	RequireRoles bool
	Auth         middleware.AuthConfig

	Report       *handlers.ReportHandler
	Concurrency  *handlers.ConcurrencyHandler
	Conversation *handlers.ConversationHandler
	Institution  *handlers.InstitutionHandler
	Student      *handlers.StudentHandler
	Resume       *handlers.ResumeHandler
	Interview    *handlers.InterviewHandler
	Job          *handlers.JobHandler
	Message      *handlers.MessageHandler
	Billing      *handlers.BillingHandler
	Analytics    *handlers.AnalyticsHandler
	WS           *handlers.InterviewWSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger(d.Logger, "/ping", "/metrics"), metrics.Middleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := r.Group("/")
	if d.AuthEnabled {
		auth.Use(middleware.JWTAuth(d.Auth))
	}
	staff := func() []gin.HandlerFunc {
		if d.AuthEnabled && d.RequireRoles {
			return []gin.HandlerFunc{middleware.RequireStaff()}
		}
		return nil
	}
	admin := func() []gin.HandlerFunc {
		if d.AuthEnabled && d.RequireRoles {
			return []gin.HandlerFunc{middleware.RequireAdmin()}
		}
		return nil
	}
	with := func(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
		return append(guards, h)
	}

	auth.GET("/generateInterviewReport", d.Report.Generate)
	auth.GET("/vapiConcurrencyUsage", with(staff(), d.Concurrency.Usage)...)
	auth.GET("/vapiConcurrencyUsage/history", with(staff(), d.Concurrency.History)...)
	auth.GET("/ws/interview/:interview_id", d.WS.InterviewWS)

	v1 := auth.Group("/api/v1")

	inst := v1.Group("/institutions")
	inst.GET("", d.Institution.List)
	inst.GET("/:id", d.Institution.Get)
	inst.POST("", with(admin(), d.Institution.Create)...)
	inst.PUT("/:id", with(staff(), d.Institution.Update)...)
	inst.DELETE("/:id", with(admin(), d.Institution.Delete)...)

	st := v1.Group("/students")
	st.GET("", with(staff(), d.Student.List)...)
	st.GET("/validate-email", d.Student.ValidateEmail)
	st.GET("/pending/:institution_id", with(staff(), d.Student.Pending)...)
	st.GET("/:id", d.Student.Get)
	st.POST("", d.Student.Create)
	st.PUT("/:id", d.Student.Update)
	st.DELETE("/:id", with(staff(), d.Student.Delete)...)
	st.POST("/:id/approve", with(staff(), d.Student.Approve)...)
	st.POST("/:id/reject", with(staff(), d.Student.Reject)...)

	res := v1.Group("/resumes")
	res.GET("", d.Resume.List)
	res.GET("/latest/:student_id", d.Resume.Latest)
	res.GET("/:id", d.Resume.Get)
	res.POST("", d.Resume.Upload)
	res.PUT("/:id/data", d.Resume.UpdateData)
	res.DELETE("/:id", d.Resume.Delete)

	iv := v1.Group("/interviews")
	iv.GET("", d.Interview.List)
	iv.GET("/upcoming/:student_id", d.Interview.Upcoming)
	iv.GET("/past/:student_id", d.Interview.Past)
	iv.GET("/:id", d.Interview.Get)
	iv.POST("", d.Interview.Schedule)
	iv.PUT("/:id", d.Interview.Update)
	iv.DELETE("/:id", d.Interview.Delete)

	results := v1.Group("/interview-results")
	results.GET("", d.Interview.Results)
	results.GET("/:id", d.Interview.Result)

	jobs := v1.Group("/jobs")
	jobs.GET("", d.Job.List)
	jobs.GET("/:id", d.Job.Get)
	jobs.POST("", with(staff(), d.Job.Create)...)
	jobs.PUT("/:id", with(staff(), d.Job.Update)...)
	jobs.DELETE("/:id", with(staff(), d.Job.Delete)...)

	apps := v1.Group("/job-applications")
	apps.GET("", d.Job.Applications)
	apps.GET("/:id", d.Job.Application)
	apps.POST("", d.Job.Apply)
	apps.PUT("/:id", with(staff(), d.Job.UpdateApplication)...)

	msg := v1.Group("/messages")
	msg.GET("", d.Message.List)
	msg.GET("/:id", d.Message.Get)
	msg.POST("", with(staff(), d.Message.Create)...)
	msg.POST("/send", with(staff(), d.Message.Send)...)
	msg.PUT("/:id", with(staff(), d.Message.Update)...)
	msg.DELETE("/:id", with(staff(), d.Message.Delete)...)

	inq := v1.Group("/contact-inquiries")
	inq.GET("", with(admin(), d.Message.Inquiries)...)
	inq.GET("/:id", with(admin(), d.Message.Inquiry)...)
	inq.POST("", d.Message.SubmitInquiry)
	inq.PUT("/:id", with(admin(), d.Message.UpdateInquiry)...)
	inq.DELETE("/:id", with(admin(), d.Message.DeleteInquiry)...)

	bill := v1.Group("/billing", staff()...)
	bill.GET("/institutions/:institution_id/payment-methods", d.Billing.PaymentMethods)
	bill.POST("/institutions/:institution_id/payment-methods/:id/default", d.Billing.SetDefault)
	bill.GET("/institutions/:institution_id/history", d.Billing.History)
	bill.GET("/institutions/:institution_id/total", d.Billing.Total)
	bill.GET("/payment-methods/:id", d.Billing.PaymentMethod)
	bill.POST("/payment-methods", d.Billing.AddPaymentMethod)
	bill.PUT("/payment-methods/:id", d.Billing.UpdatePaymentMethod)
	bill.DELETE("/payment-methods/:id", d.Billing.DeletePaymentMethod)
	bill.GET("/history/:id", d.Billing.Record)
	bill.POST("/history", d.Billing.AddRecord)
	bill.PUT("/history/:id", d.Billing.UpdateRecord)

	an := v1.Group("/analytics")
	an.GET("/resumes", with(staff(), d.Analytics.Resumes)...)
	an.GET("/interviews", with(staff(), d.Analytics.Interviews)...)
	an.GET("/institutions", with(admin(), d.Analytics.InstitutionPerformance)...)
	an.GET("/resume-views/:resume_id", d.Analytics.ResumeViews)
	an.POST("/resume-views/:resume_id", d.Analytics.RecordResumeView)
}
