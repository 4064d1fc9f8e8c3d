package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/agrilearn/internal/middleware"
	"github.com/localnerve/agrilearn/internal/models"
)

// RegisterRoutes mounts /healthz and every /api route on app
func RegisterRoutes(app *fiber.App, d *Deps) {
	auth := &AuthHandler{d}
	courses := &CourseHandler{d}
	feed := &FeedHandler{d}
	community := &CommunityHandler{d}
	admin := &AdminHandler{d}
	market := &MarketplaceHandler{d}
	health := &HealthHandler{d}

	app.Get("/healthz", health.Healthz)

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	session := middleware.Authenticate(d.Signer, true)
	optional := middleware.Authenticate(d.Signer, false)
	adminOnly := middleware.RequireAdmin()

	// Public
	api.Post("/auth/register", auth.Register)
	api.Post("/auth/login", auth.Login)
	api.Get("/courses", courses.ListCourses)
	api.Get("/investors", admin.ListInvestors)
	api.Get("/products", market.ListProducts)
	api.Get("/popularposts", optional, feed.PopularPosts)

	api.Get("/profile", session, auth.Profile)

	// Courses and modules. /courses/admin is registered before /courses/:id.
	api.Post("/courses", session, adminOnly, courses.CreateCourse)
	api.Get("/courses/admin", session, adminOnly, courses.ListMyCourses)
	api.Get("/courses/:id", courses.GetCourse)
	api.Get("/courses/:id/modules", session, courses.ListModules)
	api.Post("/courses/:id/modules", session, adminOnly, courses.CreateModule)
	api.Get("/courses/:id/modules/:moduleId", session, courses.GetModule)
	api.Patch("/courses/:id/modules/:moduleId", session, courses.UpdateModule)
	api.Get("/courses/:id/progress", session, courses.GetProgress)
	api.Post("/courses/:id/enroll", session, courses.Enroll)
	api.Delete("/courses/:id/unenroll", session, courses.Unenroll)
	api.Post("/courses/:id/certificate", session, courses.IssueCertificate)
	api.Get("/courses/:id/certificate", session, courses.GetCertificate)
	api.Get("/certificates", session, courses.ListCertificates)
	api.Get("/enrollments", session, courses.ListEnrollments)

	// Discussion feed
	api.Get("/courses/:id/posts", session, feed.GetFeed)
	api.Post("/courses/:id/posts", session, feed.CreatePost)
	api.Post("/courses/:id/posts/:postId/likes", session, feed.TogglePostLike)
	api.Post("/courses/:id/posts/:postId/comments", session, feed.CreateComment)
	api.Post("/courses/:id/posts/:postId/comments/:commentId/likes", session, feed.ToggleCommentLike)
	api.Get("/courses/:id/posts/:postId/comments/:commentId/replies", session, feed.ListReplies)
	api.Post("/courses/:id/posts/:postId/comments/:commentId/replies", session, feed.CreateReply)

	// Community
	api.Post("/donations/apply", session, community.ApplyForDonation)
	api.Get("/donations/apply/investor", session, community.ListDonations)
	api.Patch("/donations/apply/investor/:id", session, community.ReviewDonation)
	api.Get("/livesessions/all", session, community.ListLiveSessions)
	api.Post("/livesessions", session, community.CreateLiveSession)

	// Administration
	api.Get("/roles", session, admin.ListRoles)
	api.Post("/roles", session, adminOnly, admin.CreateRole)
	api.Get("/users", session, adminOnly, admin.ListUsers)

	// Marketplace
	api.Get("/products/mine", session, market.ListMyProducts)
	api.Post("/products", session, middleware.RequireUserType(models.UserTypeFarmer), market.CreateProduct)
}
