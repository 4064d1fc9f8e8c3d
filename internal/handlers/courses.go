// courses.go
//
// AgriLearn learning and community service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of agrilearn.
// agrilearn is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// agrilearn is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with agrilearn.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/agrilearn/internal/events"
	"github.com/localnerve/agrilearn/internal/middleware"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/utils"
)

// CourseHandler handles courses, modules, enrollment, progress and certificates
type CourseHandler struct {
	*Deps
}

// ListCourses handles GET /api/courses
// @Summary List courses
// @Description Paginated course catalog, newest first. A page past the end returns the first page.
// @Tags Courses
// @Produce json
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size (default 8)"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, err := services.ListCourses(h.DB, parsePage(c))
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Courses retrieved successfully", page)
}

// CreateCourse handles POST /api/courses
// @Summary Create a course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CourseInput true "Course"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var in services.CourseInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	course, err := services.CreateCourse(h.DB, middleware.ActorFrom(c), in)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusCreated, "Course created successfully", course)
}

// ListMyCourses handles GET /api/courses/admin
// @Summary List the courses created by the caller
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size (default 8)"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /courses/admin [get]
func (h *CourseHandler) ListMyCourses(c *fiber.Ctx) error {
	page, err := services.ListCreatorCourses(h.DB, middleware.ActorFrom(c), parsePage(c))
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Courses retrieved successfully", page)
}

// GetCourse handles GET /api/courses/:id
// @Summary Get a course with its modules
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	course, err := services.GetCourse(h.DB, courseID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Course retrieved successfully", course)
}

// ListModules handles GET /api/courses/:id/modules
// @Summary List a course's modules, newest first
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/modules [get]
func (h *CourseHandler) ListModules(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	modules, err := services.ListModules(h.DB, courseID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Modules retrieved successfully", modules)
}

// CreateModule handles POST /api/courses/:id/modules
// @Summary Add a module to a course
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param body body services.ModuleInput true "Module"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/modules [post]
func (h *CourseHandler) CreateModule(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.ModuleInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	module, err := services.CreateModule(h.DB, h.Scope, middleware.ActorFrom(c), courseID, in)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusCreated, "Module created successfully", module)
}

// GetModule handles GET /api/courses/:id/modules/:moduleId
// @Summary Get one module
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/modules/{moduleId} [get]
func (h *CourseHandler) GetModule(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	moduleID, err := parseID(c, "moduleId")
	if err != nil {
		return err
	}
	module, err := services.GetModule(h.DB, courseID, moduleID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Module retrieved successfully", module)
}

// UpdateModule handles PATCH /api/courses/:id/modules/:moduleId
// @Summary Update a module and recompute progress
// @Description Accepts only title, content, durationTime and isCompleted. Content edits need the
// @Description course creator or an admin; completion needs enrollment, the creator or an admin.
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param body body services.ModuleUpdate true "Changes"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/modules/{moduleId} [patch]
func (h *CourseHandler) UpdateModule(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	moduleID, err := parseID(c, "moduleId")
	if err != nil {
		return err
	}
	var update services.ModuleUpdate
	if err := parseBody(c, &update); err != nil {
		return err
	}

	actor := middleware.ActorFrom(c)
	result, err := services.UpdateModule(h.DB, h.Scope, actor, courseID, moduleID, update)
	if err != nil {
		return err
	}

	if update.IsCompleted != nil && *update.IsCompleted && result.Progress.IsCourseCompleted {
		publish(c.UserContext(), h.Events, h.Log, events.New(events.CourseCompleted, map[string]interface{}{
			"courseId": courseID,
			"userId":   actor.UserID,
			"scope":    h.Scope,
		}))
	}
	return utils.DataResponse(c, fiber.StatusOK, "Module updated successfully", result)
}

// GetProgress handles GET /api/courses/:id/progress
// @Summary The caller's progress in a course
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/progress [get]
func (h *CourseHandler) GetProgress(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	progress, err := services.GetProgress(h.DB, h.Scope, courseID, middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Progress retrieved successfully", progress)
}

// Enroll handles POST /api/courses/:id/enroll
// @Summary Enroll in a course
// @Tags Enrollment
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID := middleware.ActorFrom(c).UserID
	enrollment, err := services.Enroll(h.DB, courseID, userID, h.now())
	if err != nil {
		return err
	}
	publish(c.UserContext(), h.Events, h.Log, events.New(events.EnrollmentCreated, map[string]interface{}{
		"courseId": courseID,
		"userId":   userID,
	}))
	return utils.DataResponse(c, fiber.StatusCreated, "Enrolled successfully", enrollment)
}

// Unenroll handles DELETE /api/courses/:id/unenroll
// @Summary Leave a course
// @Tags Enrollment
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/unenroll [delete]
func (h *CourseHandler) Unenroll(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.Unenroll(h.DB, courseID, middleware.ActorFrom(c).UserID); err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Unenrolled successfully", nil)
}

// ListEnrollments handles GET /api/enrollments
// @Summary The caller's enrollments, newest first
// @Tags Enrollment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /enrollments [get]
func (h *CourseHandler) ListEnrollments(c *fiber.Ctx) error {
	enrollments, err := services.ListEnrollments(h.DB, middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Enrollments retrieved successfully", enrollments)
}

// IssueCertificate handles POST /api/courses/:id/certificate
// @Summary Issue the caller's certificate for a completed course
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct "Course not yet completed"
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct "Certificate already issued"
// @Router /courses/{id}/certificate [post]
func (h *CourseHandler) IssueCertificate(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID := middleware.ActorFrom(c).UserID
	cert, err := services.IssueCertificate(h.DB, h.Scope, courseID, userID, h.now())
	if err != nil {
		return err
	}
	publish(c.UserContext(), h.Events, h.Log, events.New(events.CertificateIssued, map[string]interface{}{
		"certificateId": cert.ID,
		"courseId":      courseID,
		"userId":        userID,
	}))
	return utils.DataResponse(c, fiber.StatusCreated, "Certificate issued successfully", cert)
}

// GetCertificate handles GET /api/courses/:id/certificate
// @Summary The caller's certificate for a course
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/certificate [get]
func (h *CourseHandler) GetCertificate(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cert, err := services.GetCertificate(h.DB, courseID, middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Certificate retrieved successfully", cert)
}

// ListCertificates handles GET /api/certificates
// @Summary The caller's certificates, newest first
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /certificates [get]
func (h *CourseHandler) ListCertificates(c *fiber.Ctx) error {
	certs, err := services.ListCertificates(h.DB, middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Certificates retrieved successfully", certs)
}
