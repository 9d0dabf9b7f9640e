package controllers

import (
	"log"
	"strings"

	"lms/backend/config"
	"lms/backend/jobs"
	"lms/backend/mail"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/permissions"
	"lms/backend/serializers"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Queue  *jobs.Queue
	Mailer mail.Mailer
	Logger *log.Logger
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, queue *jobs.Queue, mailer mail.Mailer, logger *log.Logger) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Queue: queue, Mailer: mailer, Logger: logger}
}

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,max=100" example:"Go basics"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// ListCourses godoc
// @Summary List courses
// @Description Moderators see every course, other users only their own
// @Tags courses
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	page, pageSize := utils.PageParams(c)

	query := cc.DB.Model(&models.Course{})
	if !permissions.IsModerator(user) {
		query = query.Where("owner_id = ?", user.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var courses []models.Course
	if err := query.Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	data, err := serializers.Courses(c.UserContext(), cc.DB, user.ID, courses)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Paginate(c, data, total, page, pageSize)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body CreateCourseRequest true "Course data"
// @Success 201 {object} serializers.CourseResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if !permissions.CanCreate(user) {
		return utils.Forbidden(c)
	}

	var input CreateCourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Title = strings.TrimSpace(input.Title)
	if errs := validate.Struct(&input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	course := models.Course{
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		OwnerID:     &user.ID,
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		cc.Logger.Printf("[COURSES] create course: %v", err)
		return utils.InternalServerError(c, "Could not create course")
	}

	data, err := serializers.Course(c.UserContext(), cc.DB, user.ID, &course)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Created(c, data)
}

// GetCourse godoc
// @Summary Get a course with its lessons
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} serializers.CourseResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	course, err := cc.find(c)
	if err != nil {
		return err
	}
	if !permissions.CanView(user, course) {
		return utils.Forbidden(c)
	}

	data, err := serializers.Course(c.UserContext(), cc.DB, user.ID, course)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(data)
}

// UpdateCourse godoc
// @Summary Update a course
// @Description Subscribers are notified by e-mail after a successful update
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param course body UpdateCourseRequest true "Fields to update"
// @Success 200 {object} serializers.CourseResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [patch]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	course, err := cc.find(c)
	if err != nil {
		return err
	}
	if !permissions.CanUpdate(user, course) {
		return utils.Forbidden(c)
	}

	var input UpdateCourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if errs := titleErrors(title); errs != nil {
			return utils.ValidationError(c, errs)
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Image != nil {
		updates["image"] = *input.Image
	}

	if len(updates) > 0 {
		if err := cc.DB.Model(course).Updates(updates).Error; err != nil {
			cc.Logger.Printf("[COURSES] update course %d: %v", course.ID, err)
			return utils.InternalServerError(c, "Could not update course")
		}
	}

	cc.notifySubscribers(c, course)

	data, err := serializers.Course(c.UserContext(), cc.DB, user.ID, course)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(data)
}

// DeleteCourse godoc
// @Summary Delete a course with its lessons and subscriptions
// @Tags courses
// @Param id path int true "Course ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [delete]
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	course, err := cc.find(c)
	if err != nil {
		return err
	}
	if !permissions.CanDelete(user, course) {
		return utils.Forbidden(c)
	}

	if err := cc.DB.Delete(course).Error; err != nil {
		cc.Logger.Printf("[COURSES] delete course %d: %v", course.ID, err)
		return utils.InternalServerError(c, "Could not delete course")
	}
	return utils.NoContent(c)
}

func (cc *CoursesController) notifySubscribers(c *fiber.Ctx, course *models.Course) {
	if cc.Queue == nil || cc.Mailer == nil {
		return
	}
	emails, err := services.SubscriberEmails(c.UserContext(), cc.DB, course.ID)
	if err != nil {
		cc.Logger.Printf("[COURSES] load subscribers of course %d: %v", course.ID, err)
		return
	}
	if len(emails) == 0 {
		return
	}
	queued := jobs.NotifySubscribers(cc.Queue, cc.Mailer, course.Title, emails)
	cc.Logger.Printf("[COURSES] course %d updated, %d/%d notifications queued", course.ID, queued, len(emails))
}

// find loads the course named by :id. A missing course is reported as a
// 404 error before any permission check.
func (cc *CoursesController) find(c *fiber.Ctx) (*models.Course, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, utils.MsgNotFound)
	}
	var course models.Course
	if err := cc.DB.First(&course, id).Error; err != nil {
		if isNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, utils.MsgNotFound)
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return &course, nil
}

func titleErrors(title string) map[string][]string {
	if title == "" {
		return fieldErrors("title", "This field may not be blank.")
	}
	if len([]rune(title)) > 100 {
		return fieldErrors("title", "Ensure this field has no more than 100 characters.")
	}
	return nil
}
