package controllers

import (
	"log"
	"strings"

	"lms/backend/config"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/permissions"
	"lms/backend/serializers"
	"lms/backend/utils"
	"lms/backend/validators"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LessonsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewLessonsController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *LessonsController {
	return &LessonsController{DB: db, Cfg: cfg, Logger: logger}
}

type CreateLessonRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description"`
	Image       string `json:"image"`
	VideoLink   string `json:"video_link" validate:"omitempty,max=250,youtube" example:"https://youtube.com/watch?v=..."`
	Course      uint   `json:"course" validate:"required"`
}

type UpdateLessonRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	VideoLink   *string `json:"video_link"`
}

// ListLessons godoc
// @Summary List lessons
// @Tags lessons
// @Produce json
// @Param course query int false "Course ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /lessons [get]
func (lc *LessonsController) ListLessons(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	page, pageSize := utils.PageParams(c)

	query := lc.DB.Model(&models.Lesson{})
	if !permissions.IsModerator(user) {
		query = query.Where("owner_id = ?", user.ID)
	}
	if courseID := c.QueryInt("course", 0); courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var lessons []models.Lesson
	if err := query.Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&lessons).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Paginate(c, serializers.Lessons(lessons), total, page, pageSize)
}

// CreateLesson godoc
// @Summary Create a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Param lesson body CreateLessonRequest true "Lesson data"
// @Success 201 {object} serializers.LessonResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons [post]
func (lc *LessonsController) CreateLesson(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if !permissions.CanCreate(user) {
		return utils.Forbidden(c)
	}

	var input CreateLessonRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Title = strings.TrimSpace(input.Title)
	if errs := validate.Struct(&input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var count int64
	if err := lc.DB.Model(&models.Course{}).Where("id = ?", input.Course).Count(&count).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if count == 0 {
		return utils.ValidationError(c, fieldErrors("course", "Invalid pk - object does not exist."))
	}

	lesson := models.Lesson{
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		VideoLink:   input.VideoLink,
		CourseID:    input.Course,
		OwnerID:     &user.ID,
	}
	if err := lc.DB.Create(&lesson).Error; err != nil {
		lc.Logger.Printf("[LESSONS] create lesson: %v", err)
		return utils.InternalServerError(c, "Could not create lesson")
	}
	return utils.Created(c, serializers.Lesson(&lesson))
}

// GetLesson godoc
// @Summary Get a lesson
// @Tags lessons
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} serializers.LessonResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id} [get]
func (lc *LessonsController) GetLesson(c *fiber.Ctx) error {
	lesson, err := lc.find(c)
	if err != nil {
		return err
	}
	if !permissions.CanView(middleware.CurrentUser(c), lesson) {
		return utils.Forbidden(c)
	}
	return c.JSON(serializers.Lesson(lesson))
}

// UpdateLesson godoc
// @Summary Update a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param lesson body UpdateLessonRequest true "Fields to update"
// @Success 200 {object} serializers.LessonResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id} [patch]
func (lc *LessonsController) UpdateLesson(c *fiber.Ctx) error {
	lesson, err := lc.find(c)
	if err != nil {
		return err
	}
	if !permissions.CanUpdate(middleware.CurrentUser(c), lesson) {
		return utils.Forbidden(c)
	}

	var input UpdateLessonRequest
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
	if input.VideoLink != nil {
		link := *input.VideoLink
		if link != "" {
			if len([]rune(link)) > 250 {
				return utils.ValidationError(c, fieldErrors("video_link", "Ensure this field has no more than 250 characters."))
			}
			if err := validators.ValidateVideoLink(link); err != nil {
				return utils.ValidationError(c, fieldErrors("video_link", err.Error()))
			}
		}
		updates["video_link"] = link
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Image != nil {
		updates["image"] = *input.Image
	}

	if len(updates) > 0 {
		if err := lc.DB.Model(lesson).Updates(updates).Error; err != nil {
			lc.Logger.Printf("[LESSONS] update lesson %d: %v", lesson.ID, err)
			return utils.InternalServerError(c, "Could not update lesson")
		}
	}
	return c.JSON(serializers.Lesson(lesson))
}

// DeleteLesson godoc
// @Summary Delete a lesson
// @Tags lessons
// @Param id path int true "Lesson ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id} [delete]
func (lc *LessonsController) DeleteLesson(c *fiber.Ctx) error {
	lesson, err := lc.find(c)
	if err != nil {
		return err
	}
	if !permissions.CanDelete(middleware.CurrentUser(c), lesson) {
		return utils.Forbidden(c)
	}

	if err := lc.DB.Delete(lesson).Error; err != nil {
		lc.Logger.Printf("[LESSONS] delete lesson %d: %v", lesson.ID, err)
		return utils.InternalServerError(c, "Could not delete lesson")
	}
	return utils.NoContent(c)
}

func (lc *LessonsController) find(c *fiber.Ctx) (*models.Lesson, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, utils.MsgNotFound)
	}
	var lesson models.Lesson
	if err := lc.DB.First(&lesson, id).Error; err != nil {
		if isNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, utils.MsgNotFound)
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return &lesson, nil
}
