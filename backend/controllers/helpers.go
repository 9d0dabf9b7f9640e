package controllers

import (
	"errors"
	"strconv"

	"lms/backend/validators"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validators.New()

// paramID reads a positive numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// fieldErrors builds a single-field validation error body.
func fieldErrors(field, message string) map[string][]string {
	return map[string][]string{field: {message}}
}
