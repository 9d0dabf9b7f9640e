package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"lms/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUsersListAndGet(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@lms.test", false)
	env.createUser(t, "m@lms.test", true)
	token := env.token(t, user)

	status, raw := env.do(t, http.MethodGet, "/api/users/", token, nil)
	require.Equal(t, http.StatusOK, status)
	var users []map[string]interface{}
	decode(t, raw, &users)
	assert.Len(t, users, 2)

	status, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/", user.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "a@lms.test")

	status, raw = env.do(t, http.MethodGet, "/api/users/999/", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not found.", detail(t, raw))
}

func TestUpdateOwnProfileOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@lms.test", false)
	other := env.createUser(t, "b@lms.test", false)
	token := env.token(t, user)

	status, raw := env.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/", user.ID), token, map[string]string{
		"city":     "Sochi",
		"password": "newpassword",
	})
	require.Equal(t, http.StatusOK, status, string(raw))

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	assert.Equal(t, "Sochi", stored.City)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpassword")))

	status, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/", other.ID), token, map[string]string{"city": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = env.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/", user.ID), token, map[string]string{"password": "short"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), `"password"`)
}

func TestDeleteOwnAccountOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@lms.test", false)
	other := env.createUser(t, "b@lms.test", false)
	token := env.token(t, user)

	status, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d/", other.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	course := models.Course{Title: "owned", OwnerID: &user.ID}
	require.NoError(t, env.db.Create(&course).Error)

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d/", user.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	var count int64
	env.db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count)
	assert.Zero(t, count)

	require.NoError(t, env.db.First(&course, course.ID).Error)
	assert.Nil(t, course.OwnerID)
}
