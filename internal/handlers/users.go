package handlers

import (
	"errors"
	"net/http"

	"github.com/go-authgate/authd/internal/models"
	"github.com/go-authgate/authd/internal/services"

	"github.com/gin-gonic/gin"
)

// UsersHandler exposes the administrative user listing and role assignment
// endpoints.
type UsersHandler struct {
	rbac *services.RBACService
}

func NewUsersHandler(rbac *services.RBACService) *UsersHandler {
	return &UsersHandler{rbac: rbac}
}

func (h *UsersHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)
	search := c.Query("search")

	users, pagination, err := h.rbac.ListUsers(search, page, pageSize)
	if err != nil {
		internalError(c, "[RBAC] User list failed", err)
		return
	}

	results := make([]userRolesBody, 0, len(users))
	for i := range users {
		results = append(results, newUserRolesBody(&users[i]))
	}

	c.JSON(http.StatusOK, usersPageBody{
		Count:      pagination.Total,
		TotalPages: pagination.TotalPages,
		Page:       pagination.CurrentPage,
		Results:    results,
	})
}

func (h *UsersHandler) Grant(c *gin.Context) {
	h.assign(c, h.rbac.Grant)
}

func (h *UsersHandler) Revoke(c *gin.Context) {
	h.assign(c, h.rbac.Revoke)
}

func (h *UsersHandler) assign(
	c *gin.Context,
	op func(userID string, roleID int64) (*models.User, error),
) {
	roleID, ok := pathInt64(c, "role")
	if !ok {
		return
	}

	user, err := op(c.Param("id"), roleID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound),
			errors.Is(err, services.ErrRoleNotFound):
			c.JSON(http.StatusNotFound, errorBody{Error: err.Error()})
		case errors.Is(err, services.ErrRoleAlreadyGranted),
			errors.Is(err, services.ErrRoleNotGranted):
			c.JSON(http.StatusConflict, errorBody{Error: err.Error()})
		default:
			internalError(c, "[RBAC] Role assignment failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, newUserRolesBody(user))
}
