package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-authgate/authd/internal/services"

	"github.com/gin-gonic/gin"
)

// RolesHandler exposes role CRUD for administrators.
type RolesHandler struct {
	rbac *services.RBACService
}

func NewRolesHandler(rbac *services.RBACService) *RolesHandler {
	return &RolesHandler{rbac: rbac}
}

type roleRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *RolesHandler) List(c *gin.Context) {
	roles, err := h.rbac.ListRoles()
	if err != nil {
		internalError(c, "[RBAC] Role list failed", err)
		return
	}

	bodies := make([]roleBody, 0, len(roles))
	for i := range roles {
		bodies = append(bodies, newRoleBody(&roles[i]))
	}
	c.JSON(http.StatusOK, bodies)
}

func (h *RolesHandler) Create(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	role, err := h.rbac.CreateRole(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRoleName):
			c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		case errors.Is(err, services.ErrRoleExists):
			c.JSON(http.StatusConflict, errorBody{Error: err.Error()})
		default:
			internalError(c, "[RBAC] Role create failed", err)
		}
		return
	}

	c.JSON(http.StatusCreated, newRoleBody(role))
}

func (h *RolesHandler) Rename(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	role, err := h.rbac.RenameRole(id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRoleName):
			c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		case errors.Is(err, services.ErrRoleNotFound):
			c.JSON(http.StatusNotFound, errorBody{Error: err.Error()})
		case errors.Is(err, services.ErrRoleExists):
			c.JSON(http.StatusConflict, errorBody{Error: err.Error()})
		default:
			internalError(c, "[RBAC] Role rename failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, newRoleBody(role))
}

func (h *RolesHandler) Delete(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	if err := h.rbac.DeleteRole(id); err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			c.JSON(http.StatusNotFound, errorBody{Error: err.Error()})
			return
		}
		internalError(c, "[RBAC] Role delete failed", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func pathInt64(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid " + key})
		return 0, false
	}
	return id, true
}
