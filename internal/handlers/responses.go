package handlers

import (
	"time"

	"github.com/go-authgate/authd/internal/models"
)

type errorBody struct {
	Error string `json:"error"`
}

type resultBody struct {
	Result string `json:"result"`
}

type userBody struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

type roleBody struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type historyItem struct {
	UserAgent string    `json:"user_agent"`
	AuthDate  time.Time `json:"auth_date"`
}

type userRolesBody struct {
	User  userBody   `json:"user"`
	Roles []roleBody `json:"roles"`
}

type usersPageBody struct {
	Count      int64           `json:"count"`
	TotalPages int             `json:"total_pages"`
	Page       int             `json:"page"`
	Results    []userRolesBody `json:"results"`
}

func newUserBody(user *models.User) userBody {
	return userBody{ID: user.ID, Login: user.Login}
}

func newRoleBody(role *models.Role) roleBody {
	return roleBody{ID: role.ID, Name: role.Name}
}

func newUserRolesBody(user *models.User) userRolesBody {
	roles := make([]roleBody, 0, len(user.Roles))
	for i := range user.Roles {
		roles = append(roles, newRoleBody(&user.Roles[i]))
	}
	return userRolesBody{User: newUserBody(user), Roles: roles}
}
