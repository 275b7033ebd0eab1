package services

import "errors"

var (
	// Credential errors

	// ErrLoginTaken is returned when the requested login is already in use
	ErrLoginTaken = errors.New("user with this login already exists")

	// ErrInvalidCredentials is returned on a failed login attempt
	ErrInvalidCredentials = errors.New("user with these credentials does not exist")

	// ErrSamePassword is returned when a credential change reuses the
	// current password
	ErrSamePassword = errors.New("new password matches the current one")

	// ErrUserNotFound is returned when the requested user does not exist
	ErrUserNotFound = errors.New("user not found")

	// RBAC errors

	// ErrRoleExists is returned when the requested role name is taken
	ErrRoleExists = errors.New("role with this name already exists")

	// ErrRoleNotFound is returned when the requested role does not exist
	ErrRoleNotFound = errors.New("role not found")

	// ErrRoleAlreadyGranted is returned when granting a role the user holds
	ErrRoleAlreadyGranted = errors.New("role already granted to this user")

	// ErrRoleNotGranted is returned when revoking a role the user lacks
	ErrRoleNotGranted = errors.New("user does not have this role")

	// ErrInvalidRoleName is returned for an empty or over-long role name
	ErrInvalidRoleName = errors.New("role name must be 1-32 characters")

	// Federated sign-in errors

	// ErrIdentityAttached is returned when the provider account is already
	// linked to this user
	ErrIdentityAttached = errors.New("provider account already attached")

	// ErrIdentityNotLinked is returned when detaching a provider the user
	// never linked
	ErrIdentityNotLinked = errors.New("user does not have this provider account")
)
