package store

import (
	"time"

	"github.com/go-authgate/authd/internal/models"

	"github.com/google/uuid"
)

// Session operations. Sessions are an append-only login history log: the
// store exposes create and list, nothing updates or deletes them.

func (s *Store) CreateSession(userID, userAgent string) (*models.Session, error) {
	session := &models.Session{
		ID:        uuid.New().String(),
		AuthDate:  time.Now().UTC(),
		UserID:    userID,
		UserAgent: userAgent,
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, translate(err)
	}
	return session, nil
}

// ListSessionsByUser returns a page of the user's login history, newest
// first.
func (s *Store) ListSessionsByUser(
	userID string,
	params PaginationParams,
) ([]models.Session, PaginationResult, error) {
	query := s.db.Model(&models.Session{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var sessions []models.Session
	err := query.Order("auth_date DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&sessions).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return sessions, CalculatePagination(total, params.Page, params.PageSize), nil
}
