package store

import (
	"github.com/go-authgate/authd/internal/models"
)

// LinkedIdentity operations

func (s *Store) CreateLinkedIdentity(identity *models.LinkedIdentity) error {
	return translate(s.db.Create(identity).Error)
}

// GetLinkedIdentity finds a link by the provider-assigned subject id and
// provider name pair.
func (s *Store) GetLinkedIdentity(subjectID, provider string) (*models.LinkedIdentity, error) {
	var identity models.LinkedIdentity
	err := s.db.Where("subject_id = ? AND provider = ?", subjectID, provider).
		First(&identity).Error
	if err != nil {
		return nil, translate(err)
	}
	return &identity, nil
}

// GetLinkedIdentityByUserAndProvider finds a link by local user and provider.
func (s *Store) GetLinkedIdentityByUserAndProvider(
	userID, provider string,
) (*models.LinkedIdentity, error) {
	var identity models.LinkedIdentity
	err := s.db.Where("user_id = ? AND provider = ?", userID, provider).
		First(&identity).Error
	if err != nil {
		return nil, translate(err)
	}
	return &identity, nil
}

// ListLinkedIdentitiesByUser returns all provider links for a user.
func (s *Store) ListLinkedIdentitiesByUser(userID string) ([]models.LinkedIdentity, error) {
	var identities []models.LinkedIdentity
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&identities).Error
	return identities, err
}

func (s *Store) DeleteLinkedIdentity(identity *models.LinkedIdentity) error {
	return translate(s.db.Delete(identity).Error)
}
