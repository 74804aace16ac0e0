package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRegistrationRepository(t *testing.T) {
	db := &Connection{}
	repo := NewRegistrationRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestNewProfileRepository(t *testing.T) {
	db := &Connection{}
	repo := NewProfileRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}
