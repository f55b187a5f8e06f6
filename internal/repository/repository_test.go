package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/greenflash/greenflash/internal/model"
)

func createUser(t *testing.T, database *sqlx.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: "hash",
		Email:        username + "@example.com",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, NewUserRepository(database).Create(user))
	return user
}

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}
