package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"relation-service/internal/mocks"
	"relation-service/internal/models"
)

func TestUserServiceBriefs_FillsUnknownAndDedupes(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	svc := NewUserService(repo)

	repo.On("GetBriefs", mock.Anything, []int64{1, 2}).
		Return(map[int64]models.User{1: {ID: 1, Username: "ann"}}, nil)

	briefs, err := svc.Briefs(context.Background(), []int64{1, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, "ann", briefs[1].Username)
	assert.Equal(t, models.User{ID: 2}, briefs[2])
}

func TestUserServiceExists_NonPositiveID(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	svc := NewUserService(repo)

	ok, err := svc.Exists(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, ok)
	repo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
}
