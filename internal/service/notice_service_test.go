package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository/inmem"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

func TestNoticeListScopedByAudience(t *testing.T) {
	ctx := context.Background()
	svc := NewNoticeService(inmem.NewNoticeRepository(inmem.New()), nil, nil)

	for _, audience := range []models.NoticeAudience{
		models.AudienceStudents, models.AudienceStudentsTrainers, models.AudienceAll, models.AudienceAdminsManagers,
	} {
		_, err := svc.Create(ctx, dto.NoticeRequest{Title: string(audience), Content: "body", Audience: audience}, managerActor)
		require.NoError(t, err)
	}

	titles := func(actor models.Actor) []string {
		items, err := svc.List(ctx, 0, actor)
		require.NoError(t, err)
		out := make([]string, 0, len(items))
		for _, n := range items {
			out = append(out, n.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"STUDENTS", "STUDENTS_TRAINERS", "ALL"}, titles(studentActor))
	assert.ElementsMatch(t, []string{"STUDENTS_TRAINERS", "ALL"}, titles(trainerActor))
	assert.Len(t, titles(adminActor), 4)
}

func TestNoticeListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	svc := NewNoticeService(inmem.NewNoticeRepository(inmem.New()), nil, nil)
	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, dto.NoticeRequest{Title: title, Content: "body", Audience: models.AudienceAll}, adminActor)
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, 2, studentActor)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "third", items[0].Title)
	assert.Equal(t, "second", items[1].Title)
}

func TestNoticeCreateChecks(t *testing.T) {
	ctx := context.Background()
	svc := NewNoticeService(inmem.NewNoticeRepository(inmem.New()), nil, nil)

	_, err := svc.Create(ctx, dto.NoticeRequest{Title: "t", Content: "c", Audience: models.AudienceAll}, trainerActor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Create(ctx, dto.NoticeRequest{Title: "t", Content: "c", Audience: "EVERYONE"}, adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidValue))

	_, err = svc.Create(ctx, dto.NoticeRequest{Content: "c", Audience: models.AudienceAll}, adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.List(ctx, 0, models.Actor{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestNoticeUpdateMovesAudience(t *testing.T) {
	ctx := context.Background()
	svc := NewNoticeService(inmem.NewNoticeRepository(inmem.New()), nil, nil)
	notice, err := svc.Create(ctx, dto.NoticeRequest{Title: "exam", Content: "friday", Audience: models.AudienceAdminsManagers}, adminActor)
	require.NoError(t, err)

	items, err := svc.List(ctx, 0, studentActor)
	require.NoError(t, err)
	assert.Empty(t, items)

	updated, err := svc.Update(ctx, notice.ID, dto.NoticeRequest{Title: "exam", Content: "monday", Audience: models.AudienceStudents}, managerActor)
	require.NoError(t, err)
	assert.Equal(t, "monday", updated.Content)
	assert.Equal(t, "admin-1", updated.AuthorID)

	items, err = svc.List(ctx, 0, studentActor)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, notice.ID, adminActor))
	err = svc.Delete(ctx, notice.ID, adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Update(ctx, "missing", dto.NoticeRequest{Title: "t", Content: "c", Audience: models.AudienceAll}, adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
