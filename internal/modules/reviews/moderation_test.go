package reviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/modules/modulestest"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	env  *modulestest.Env
	db   *gorm.DB
	subs *SubmissionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := modulestest.New(t, (&Module{}).Models()...)
	return &fixture{
		env:  env,
		db:   env.Deps.DB,
		subs: NewSubmissionService(env.Deps.DB, env.Deps.Audit, env.Deps.Storage),
	}
}

func (f *fixture) submit(t *testing.T, name string, images ...string) *ReviewSubmission {
	t.Helper()
	sub, err := f.subs.Submit(context.Background(), SubmissionInput{
		ReviewerName:    name,
		ReviewerEmail:   "reviewer@example.com",
		StarRating:      5,
		ServiceCategory: "Cleaning",
		ReviewText:      "Spotless work.",
	}, images)
	require.NoError(t, err)
	return sub
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestApproveJaneExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub := f.submit(t, "Jane", "/uploads/reviews/a.jpg", "/uploads/reviews/b.jpg")
	assert.Equal(t, StatusPending, sub.Status)

	res, err := f.subs.Approve(ctx, sub.ID, nil, "10.0.0.1")
	require.NoError(t, err)

	assert.EqualValues(t, 1, f.count(t, &Review{}))
	assert.EqualValues(t, 2, f.count(t, &ReviewImage{}))

	review := res.Review
	require.NotNil(t, review.ScreenshotURL)
	assert.Equal(t, "/uploads/reviews/a.jpg", *review.ScreenshotURL)
	assert.Equal(t, "Jane", review.ReviewerName)
	assert.Equal(t, 5, review.StarRating)
	require.NotNil(t, review.Tag)
	assert.Equal(t, "Cleaning", *review.Tag)
	assert.True(t, review.IsPublished)
	assert.False(t, review.IsFeatured)

	stored, err := NewReviewService(f.db, f.env.Deps.Audit, f.env.Deps.Storage).Get(ctx, review.ID)
	require.NoError(t, err)
	require.Len(t, stored.Images, 2)
	assert.Equal(t, "/uploads/reviews/a.jpg", stored.Images[0].ImageURL)
	assert.Equal(t, "/uploads/reviews/b.jpg", stored.Images[1].ImageURL)

	got, err := f.subs.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.NotNil(t, got.ReviewedAt)
	require.NotNil(t, got.ReviewID)
	assert.Equal(t, review.ID, *got.ReviewID)

	var logs []models.AuditLog
	require.NoError(t, f.db.Where("entity_type = ?", entitySubmission).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, services.ActionApprove, logs[0].ActionType)
	assert.Equal(t, sub.ID, logs[0].EntityID)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)
}

func TestApprovePreservesImageOrder(t *testing.T) {
	f := newFixture(t)
	urls := []string{"/uploads/reviews/3.jpg", "/uploads/reviews/1.jpg", "/uploads/reviews/5.jpg", "/uploads/reviews/2.jpg"}
	sub := f.submit(t, "Order", urls...)

	res, err := f.subs.Approve(context.Background(), sub.ID, nil, "")
	require.NoError(t, err)

	var images []ReviewImage
	require.NoError(t, f.db.Where("review_id = ?", res.Review.ID).Order("display_order").Find(&images).Error)
	require.Len(t, images, len(urls))
	for i, img := range images {
		assert.Equal(t, urls[i], img.ImageURL)
	}
}

func TestApproveStoresNotes(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t, "Notes", "/uploads/reviews/a.jpg")
	notes := "verified customer"

	_, err := f.subs.Approve(context.Background(), sub.ID, &notes, "")
	require.NoError(t, err)

	got, err := f.subs.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AdminNotes)
	assert.Equal(t, notes, *got.AdminNotes)
}

func TestBlankNotesStoredAsNull(t *testing.T) {
	f := newFixture(t)
	blank := "  "

	approved := f.submit(t, "Blank", "/uploads/reviews/a.jpg")
	res, err := f.subs.Approve(context.Background(), approved.ID, &blank, "")
	require.NoError(t, err)
	assert.Nil(t, res.Submission.AdminNotes)

	rejected := f.submit(t, "Cleared", "/uploads/reviews/b.jpg")
	notes := "needs a second look"
	_, err = f.subs.Reject(context.Background(), rejected.ID, &notes, "")
	require.NoError(t, err)
	_, err = f.subs.Undo(context.Background(), rejected.ID, "")
	require.NoError(t, err)
	res, err = f.subs.Reject(context.Background(), rejected.ID, &blank, "")
	require.NoError(t, err)
	assert.Nil(t, res.Submission.AdminNotes)

	for _, id := range []uint{approved.ID, rejected.ID} {
		var n int64
		require.NoError(t, f.db.Model(&ReviewSubmission{}).Where("id = ? AND admin_notes IS NULL", id).Count(&n).Error)
		assert.EqualValues(t, 1, n)
	}
}

func TestValidateInputAcceptsCleaningIdiom(t *testing.T) {
	in := SubmissionInput{
		ReviewerName:    "Dana",
		ReviewerEmail:   "dana@example.com",
		StarRating:      5,
		ServiceCategory: "cleaning",
		ReviewText:      "They left the kitchen spic and span. Five stars!",
	}
	require.NoError(t, ValidateInput(&in, site.Default(), services.NewContentFilter()))
	assert.Equal(t, "Cleaning", in.ServiceCategory)
}

func TestReapproveIsRejected(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t, "Twice", "/uploads/reviews/a.jpg")

	_, err := f.subs.Approve(context.Background(), sub.ID, nil, "")
	require.NoError(t, err)

	_, err = f.subs.Approve(context.Background(), sub.ID, nil, "")
	assert.ErrorIs(t, err, ErrAlreadyApproved)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.EqualValues(t, 1, f.count(t, &Review{}))
	assert.EqualValues(t, 1, f.count(t, &ReviewImage{}))
}

func TestApproveUnknownSubmission(t *testing.T) {
	f := newFixture(t)
	_, err := f.subs.Approve(context.Background(), 999, nil, "")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApproveRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t, "Rollback", "/uploads/reviews/a.jpg", "/uploads/reviews/b.jpg")
	require.NoError(t, f.db.Migrator().DropTable(&models.AuditLog{}))

	_, err := f.subs.Approve(context.Background(), sub.ID, nil, "")
	require.Error(t, err)

	assert.EqualValues(t, 0, f.count(t, &Review{}))
	assert.EqualValues(t, 0, f.count(t, &ReviewImage{}))
	got, err := f.subs.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Nil(t, got.ReviewedAt)
}

func TestRejectCreatesNoReview(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t, "Spam", "/uploads/reviews/a.jpg")
	notes := "duplicate"

	res, err := f.subs.Reject(context.Background(), sub.ID, &notes, "")
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Submission.Status)
	assert.NotNil(t, res.Submission.ReviewedAt)
	require.NotNil(t, res.Submission.AdminNotes)
	assert.Equal(t, notes, *res.Submission.AdminNotes)
	assert.EqualValues(t, 0, f.count(t, &Review{}))
	assert.EqualValues(t, 0, f.count(t, &ReviewImage{}))
	assert.EqualValues(t, 1, f.count(t, &SubmissionImage{}))
}

func TestRejectApprovedSubmission(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t, "Late", "/uploads/reviews/a.jpg")
	_, err := f.subs.Approve(context.Background(), sub.ID, nil, "")
	require.NoError(t, err)

	_, err = f.subs.Reject(context.Background(), sub.ID, nil, "")
	assert.ErrorIs(t, err, ErrAlreadyApproved)

	got, err := f.subs.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
}

func TestUndoRejection(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t, "Undo", "/uploads/reviews/a.jpg")
	_, err := f.subs.Reject(context.Background(), sub.ID, nil, "")
	require.NoError(t, err)

	res, err := f.subs.Undo(context.Background(), sub.ID, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Submission.Status)
	assert.Nil(t, res.Submission.ReviewedAt)

	got, err := f.subs.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Nil(t, got.ReviewedAt)
}

func TestUndoGuardsNonRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.submit(t, "Pending", "/uploads/reviews/p.jpg")
	approved := f.submit(t, "Approved", "/uploads/reviews/a.jpg")
	_, err := f.subs.Approve(ctx, approved.ID, nil, "")
	require.NoError(t, err)

	before, err := f.subs.Get(ctx, approved.ID)
	require.NoError(t, err)

	for _, id := range []uint{pending.ID, approved.ID} {
		_, err := f.subs.Undo(ctx, id, "")
		assert.ErrorIs(t, err, ErrNotRejected)
	}

	gotPending, err := f.subs.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, gotPending.Status)
	assert.Nil(t, gotPending.ReviewedAt)

	after, err := f.subs.Get(ctx, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, after.Status)
	require.NotNil(t, after.ReviewedAt)
	assert.True(t, before.ReviewedAt.Equal(*after.ReviewedAt))
	assert.Equal(t, before.ReviewID, after.ReviewID)
	assert.EqualValues(t, 1, f.count(t, &Review{}))
}

func TestApplyDispatch(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t, "Dispatch", "/uploads/reviews/a.jpg")

	_, err := f.subs.Apply(context.Background(), sub.ID, "publish", nil, "")
	assert.ErrorIs(t, err, ErrInvalidAction)
	var ve *apperr.ValidationError
	assert.True(t, errors.As(err, &ve))

	res, err := f.subs.Apply(context.Background(), sub.ID, ActionReject, nil, "")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, res.Submission.Status)

	res, err = f.subs.Apply(context.Background(), sub.ID, ActionUndo, nil, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Submission.Status)

	res, err = f.subs.Apply(context.Background(), sub.ID, ActionApprove, nil, "")
	require.NoError(t, err)
	assert.NotNil(t, res.Review)
}

func TestListFiltersAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.submit(t, "First", "/uploads/reviews/1.jpg")
	second := f.submit(t, "Second", "/uploads/reviews/2.jpg", "/uploads/reviews/2b.jpg")
	third := f.submit(t, "Third", "/uploads/reviews/3.jpg")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []uint{first.ID, second.ID, third.ID} {
		require.NoError(t, f.db.Model(&ReviewSubmission{}).Where("id = ?", id).
			Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
	}
	_, err := f.subs.Reject(ctx, second.ID, nil, "")
	require.NoError(t, err)

	all, err := f.subs.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})
	require.Len(t, all[1].Images, 2)
	assert.Equal(t, "/uploads/reviews/2.jpg", all[1].Images[0].ImageURL)

	pending, err := f.subs.List(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, s := range pending {
		assert.Equal(t, StatusPending, s.Status)
	}
	assert.Equal(t, third.ID, pending[0].ID)
	assert.Equal(t, first.ID, pending[1].ID)

	rejected, err := f.subs.List(ctx, StatusRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, second.ID, rejected[0].ID)

	_, err = f.subs.List(ctx, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeleteKeepsPromotedReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, status := range []string{StatusPending, StatusApproved, StatusRejected} {
		t.Run(status, func(t *testing.T) {
			sub := f.submit(t, "Delete "+status, "/uploads/reviews/"+status+".jpg")
			switch status {
			case StatusApproved:
				_, err := f.subs.Approve(ctx, sub.ID, nil, "")
				require.NoError(t, err)
			case StatusRejected:
				_, err := f.subs.Reject(ctx, sub.ID, nil, "")
				require.NoError(t, err)
			}
			reviewsBefore := f.count(t, &Review{})

			require.NoError(t, f.subs.Delete(ctx, sub.ID, ""))

			list, err := f.subs.List(ctx, "")
			require.NoError(t, err)
			for _, s := range list {
				assert.NotEqual(t, sub.ID, s.ID)
			}
			var images int64
			require.NoError(t, f.db.Model(&SubmissionImage{}).Where("submission_id = ?", sub.ID).Count(&images).Error)
			assert.Zero(t, images)
			assert.Equal(t, reviewsBefore, f.count(t, &Review{}))
		})
	}

	assert.ErrorIs(t, f.subs.Delete(ctx, 999, ""), ErrSubmissionNotFound)
}

func TestDeleteRemovesOnlyUnreferencedFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.env.Storage

	keep := writeUpload(t, store.Root, "reviews/keep.jpg")
	drop := writeUpload(t, store.Root, "reviews/drop.jpg")

	approved := f.submit(t, "Kept", keep.url)
	_, err := f.subs.Approve(ctx, approved.ID, nil, "")
	require.NoError(t, err)
	rejected := f.submit(t, "Dropped", drop.url)

	require.NoError(t, f.subs.Delete(ctx, approved.ID, ""))
	require.NoError(t, f.subs.Delete(ctx, rejected.ID, ""))

	assert.FileExists(t, keep.path)
	assert.NoFileExists(t, drop.path)
}
