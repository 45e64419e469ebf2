package datastore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/growsocial/orbit/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail   = "viewer@example.com"
	testPosterEmail = "poster@example.com"
	testChannelID   = "UCabcdefghijklmnopqrstuv"
)

var (
	channelSelectPattern = regexp.QuoteMeta("SELECT id, email, rate, currency")
	rewardInsertPattern  = regexp.QuoteMeta("INSERT INTO rewards")
	channelUpdatePattern = regexp.QuoteMeta("UPDATE channels")
)

func newRewardRepo(t *testing.T) (*RewardRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRewardRepository(db), mock
}

func TestCreateReward_Success(t *testing.T) {
	repo, mock := newRewardRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(channelSelectPattern).
		WithArgs(testChannelID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "rate", "currency"}).
			AddRow(42, testPosterEmail, "150.00", "NGN"))
	mock.ExpectExec(rewardInsertPattern).
		WithArgs(sqlmock.AnyArg(), int64(42), testUserEmail, testPosterEmail,
			sqlmock.AnyArg(), "NGN", "https://www.youtube.com/channel/"+testChannelID, "api", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(channelUpdatePattern).
		WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reward, err := repo.CreateReward(context.Background(), testUserEmail, testChannelID,
		"https://www.youtube.com/channel/"+testChannelID, models.RewardMethodAPI)
	require.NoError(t, err)

	assert.Equal(t, int64(42), reward.ChannelID)
	assert.Equal(t, testUserEmail, reward.UserEmail)
	assert.Equal(t, testPosterEmail, reward.PosterEmail)
	assert.True(t, reward.Amount.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, "NGN", reward.Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReward_AlreadyRewarded(t *testing.T) {
	repo, mock := newRewardRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(channelSelectPattern).
		WithArgs(testChannelID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "rate", "currency"}).
			AddRow(42, testPosterEmail, "150.00", "NGN"))
	// Unique index on (user_email, channel_id): ON CONFLICT DO NOTHING
	// inserts zero rows for the losing writer.
	mock.ExpectExec(rewardInsertPattern).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.CreateReward(context.Background(), testUserEmail, testChannelID, "", models.RewardMethodAPI)
	assert.ErrorIs(t, err, ErrAlreadyRewarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReward_UnknownChannel(t *testing.T) {
	repo, mock := newRewardRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(channelSelectPattern).
		WithArgs("UCnope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "rate", "currency"}))
	mock.ExpectRollback()

	_, err := repo.CreateReward(context.Background(), testUserEmail, "UCnope", "", models.RewardMethodAPI)
	assert.ErrorIs(t, err, ErrUnknownChannel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRewardsByUser(t *testing.T) {
	repo, mock := newRewardRepo(t)

	earnedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT rw.amount, rw.currency, ch.channel_name, rw.created_at")).
		WithArgs(testUserEmail).
		WillReturnRows(sqlmock.NewRows([]string{"amount", "currency", "channel_name", "created_at"}).
			AddRow("150.00", "NGN", "Cooking With Ada", earnedAt).
			AddRow("75.50", "NGN", "Lagos Tech Weekly", earnedAt.Add(-time.Hour)))

	rewards, err := repo.GetRewardsByUser(context.Background(), testUserEmail)
	require.NoError(t, err)
	require.Len(t, rewards, 2)
	assert.Equal(t, "Cooking With Ada", rewards[0].ChannelName)
	assert.True(t, rewards[0].Amount.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, earnedAt, rewards[0].EarnedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRewardsByUser_Empty(t *testing.T) {
	repo, mock := newRewardRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT rw.amount, rw.currency, ch.channel_name, rw.created_at")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"amount", "currency", "channel_name", "created_at"}))

	rewards, err := repo.GetRewardsByUser(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, rewards)
	assert.NoError(t, mock.ExpectationsWereMet())
}
