package datastore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChannelRepo(t *testing.T) (*ChannelRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewChannelRepository(db), mock
}

func browseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "channel_name", "youtube_channel_id", "channel_url",
		"channel_description", "channel_category", "rate", "currency",
		"subscriptions", "subscription_needed", "amount_incurred", "upload_date",
	})
}

func TestBrowseChannels_NoFilters(t *testing.T) {
	repo, mock := newChannelRepo(t)

	uploaded := time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE email != $1")).
		WithArgs(testUserEmail).
		WillReturnRows(browseRows().
			AddRow(1, testPosterEmail, "Cooking With Ada", testChannelID,
				"https://www.youtube.com/channel/"+testChannelID,
				"Nigerian home cooking", "Food", "150.00", "NGN", 10, 100, "1500.00", uploaded))

	channels, err := repo.BrowseChannels(context.Background(), testUserEmail, "", "")
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "Cooking With Ada", channels[0].Name)
	assert.Equal(t, testChannelID, channels[0].YouTubeChannelID)
	assert.Equal(t, 100, channels[0].SubscriberTarget)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrowseChannels_SearchAndCategory(t *testing.T) {
	repo, mock := newChannelRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("channel_category = $3")).
		WithArgs(testUserEmail, "%ada%", "Food").
		WillReturnRows(browseRows())

	channels, err := repo.BrowseChannels(context.Background(), testUserEmail, "Food", "ada")
	require.NoError(t, err)
	assert.Empty(t, channels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrowseChannels_AllCategoryMeansNoFilter(t *testing.T) {
	repo, mock := newChannelRepo(t)

	// "All" must not add a category predicate; only the viewer arg remains.
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY random()")).
		WithArgs(testUserEmail).
		WillReturnRows(browseRows())

	_, err := repo.BrowseChannels(context.Background(), testUserEmail, "All", "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEligibleChannels(t *testing.T) {
	repo, mock := newChannelRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "youtube_channel_id", "channel_name", "channel_url",
		"rate", "currency", "channel_description", "channel_category",
	}).
		AddRow(1, testChannelID, "Cooking With Ada", "https://www.youtube.com/channel/"+testChannelID,
			"150.00", "NGN", "Nigerian home cooking", "Food").
		AddRow(2, "UCxyz", "Lagos Tech Weekly", "https://www.youtube.com/channel/UCxyz",
			"75.50", "NGN", "Tech news", "Technology")

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY upload_date DESC")).
		WithArgs(testUserEmail).
		WillReturnRows(rows)

	channels, err := repo.GetEligibleChannels(context.Background(), testUserEmail)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, testChannelID, channels[0].YouTubeChannelID)
	assert.Equal(t, "UCxyz", channels[1].YouTubeChannelID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
