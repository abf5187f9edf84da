package cmd

import (
	"strings"
	"testing"
	"time"

	"yamdb/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loadTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestReadRowsSkipsHeader(t *testing.T) {
	data := "id,name,slug\n1,Фильм,movie\n2,\"Книга, роман\",book\n"

	rows, err := readRows(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2", "Книга, роман", "book"}, rows[1])
}

func TestReadRowsEmpty(t *testing.T) {
	rows, err := readRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseUser(t *testing.T) {
	user, err := parseUser([]string{"100", "bingobongo", "bingobongo@yamdb.fake", "user", "", "", ""}, loadTime)
	require.NoError(t, err)
	assert.Equal(t, legacyID("user", "100"), user.ID)
	assert.Equal(t, policy.RoleUser, user.Role)
	assert.True(t, user.IsConfirmed)

	_, err = parseUser([]string{"101", "x", "x@y.z", "owner", "", "", ""}, loadTime)
	assert.Error(t, err)

	_, err = parseUser([]string{"101", "x"}, loadTime)
	assert.Error(t, err)
}

func TestParseTitleLinksCategory(t *testing.T) {
	title, err := parseTitle([]string{"1", "Побег из Шоушенка", "1994", "1"}, loadTime)
	require.NoError(t, err)
	assert.Equal(t, 1994, title.Year)
	require.NotNil(t, title.CategoryID)
	assert.Equal(t, legacyID("category", "1"), *title.CategoryID)

	noCategory, err := parseTitle([]string{"2", "Untitled", "2000", ""}, loadTime)
	require.NoError(t, err)
	assert.Nil(t, noCategory.CategoryID)

	_, err = parseTitle([]string{"3", "Bad", "nineteen", "1"}, loadTime)
	assert.Error(t, err)
}

func TestParseReviewAndComment(t *testing.T) {
	review, err := parseReview([]string{"1", "1", "Ну, такой чуть болтливый.", "100", "10", "2019-09-24T21:08:21.567Z"})
	require.NoError(t, err)
	assert.Equal(t, 10, review.Score)
	assert.Equal(t, legacyID("title", "1"), review.TitleID)
	assert.Equal(t, legacyID("user", "100"), review.AuthorID)
	assert.Equal(t, 2019, review.PubDate.Year())

	comment, err := parseComment([]string{"1", "1", "Критик фигов", "101", "2019-09-24T21:08:21.567Z"})
	require.NoError(t, err)
	assert.Equal(t, review.ID, comment.ReviewID)

	_, err = parseReview([]string{"1", "1", "x", "100", "ten", "2019-09-24T21:08:21.567Z"})
	assert.Error(t, err)
}

func TestLegacyIDIsStableAndScoped(t *testing.T) {
	assert.Equal(t, legacyID("title", "7"), legacyID("title", " 7 "))
	assert.NotEqual(t, legacyID("title", "7"), legacyID("genre", "7"))

	link, err := parseTitleGenre([]string{"1", "7", "3"})
	require.NoError(t, err)
	assert.Equal(t, legacyID("title", "7"), link.TitleID)
	assert.Equal(t, legacyID("genre", "3"), link.GenreID)
}
