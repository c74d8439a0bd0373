package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieByShowJoinsThroughShow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewShowRepo(db)

	mock.ExpectQuery(`JOIN shows s ON s.movie_id = m.id`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "genre", "duration_min"}).
			AddRow(3, "The Long Night", "Thriller", 128))

	movie, err := repo.MovieByShow(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), movie.ID)
	assert.Equal(t, "The Long Night", movie.Title)
	assert.Equal(t, "Thriller", movie.Genre)
	assert.Equal(t, uint32(128), movie.DurationMin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieByShowUnknownShow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewShowRepo(db)

	mock.ExpectQuery(`JOIN shows s ON s.movie_id = m.id`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "genre", "duration_min"}))

	movie, err := repo.MovieByShow(context.Background(), 404)
	assert.Nil(t, movie)
	assert.ErrorIs(t, err, ErrShowNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
