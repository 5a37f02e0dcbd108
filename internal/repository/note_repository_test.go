package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/collab-league-api/internal/models"
)

func TestNoteCreateGuardedByCampaignState(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNoteRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("AND r.campaign_status IN ('in_progress', 'completed')")).
		WithArgs(sqlmock.AnyArg(), "c-1", "Ana", "Draft is ready", sqlmock.AnyArg(), "r-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	note := &models.CampaignNote{CampaignID: "r-1", AuthorID: "c-1", AuthorName: "Ana", Content: "Draft is ready"}
	require.NoError(t, repo.Create(context.Background(), note))
	assert.NotEmpty(t, note.ID)
	assert.False(t, note.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteCreateRejectedWhenNothingInserted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNoteRepository(db)

	mock.ExpectExec("INSERT INTO campaign_notes").
		WithArgs(sqlmock.AnyArg(), "x-1", nil, "hello", sqlmock.AnyArg(), "r-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), &models.CampaignNote{CampaignID: "r-1", AuthorID: "x-1", Content: "hello"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteListByCampaignResolvesNames(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNoteRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "campaign_id", "author_id", "author_role", "author_name", "content", "created_at"}).
		AddRow("n-1", "r-1", "b-1", "business", "Acme", "Kickoff", now).
		AddRow("n-2", "r-1", "c-1", "creator", "Creator User", "Thanks", now.Add(time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY n.created_at ASC, n.id ASC")).
		WithArgs("r-1").
		WillReturnRows(rows)

	notes, err := repo.ListByCampaign(context.Background(), "r-1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Acme", notes[0].AuthorName)
	assert.Equal(t, models.FallbackCreatorName, notes[1].AuthorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteListRecentByAuthorDefaultsLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNoteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE n.author_id = $1")).
		WithArgs("b-1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "campaign_name", "content", "created_at"}).
			AddRow("n-1", "r-1", "Launch", "Kickoff", time.Now()))

	notes, err := repo.ListRecentByAuthor(context.Background(), "b-1", 0)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
