package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPostgresDocumentRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db, "", "", nil)

	rows := sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"revision":7,"users":[{"id":1,"code":"EST001"}]}`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM emphasis_documents WHERE id = $1")).
		WithArgs(documentRowID).
		WillReturnRows(rows)

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), doc.Revision)
	require.Len(t, doc.Users, 1)
	assert.Equal(t, "EST001", doc.Users[0].Code)
	assert.NotNil(t, doc.Grades)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositoryLoadEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db, "", "", nil)

	mock.ExpectQuery("SELECT payload FROM emphasis_documents").
		WithArgs(documentRowID).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositorySaveNotifies(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db, "", "doc_changes", nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO emphasis_documents").
		WithArgs(documentRowID, int64(4), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_notify($1, $2)")).
		WithArgs("doc_changes", "4").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), sampleDocument()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositorySaveRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db, "", "", nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO emphasis_documents").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Save(context.Background(), sampleDocument())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositorySaveConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db, "", "", nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("WHERE emphasis_documents.revision < EXCLUDED.revision")).
		WithArgs(documentRowID, int64(4), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), sampleDocument())
	assert.ErrorIs(t, err, ErrRevisionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositoryEnsureSchema(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db, "", "", nil)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS emphasis_documents").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
