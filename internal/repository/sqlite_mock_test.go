package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db, keep: 5}, mock
}

func TestSaveSnapshotInsertError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO snapshots").
		WillReturnError(fmt.Errorf("disk I/O error"))
	mock.ExpectRollback()

	if _, err := repo.SaveSnapshot(context.Background(), []byte("{}")); err == nil {
		t.Fatal("SaveSnapshot should fail when the insert fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSaveSnapshotPruneError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO snapshots").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("DELETE FROM snapshots").
		WillReturnError(fmt.Errorf("database is locked"))
	mock.ExpectRollback()

	if _, err := repo.SaveSnapshot(context.Background(), []byte("{}")); err == nil {
		t.Fatal("SaveSnapshot should fail when pruning fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSaveSnapshotCommitError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO snapshots").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("DELETE FROM snapshots").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit().WillReturnError(fmt.Errorf("commit failed"))

	if _, err := repo.SaveSnapshot(context.Background(), []byte("{}")); err == nil {
		t.Fatal("SaveSnapshot should fail when the commit fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLoadLatestQueryError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT payload FROM snapshots").
		WillReturnError(fmt.Errorf("database is locked"))

	if _, err := repo.LoadLatest(context.Background()); err == nil {
		t.Fatal("LoadLatest should surface query errors")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListSnapshotsScanError(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "created_at"}).
		AddRow("not-a-number", "not-a-time")
	mock.ExpectQuery("SELECT id, created_at FROM snapshots").
		WillReturnRows(rows)

	if _, err := repo.ListSnapshots(context.Background()); err == nil {
		t.Fatal("ListSnapshots should surface scan errors")
	}
}
