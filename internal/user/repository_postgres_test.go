package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var userRowColumns = []string{"id", "username", "email", "password", "role", "full_name", "phone", "avatar", "date_of_birth", "gender", "preferences", "created_at", "updated_at"}

func TestPostgresCreate_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ana", "ana@example.com", "hash", "user", "", "", GenderUndisclosed, sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), User{Username: "ana", Email: "ana@example.com", Password: "hash", Role: "user"})
	if err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email").WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(5, "ana", "ana@example.com", "hash", "admin", "", "", nil, nil, "female", []byte(`{"language":"hi","favoriteCategories":["detox"]}`), now, now))
	mock.ExpectQuery("FROM users WHERE email").WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if u.ID != 5 || u.Role != "admin" || u.Avatar != nil || u.DateOfBirth != nil || u.Gender != "female" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.Preferences.Language != "hi" || len(u.Preferences.FavoriteCategories) != 1 || !u.Preferences.EmailNotifications {
		t.Fatalf("unexpected preferences %+v", u.Preferences)
	}
	if _, err := repo.GetByEmail(context.Background(), "ghost@example.com"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresDelete_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("DELETE FROM users").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), 9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresUpdate_WritesProfileFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	dob := time.Date(1994, 3, 12, 0, 0, 0, 0, time.UTC)
	prefs := DefaultPreferences()
	prefs.Dietary.IsVegan = true

	mock.ExpectQuery("UPDATE users").
		WithArgs(5, "ana", "user", "Ana R", "", nil, sql.NullTime{Time: dob, Valid: true}, "female",
			`{"emailNotifications":true,"smsNotifications":false,"pushNotifications":true,"language":"en","favoriteCategories":[],"dietaryPreferences":{"isVegan":true,"isSugarFree":false,"isGlutenFree":false,"allergies":[]}}`).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(5, "ana", "ana@example.com", "hash", "user", "Ana R", "", nil, dob, "female", []byte(`{"dietaryPreferences":{"isVegan":true}}`), now, now))

	u, err := repo.Update(context.Background(), User{ID: 5, Username: "ana", Role: "user", FullName: "Ana R", DateOfBirth: &dob, Gender: "female", Preferences: prefs})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if u.DateOfBirth == nil || !u.DateOfBirth.Equal(dob) || !u.Preferences.Dietary.IsVegan {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
