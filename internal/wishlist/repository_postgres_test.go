package wishlist

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresAdd_ConditionalAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO wishlists").WithArgs(4, 2).
		WillReturnRows(sqlmock.NewRows([]string{"product_ids"}).AddRow("{1,2}"))
	mock.ExpectQuery("INSERT INTO wishlists").WithArgs(4, 2).
		WillReturnRows(sqlmock.NewRows([]string{"product_ids"}))

	ids, err := repo.Add(context.Background(), 4, 2)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(ids) != 2 || ids[1] != 2 {
		t.Fatalf("unexpected ids %v", ids)
	}
	if _, err := repo.Add(context.Background(), 4, 2); !errors.Is(err, ErrAlreadyInWishlist) {
		t.Fatalf("expected ErrAlreadyInWishlist, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRemove_Absent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE wishlists").WithArgs(4, 9).WillReturnRows(sqlmock.NewRows([]string{"product_ids"}))
	if _, err := NewPostgresRepository(db).Remove(context.Background(), 4, 9); !errors.Is(err, ErrNotInWishlist) {
		t.Fatalf("expected ErrNotInWishlist, got %v", err)
	}
}
