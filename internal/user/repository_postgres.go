package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wichananm65/juice-shop-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, username, email, password, role, full_name, phone, avatar, date_of_birth, gender, preferences, created_at, updated_at`

const (
	listUsersQuery      = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	countUsersQuery     = `SELECT COUNT(*) FROM users`
	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`

	insertUserQuery = `
		INSERT INTO users (username, email, password, role, full_name, phone, gender, preferences)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	updateUserQuery = `
		UPDATE users
		SET username = $2, role = $3, full_name = $4, phone = $5, avatar = $6,
			date_of_birth = $7, gender = $8, preferences = $9, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	updatePasswordQuery = `UPDATE users SET password = $2, updated_at = now() WHERE id = $1`
	deleteUserQuery     = `DELETE FROM users WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countUsersQuery).Scan(&n)
	return n, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, getUserByEmailQuery, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	prefs, err := encodePreferences(u.Preferences)
	if err != nil {
		return User{}, err
	}
	row := r.db.QueryRowContext(ctx, insertUserQuery, u.Username, u.Email, u.Password, u.Role, u.FullName, u.Phone, genderOrDefault(u.Gender), prefs)
	created, err := scanUser(row)
	if database.IsUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	return created, err
}

func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	prefs, err := encodePreferences(u.Preferences)
	if err != nil {
		return User{}, err
	}
	var dob sql.NullTime
	if u.DateOfBirth != nil {
		dob = sql.NullTime{Time: *u.DateOfBirth, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, updateUserQuery, u.ID, u.Username, u.Role, u.FullName, u.Phone, u.Avatar, dob, genderOrDefault(u.Gender), prefs)
	updated, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return updated, err
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	res, err := r.db.ExecContext(ctx, updatePasswordQuery, id, hash)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(scanner rowScanner) (User, error) {
	var (
		u      User
		avatar sql.NullString
		dob    sql.NullTime
		prefs  []byte
	)
	if err := scanner.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.FullName, &u.Phone, &avatar, &dob, &u.Gender, &prefs, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if dob.Valid {
		u.DateOfBirth = &dob.Time
	}
	u.Preferences = DefaultPreferences()
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &u.Preferences); err != nil {
			return User{}, fmt.Errorf("decode preferences of user %d: %w", u.ID, err)
		}
	}
	return u, nil
}

// encodePreferences renders p for the jsonb column; nil slices are stored
// as empty arrays.
func encodePreferences(p Preferences) (string, error) {
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.FavoriteCategories == nil {
		p.FavoriteCategories = []string{}
	}
	if p.Dietary.Allergies == nil {
		p.Dietary.Allergies = []string{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func genderOrDefault(g string) string {
	if g == "" {
		return GenderUndisclosed
	}
	return g
}
