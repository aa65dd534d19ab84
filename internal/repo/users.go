package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func (r *PostgresRepo) CreateUser(ctx context.Context, u entities.User) (int64, error) {
	query, args := r.qb.Insert("users").
		Columns("email", "password_hash", "role", "first_name", "last_name", "shop_id").
		Values(u.Email, u.PasswordHash, u.Role, nullString(u.FirstName), nullString(u.LastName), nullInt64(u.ShopID)).
		Suffix("RETURNING id").
		MustSql()

	var id int64
	err := r.getContext(ctx, &id, query, args...)
	if isUniqueViolation(err) {
		return 0, entities.ErrEmailTaken
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (r *PostgresRepo) GetUserByEmail(ctx context.Context, email string) (entities.User, error) {
	query, args := r.qb.Select("id", "email", "password_hash", "role", "first_name", "last_name", "shop_id").
		From("users").
		Where(sq.Eq{"email": email}).
		MustSql()

	var user User
	err := r.getContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return UserToEntity(user), nil
}

func (r *PostgresRepo) GetUserByID(ctx context.Context, userID int64) (entities.User, error) {
	query, args := r.qb.Select("id", "email", "password_hash", "role", "first_name", "last_name", "shop_id").
		From("users").
		Where(sq.Eq{"id": userID}).
		MustSql()

	var user User
	err := r.getContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return UserToEntity(user), nil
}

// UpdateUser applies the non-nil fields of upd and returns the fresh row.
func (r *PostgresRepo) UpdateUser(ctx context.Context, userID int64, upd entities.UserUpdate) (entities.User, error) {
	q := r.qb.Update("users").Where(sq.Eq{"id": userID})

	changed := false
	if upd.FirstName != nil {
		q = q.Set("first_name", nullString(*upd.FirstName))
		changed = true
	}
	if upd.LastName != nil {
		q = q.Set("last_name", nullString(*upd.LastName))
		changed = true
	}
	if upd.Email != nil {
		q = q.Set("email", *upd.Email)
		changed = true
	}

	if changed {
		query, args := q.MustSql()
		res, err := r.execContext(ctx, query, args...)
		if isUniqueViolation(err) {
			return entities.User{}, entities.ErrEmailTaken
		}
		if err != nil {
			return entities.User{}, fmt.Errorf("failed to update user: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return entities.User{}, entities.ErrUserNotFound
		}
	}

	return r.GetUserByID(ctx, userID)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
