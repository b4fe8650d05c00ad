package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,password_hash,nick_name,email,phone_number,is_frozen,is_admin,created_at,updated_at"

// Create inserts a user with a bcrypt-hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, username, password, nickName, email string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, nick_name, email) VALUES (?,?,?,?)",
		username, hash, nickName, email)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by login name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// FindAdminEmail returns the email address of an administrator account.
// With several administrators present the first by id wins; the address
// is cached by the booking workflow, so this query runs rarely.
func (r *UserRepo) FindAdminEmail(ctx context.Context) (string, error) {
	var email string
	err := r.DB.QueryRowContext(ctx,
		"SELECT email FROM users WHERE is_admin=1 ORDER BY id LIMIT 1").Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return email, err
}

// UpdateProfile updates the mutable profile fields of a user.  Returns
// ErrUserNotFound when the id does not exist.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, nickName, email string, phone *string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET nick_name=?, email=?, phone_number=? WHERE id=?",
		nickName, email, phone, id)
	if err != nil {
		return err
	}
	return r.checkTouched(ctx, res, id)
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return r.checkTouched(ctx, res, id)
}

// SetFrozen freezes or unfreezes an account.  Frozen accounts fail the
// login check.  Returns ErrUserNotFound when the id does not exist.
func (r *UserRepo) SetFrozen(ctx context.Context, id uint64, frozen bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET is_frozen=? WHERE id=?", frozen, id)
	if err != nil {
		return err
	}
	return r.checkTouched(ctx, res, id)
}

// UserFilter narrows the result of List.  Zero values mean "no filter".
// PageNo is 1-based.
type UserFilter struct {
	Username string
	NickName string
	Email    string
	PageNo   int
	PageSize int
}

// List returns users matching the filter plus the total count across all
// pages, ordered by id for deterministic paging.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if f.Username != "" {
		where = append(where, "username LIKE ?")
		args = append(args, "%"+f.Username+"%")
	}
	if f.NickName != "" {
		where = append(where, "nick_name LIKE ?")
		args = append(args, "%"+f.NickName+"%")
	}
	if f.Email != "" {
		where = append(where, "email LIKE ?")
		args = append(args, "%"+f.Email+"%")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	if f.PageNo < 1 {
		f.PageNo = 1
	}
	offset := (f.PageNo - 1) * f.PageSize
	query := "SELECT " + userColumns + " FROM users" + cond + " ORDER BY id LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, query, append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.User, 0, f.PageSize)
	for rows.Next() {
		var u model.User
		var phone sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.NickName, &u.Email,
			&phone, &u.IsFrozen, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if phone.Valid {
			p := phone.String
			u.PhoneNumber = &p
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// checkTouched distinguishes "row missing" from "row unchanged": MySQL
// reports changed rows rather than matched rows, so a zero count needs an
// existence probe before it can be called not-found.
func (r *UserRepo) checkTouched(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	var phone sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.NickName, &u.Email,
		&phone, &u.IsFrozen, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	if phone.Valid {
		p := phone.String
		u.PhoneNumber = &p
	}
	return u, err
}
