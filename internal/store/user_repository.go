package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
	"rentbroker/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	table table[models.User]
}

func NewUserRepository(gdb *gorm.DB) *UserRepository {
	return &UserRepository{table: table[models.User]{db: gdb, noun: "user"}}
}

func withRoles(db *gorm.DB) *gorm.DB {
	return db.Preload("RoleRows")
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.table.create(ctx, u)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.table.findByID(ctx, id, withRoles)
}

// FindBySubject looks the subject up as an email first and as a username second,
// both case-insensitively.
func (r *UserRepository) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return nil, apperrors.NotFound("user not found")
	}

	for _, column := range []string{"email", "username"} {
		q, _ := conn(ctx, r.table.db)
		var u models.User
		err := q.Scopes(withRoles).
			Where(clause.Expr{SQL: "LOWER(?) = ?", Vars: []any{clause.Column{Name: column}, subject}}).
			First(&u).Error
		if err == nil {
			return &u, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load user by %s: %w", column, err)
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.table.exists(ctx, query.EqualFold("email", &email))
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.table.exists(ctx, query.EqualFold("username", &username))
}

func (r *UserRepository) setFlag(ctx context.Context, id int64, column string, value bool) error {
	q, _ := conn(ctx, r.table.db)
	err := q.Model(&models.User{}).Where("id = ?", id).Update(column, value).Error
	if err != nil {
		return fmt.Errorf("failed to update user %d %s: %w", id, column, err)
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.setFlag(ctx, id, "active", active)
}

func (r *UserRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	return r.setFlag(ctx, id, "verified", verified)
}

// AddRole grants role to user id. Granting a role the user already holds is a no-op.
func (r *UserRepository) AddRole(ctx context.Context, id int64, role models.Role) error {
	q, _ := conn(ctx, r.table.db)
	err := q.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: id, Role: role}).Error
	if err != nil {
		return fmt.Errorf("failed to grant %s to user %d: %w", role, id, err)
	}
	return nil
}

func (r *UserRepository) RemoveRole(ctx context.Context, id int64, role models.Role) error {
	q, _ := conn(ctx, r.table.db)
	err := q.Where("user_id = ? AND role = ?", id, role).Delete(&models.UserRole{}).Error
	if err != nil {
		return fmt.Errorf("failed to revoke %s from user %d: %w", role, id, err)
	}
	return nil
}

func (r *UserRepository) Search(ctx context.Context, spec query.Spec) (*query.Page[models.User], error) {
	return r.table.search(ctx, spec, withRoles)
}
