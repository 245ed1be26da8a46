package repository

import (
	"context"
	"strings"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/role"

	"gorm.io/gorm"
)

// Методы для пользователей

func (r *Repository) GetUserByID(ctx context.Context, id uint) (*ds.User, error) {
	var user ds.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*ds.User, error) {
	var user ds.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *ds.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// UpdateUser меняет только переданные поля; пароль должен быть уже захеширован.
func (r *Repository) UpdateUser(ctx context.Context, id uint, fullName, passwordHash *string) error {
	updates := map[string]interface{}{}
	if fullName != nil {
		updates["full_name"] = *fullName
	}
	if passwordHash != nil {
		updates["password"] = *passwordHash
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&ds.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListUsers(ctx context.Context, p ListParams) ([]ds.User, int64, error) {
	p = p.Normalize()
	q := r.db.WithContext(ctx).Model(&ds.User{})
	if p.Query != "" {
		like := "%" + strings.ToLower(p.Query) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
	}

	var users []ds.User
	total, err := list(q, p, "id", &users)
	return users, total, err
}

func (r *Repository) UpdateUserRole(ctx context.Context, id uint, newRole role.Role) error {
	result := r.db.WithContext(ctx).Model(&ds.User{}).Where("id = ?", id).Update("role", int(newRole))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser удаляет пользователя; его отзывы остаются анонимными.
func (r *Repository) DeleteUser(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ds.Review{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&ds.Review{}).Where("moderator_id = ?", id).Update("moderator_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&ds.User{}, id)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// StaffEmails - адреса менеджеров и администраторов для уведомлений.
func (r *Repository) StaffEmails(ctx context.Context) ([]string, error) {
	staff := make([]int, 0, len(role.Staff))
	for _, rl := range role.Staff {
		staff = append(staff, int(rl))
	}

	var emails []string
	err := r.db.WithContext(ctx).Model(&ds.User{}).
		Where("role IN ?", staff).
		Order("id").
		Pluck("email", &emails).Error
	return emails, err
}
