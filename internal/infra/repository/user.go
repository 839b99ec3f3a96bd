package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/giftgrove/giftgrove/internal/domain"
	"github.com/giftgrove/giftgrove/internal/infra/database/models"
)

// UserRepository persists account documents with per-record optimistic
// concurrency: every write must name the revision it read, and a write
// against a stale revision fails with domain.ConflictError.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}

	return unmarshalUser(row)
}

// Put upserts the whole record. A record with Revision 0 is created;
// otherwise the row is updated only if its stored revision still
// matches, and the returned record carries the bumped revision.
func (r *UserRepository) Put(ctx context.Context, user domain.User) (domain.User, error) {
	return putUser(r.db.WithContext(ctx), user)
}

// BulkPut writes every record in one transaction, with the same
// per-row revision discipline as Put.
func (r *UserRepository) BulkPut(ctx context.Context, users []domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, user := range users {
			if _, err := putUser(tx, user); err != nil {
				return err
			}
		}
		return nil
	})
}

// ScanAll returns every record in id order.
func (r *UserRepository) ScanAll(ctx context.Context) ([]domain.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		user, err := unmarshalUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func putUser(db *gorm.DB, user domain.User) (domain.User, error) {
	row, err := marshalUser(user)
	if err != nil {
		return domain.User{}, err
	}

	if user.Revision == 0 {
		row.Revision = 1
		if err := db.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.User{}, domain.ConflictError{Resource: "user"}
			}
			return domain.User{}, err
		}
		user.Revision = 1
		return user, nil
	}

	nextRevision := user.Revision + 1
	result := db.Model(&models.User{}).
		Where("id = ? AND revision = ?", user.ID, user.Revision).
		Updates(map[string]any{
			"admin":        row.Admin,
			"display_name": row.DisplayName,
			"groups":       row.Groups,
			"managers":     row.Managers,
			"is_managed":   row.IsManaged,
			"revision":     nextRevision,
		})
	if result.Error != nil {
		return domain.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error; err != nil {
			return domain.User{}, err
		}
		if count == 0 {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, domain.ConflictError{Resource: "user"}
	}

	user.Revision = nextRevision
	return user, nil
}

func marshalUser(user domain.User) (models.User, error) {
	groups, err := json.Marshal(user.Groups)
	if err != nil {
		return models.User{}, err
	}

	var managers *string
	if user.Managers != nil {
		serialized, err := json.Marshal(user.Managers)
		if err != nil {
			return models.User{}, err
		}
		s := string(serialized)
		managers = &s
	}

	return models.User{
		ID:          user.ID,
		Admin:       user.Admin,
		DisplayName: user.DisplayName,
		Groups:      string(groups),
		Managers:    managers,
		IsManaged:   user.IsManaged,
		Revision:    user.Revision,
	}, nil
}

func unmarshalUser(row models.User) (domain.User, error) {
	user := domain.User{
		ID:          row.ID,
		Admin:       row.Admin,
		DisplayName: row.DisplayName,
		IsManaged:   row.IsManaged,
		Revision:    row.Revision,
	}

	if row.Groups != "" && row.Groups != "null" {
		if err := json.Unmarshal([]byte(row.Groups), &user.Groups); err != nil {
			return domain.User{}, err
		}
	}

	if row.Managers != nil {
		managers := []domain.ManagerEntry{}
		if *row.Managers != "" && *row.Managers != "null" {
			if err := json.Unmarshal([]byte(*row.Managers), &managers); err != nil {
				return domain.User{}, err
			}
		}
		user.Managers = managers
	}

	return user, nil
}
