package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
)

// maxUpdateAttempts は楽観ロック競合時の最大試行回数です。
const maxUpdateAttempts = 5

// hashColumns は FindByHash で検索可能なカラムのホワイトリストです。
var hashColumns = map[entity.HashField]string{
	entity.HashFieldVerification: "verification_token_hash",
	entity.HashFieldReset:        "reset_token_hash",
	entity.HashFieldRefresh:      "refresh_token_hash",
}

// userGorm はUserRepositoryインターフェースのGORM実装です。
// PostgreSQL と SQLite の両方で動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
// 重複キーの判定には gorm.Config{TranslateError: true} で開いた接続が必要です。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	m := UserModelFromEntity(u)
	if m.Version == 0 {
		m.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.Version = m.Version
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByHash はトークンハッシュでユーザーを取得します。
func (r *userGorm) FindByHash(ctx context.Context, field entity.HashField, hash string) (*entity.User, error) {
	column, ok := hashColumns[field]
	if !ok {
		return nil, fmt.Errorf("unknown hash field %q", field)
	}
	if hash == "" {
		return nil, usecase.ErrUserNotFound
	}
	return r.first(ctx, column+" = ?", hash)
}

func (r *userGorm) first(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Update はユーザーレコードを楽観ロック（version カラム）で読み込み・変更・書き戻しします。
// 書き込み時に version が一致しなければ最新を読み直して fn を再実行します。
func (r *userGorm) Update(ctx context.Context, id string, fn func(u *entity.User) error) (*entity.User, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var current UserModel
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, usecase.ErrUserNotFound
			}
			return nil, err
		}

		u := current.ToEntity()
		if err := fn(u); err != nil {
			return nil, err
		}

		next := UserModelFromEntity(u)
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		next.Version = current.Version + 1

		// Select("*") はゼロ値（nil ポインタ等）も含めて全カラムを書き込むために必要です。
		res := r.db.WithContext(ctx).
			Model(&UserModel{}).
			Where("id = ? AND version = ?", current.ID, current.Version).
			Select("*").
			Omit("id", "created_at").
			Updates(next)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, usecase.ErrEmailAlreadyExists
			}
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return next.ToEntity(), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, usecase.ErrConcurrentUpdate
}

// Delete はユーザーを削除します。
func (r *userGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
