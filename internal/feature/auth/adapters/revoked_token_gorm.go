package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auth_backend/internal/feature/auth/usecase"
)

// revokedTokenGorm はRevocationStoreインターフェースのGORM実装です。
type revokedTokenGorm struct {
	db *gorm.DB
}

var _ usecase.RevocationStore = (*revokedTokenGorm)(nil)

// NewRevokedTokenGorm は失効トークンストアを生成します。
func NewRevokedTokenGorm(db *gorm.DB) *revokedTokenGorm {
	return &revokedTokenGorm{db: db}
}

// Insert は失効トークンのハッシュを記録します。既に存在する場合は何もしません。
func (r *revokedTokenGorm) Insert(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	m := &RevokedTokenModel{TokenHash: tokenHash, ExpiresAt: expiresAt.UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m).Error
}

// Exists はハッシュが失効済みとして記録されているかを返します。
func (r *revokedTokenGorm) Exists(ctx context.Context, tokenHash string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&RevokedTokenModel{}).
		Where("token_hash = ?", tokenHash).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteExpired は有効期限切れのエントリを削除し、削除件数を返します。
// SQLite は時刻を文字列として比較するため、保存・比較ともに UTC に揃えます。
func (r *revokedTokenGorm) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now.UTC()).Delete(&RevokedTokenModel{})
	return res.RowsAffected, res.Error
}
