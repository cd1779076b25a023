package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ateneai/wa-relay/domains/registry"
)

type webhookModel struct {
	Key       string `gorm:"primaryKey;size:64"`
	URL       string `gorm:"size:2048"`
	Name      string `gorm:"size:255"`
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (webhookModel) TableName() string {
	return "webhook_targets"
}

// GormRepository persists webhook targets in a relational database so
// admin-made changes survive restarts.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&webhookModel{}); err != nil {
		return nil, err
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) Get(ctx context.Context, key string) (*registry.WebhookTarget, error) {
	var model webhookModel
	err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	target := toTarget(model)
	return &target, nil
}

func (r *GormRepository) Put(ctx context.Context, target registry.WebhookTarget) error {
	model := webhookModel{
		Key:     target.Key,
		URL:     target.URL,
		Name:    target.Name,
		Enabled: target.Enabled,
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

func (r *GormRepository) Delete(ctx context.Context, key string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&webhookModel{}, "key = ?", key)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormRepository) List(ctx context.Context) ([]registry.WebhookTarget, error) {
	var models []webhookModel
	if err := r.db.WithContext(ctx).Order("key").Find(&models).Error; err != nil {
		return nil, err
	}
	targets := make([]registry.WebhookTarget, 0, len(models))
	for _, model := range models {
		targets = append(targets, toTarget(model))
	}
	return targets, nil
}

func toTarget(model webhookModel) registry.WebhookTarget {
	return registry.WebhookTarget{
		Key:     model.Key,
		URL:     model.URL,
		Name:    model.Name,
		Enabled: model.Enabled,
	}
}
