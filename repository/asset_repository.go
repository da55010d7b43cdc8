package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"wavecut/model"
)

// AssetRepository defines data operations for source audio assets.
type AssetRepository interface {
	Create(asset *model.Asset) error
	GetByID(id string) (*model.Asset, error)
	Delete(id string) error
}

type gormAssetRepository struct {
	db *gorm.DB
}

// NewGormAssetRepository creates an AssetRepository backed by GORM.
func NewGormAssetRepository(db *gorm.DB) AssetRepository {
	return &gormAssetRepository{db: db}
}

func (r *gormAssetRepository) Create(asset *model.Asset) error {
	if err := r.db.Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func (r *gormAssetRepository) GetByID(id string) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.First(&asset, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query asset %s: %w", id, err)
	}
	return &asset, nil
}

func (r *gormAssetRepository) Delete(id string) error {
	// Markers belong to the asset and go with it.
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", id).Delete(&model.Marker{}).Error; err != nil {
			return fmt.Errorf("failed to delete markers for asset %s: %w", id, err)
		}
		if err := tx.Delete(&model.Asset{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete asset %s: %w", id, err)
		}
		return nil
	})
}
