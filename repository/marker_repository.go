package repository

import (
	"fmt"

	"gorm.io/gorm"

	"wavecut/model"
)

// MarkerRepository defines data operations for stored marker sets. A marker
// set is only ever replaced wholesale for its asset.
type MarkerRepository interface {
	ReplaceForAsset(assetID string, markers []model.Marker) error
	GetByAsset(assetID string) ([]model.Marker, error)
}

type gormMarkerRepository struct {
	db *gorm.DB
}

// NewGormMarkerRepository creates a MarkerRepository backed by GORM.
func NewGormMarkerRepository(db *gorm.DB) MarkerRepository {
	return &gormMarkerRepository{db: db}
}

func (r *gormMarkerRepository) ReplaceForAsset(assetID string, markers []model.Marker) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", assetID).Delete(&model.Marker{}).Error; err != nil {
			return fmt.Errorf("failed to clear markers for asset %s: %w", assetID, err)
		}
		if len(markers) == 0 {
			return nil
		}
		for i := range markers {
			markers[i].ID = 0
			markers[i].AssetID = assetID
		}
		if err := tx.Create(&markers).Error; err != nil {
			return fmt.Errorf("failed to store markers for asset %s: %w", assetID, err)
		}
		return nil
	})
}

func (r *gormMarkerRepository) GetByAsset(assetID string) ([]model.Marker, error) {
	var markers []model.Marker
	err := r.db.Where("asset_id = ?", assetID).Order("timestamp asc, position asc").Find(&markers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query markers for asset %s: %w", assetID, err)
	}
	return markers, nil
}
