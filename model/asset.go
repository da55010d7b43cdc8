package model

import "time"

// Asset represents one uploaded source audio file. Assets are immutable once
// created; their bytes live in object storage under ObjectKey.
type Asset struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     int64     `json:"userId" gorm:"index"` // 0 for system-ingested assets
	Filename   string    `json:"filename" gorm:"size:255;not null"`
	Format     string    `json:"format" gorm:"size:8;not null"` // "mp3" or "wav"
	Duration   float64   `json:"duration"`                      // seconds
	ObjectKey  string    `json:"-" gorm:"size:255;not null"`
	UploadedAt time.Time `json:"uploadedAt" gorm:"autoCreateTime"`
}

// TableName overrides the gorm table name.
func (Asset) TableName() string {
	return "assets"
}
