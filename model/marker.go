package model

// Marker is a single timestamp annotation on a source asset. A marker set is
// always replaced wholesale; there is no incremental patch path.
type Marker struct {
	ID        int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	AssetID   string  `json:"-" gorm:"size:36;index;not null"`
	Timestamp float64 `json:"timestamp" gorm:"not null"`
	Position  int     `json:"order" gorm:"column:position;not null"`
}

// TableName overrides the gorm table name.
func (Marker) TableName() string {
	return "markers"
}
