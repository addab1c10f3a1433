package models

import "gorm.io/gorm"

// LocationReport is a crowdsourced "unsafe location" record, optionally
// with an uploaded area image and the reporter's coordinates.
type LocationReport struct {
	BaseModel
	LocationName  string   `json:"location_name" validate:"required" gorm:"not null"`
	AreaImagePath string   `json:"area_img,omitempty"`
	Surrounding   string   `json:"surrounding,omitempty"`
	Rating        *int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Description   string   `json:"description,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	CreatedByID   *uint    `json:"created_by_id,omitempty"`
	CreatedBy     *User    `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

func CreateLocationReport(report *LocationReport) error {
	return db.Create(report).Error
}

// AllLocationReports returns reports newest first, with the reporting user
// preloaded for display.
func AllLocationReports() ([]LocationReport, error) {
	reports := []LocationReport{}

	// Never load password hashes along with the reporter
	err := db.Preload("CreatedBy", func(tx *gorm.DB) *gorm.DB {
		return tx.Select(allFieldsExceptPassword)
	}).Order("created_at DESC").Limit(500).Find(&reports).Error
	if err != nil {
		return nil, err
	}

	return reports, nil
}
