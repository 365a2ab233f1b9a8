package types

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Street    string    `gorm:"column:street;not null" json:"street"`
	City      string    `gorm:"column:city" json:"city"`
	State     string    `gorm:"column:state" json:"state"`
	ZipCode   string    `gorm:"column:zip_code" json:"zip_code"`
	YearBuilt int       `gorm:"column:year_built" json:"year_built"`
	Sqft      *int      `gorm:"column:sqft" json:"sqft,omitempty"`

	// Set together by the utility-bill upload path.
	UtilityBillURL  string `gorm:"column:utility_bill_url" json:"utility_bill_url,omitempty"`
	UtilityBillName string `gorm:"column:utility_bill_name" json:"utility_bill_name,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Property) TableName() string { return "property" }
