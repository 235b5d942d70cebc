package models

import (
	"gorm.io/gorm"
)

type Warehouse struct {
	gorm.Model
	WhsCode   string `json:"whs_code" gorm:"unique" validate:"required"`
	WhsName   string `json:"whs_name" validate:"required"`
	Address   string `json:"address"`
	Remarks   string `json:"remarks"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}
