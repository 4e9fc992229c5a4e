package models

import (
	"context"
	"errors"
	"time"

	"github.com/davide122/energy-sub000/config"
	"github.com/davide122/energy-sub000/utils"
	"github.com/google/uuid"
)

// Supplier is an energy provider (electricity/gas) contracts point at.
type Supplier struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Uuid         uuid.UUID `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	Name         string    `gorm:"size:100;not null;unique" json:"name" binding:"required"`
	Email        string    `gorm:"size:100" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Website      string    `gorm:"size:255" json:"website"`
	VatNumber    string    `gorm:"size:32" json:"vat_number"`
	SupportNotes string    `gorm:"type:text" json:"support_notes"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`
	VatNumber    string `json:"vat_number"`
	SupportNotes string `json:"support_notes"`
}

func (input *NewSupplier) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Supplier](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Supplier](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("email", "invalid email")
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	supplier := Supplier{
		Uuid:         uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Website:      input.Website,
		VatNumber:    input.VatNumber,
		SupportNotes: input.SupportNotes,
		IsActive:     utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	var supplier Supplier
	if err := db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		return nil, err
	}

	supplier.Name = input.Name
	supplier.Email = input.Email
	supplier.Phone = input.Phone
	supplier.Website = input.Website
	supplier.VatNumber = input.VatNumber
	supplier.SupportNotes = input.SupportNotes

	if err := db.WithContext(ctx).Save(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func DeleteSupplier(ctx context.Context, id int) (*Supplier, error) {
	db := config.GetDB()

	var supplier Supplier
	if err := db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Contract](ctx, "supplier_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("supplier has contracts")
	}

	if err := db.WithContext(ctx).Delete(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	db := config.GetDB()

	var supplier Supplier
	if err := db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func GetSuppliers(ctx context.Context, name *string) ([]*Supplier, error) {
	db := config.GetDB()

	var suppliers []*Supplier
	query := db.WithContext(ctx).Model(&Supplier{}).Order("name ASC")
	if name != nil && *name != "" {
		query = query.Where("name LIKE ?", "%"+*name+"%").Limit(config.SearchLimit)
	}
	if err := query.Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}
