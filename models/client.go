package models

import (
	"context"
	"errors"
	"time"

	"github.com/davide122/energy-sub000/config"
	"github.com/davide122/energy-sub000/utils"
	"github.com/google/uuid"
)

type Client struct {
	ID               int                 `gorm:"primary_key" json:"id"`
	Uuid             uuid.UUID           `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	Name             string              `gorm:"size:100;not null;index" json:"name" binding:"required"`
	Email            string              `gorm:"size:100" json:"email"`
	Phone            string              `gorm:"size:20" json:"phone"`
	Address          string              `gorm:"size:255" json:"address"`
	City             string              `gorm:"size:100" json:"city"`
	FiscalCode       string              `gorm:"size:32" json:"fiscal_code"`
	Notes            string              `gorm:"type:text" json:"notes"`
	PreferredChannel NotificationChannel `gorm:"type:enum('EMAIL','SMS','WHATSAPP','DASHBOARD');default:'EMAIL'" json:"preferred_channel"`
	IsActive         *bool               `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClient struct {
	Name             string              `json:"name" binding:"required"`
	Email            string              `json:"email"`
	Phone            string              `json:"phone"`
	Address          string              `json:"address"`
	City             string              `json:"city"`
	FiscalCode       string              `json:"fiscal_code"`
	Notes            string              `json:"notes"`
	PreferredChannel NotificationChannel `json:"preferred_channel"`
}

func (input *NewClient) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Client](ctx, id); err != nil {
			return err
		}
	}
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return utils.NewValidationError("email", "invalid email")
		}
		if err := utils.ValidateUnique[Client](ctx, "email", input.Email, id); err != nil {
			return err
		}
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("phone", err.Error())
		}
	}
	if input.PreferredChannel != "" && input.PreferredChannel != NotificationChannelDashboard &&
		!input.PreferredChannel.IsExternal() {
		return utils.NewValidationError("preferred_channel", "unknown channel")
	}
	return nil
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	preferred := input.PreferredChannel
	if preferred == "" {
		preferred = NotificationChannelEmail
	}

	client := Client{
		Uuid:             uuid.New(),
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		Address:          input.Address,
		City:             input.City,
		FiscalCode:       input.FiscalCode,
		Notes:            input.Notes,
		PreferredChannel: preferred,
		IsActive:         utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func UpdateClient(ctx context.Context, id int, input *NewClient) (*Client, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	var client Client
	if err := db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}

	client.Name = input.Name
	client.Email = input.Email
	client.Phone = input.Phone
	client.Address = input.Address
	client.City = input.City
	client.FiscalCode = input.FiscalCode
	client.Notes = input.Notes
	if input.PreferredChannel != "" {
		client.PreferredChannel = input.PreferredChannel
	}

	if err := db.WithContext(ctx).Save(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func DeleteClient(ctx context.Context, id int) (*Client, error) {
	db := config.GetDB()

	var client Client
	if err := db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}

	// Don't delete a client that still owns contracts.
	count, err := utils.ResourceCountWhere[Contract](ctx, "client_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("client has contracts")
	}

	if err := db.WithContext(ctx).Delete(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func GetClient(ctx context.Context, id int) (*Client, error) {
	db := config.GetDB()

	var client Client
	if err := db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func GetClients(ctx context.Context, name *string) ([]*Client, error) {
	db := config.GetDB()

	var clients []*Client
	query := db.WithContext(ctx).Model(&Client{}).Order("name ASC")
	if name != nil && *name != "" {
		query = query.Where("name LIKE ?", "%"+*name+"%").Limit(config.SearchLimit)
	}
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func ToggleActiveClient(ctx context.Context, id int, isActive bool) (*Client, error) {
	db := config.GetDB()

	var client Client
	if err := db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	client.IsActive = &isActive
	if err := db.WithContext(ctx).Save(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}
