package models

import (
	"context"
	"errors"
	"time"

	"github.com/davide122/energy-sub000/config"
	"github.com/davide122/energy-sub000/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract is an energy supply agreement. The three derived dates are
// persisted for query efficiency but always recomputable from StartDate,
// DurationMonths and PenaltyFreeAfterMonths; any edit of those three fields
// replaces all derived dates at once, never a partial patch.
type Contract struct {
	ID                     int             `gorm:"primary_key" json:"id"`
	Uuid                   uuid.UUID       `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	ClientId               int             `gorm:"not null;index" json:"client_id" binding:"required"`
	Client                 *Client         `json:"client"`
	SupplierId             int             `gorm:"not null;index" json:"supplier_id" binding:"required"`
	Supplier               *Supplier       `json:"supplier"`
	ContractType           ContractType    `gorm:"type:enum('ELECTRICITY','GAS');not null" json:"contract_type" binding:"required"`
	Pod                    string          `gorm:"size:32" json:"pod"` // POD/PDR meter point code
	StartDate              time.Time       `gorm:"type:date;not null" json:"start_date" binding:"required"`
	DurationMonths         int             `gorm:"not null" json:"duration_months" binding:"required"`
	PenaltyFreeAfterMonths int             `gorm:"not null" json:"penalty_free_after_months" binding:"required"`
	PenaltyFreeDate        *time.Time      `gorm:"type:date" json:"penalty_free_date"`
	RecommendedDate        *time.Time      `gorm:"type:date" json:"recommended_date"`
	ExpiryDate             *time.Time      `gorm:"type:date" json:"expiry_date"`
	UnitPrice              decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"unit_price"`
	EstimatedAnnualCost    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"estimated_annual_cost"`
	Notes                  string          `gorm:"type:text" json:"notes"`
	IsActive               *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewContract struct {
	ClientId               int             `json:"client_id" binding:"required"`
	SupplierId             int             `json:"supplier_id" binding:"required"`
	ContractType           ContractType    `json:"contract_type" binding:"required"`
	Pod                    string          `json:"pod"`
	StartDate              string          `json:"start_date" binding:"required"` // YYYY-MM-DD
	DurationMonths         int             `json:"duration_months" binding:"required,min=1,max=60"`
	PenaltyFreeAfterMonths int             `json:"penalty_free_after_months" binding:"required,min=1"`
	UnitPrice              decimal.Decimal `json:"unit_price"`
	EstimatedAnnualCost    decimal.Decimal `json:"estimated_annual_cost"`
	Notes                  string          `json:"notes"`
}

// HasAllMilestones reports whether the three derived dates are present.
// Missing dates are self-healed by the dispatch cycle before eligibility.
func (c *Contract) HasAllMilestones() bool {
	return c.PenaltyFreeDate != nil && !c.PenaltyFreeDate.IsZero() &&
		c.RecommendedDate != nil && !c.RecommendedDate.IsZero() &&
		c.ExpiryDate != nil && !c.ExpiryDate.IsZero()
}

func (c *Contract) ClientDisplayName() string {
	if c.Client != nil {
		return c.Client.Name
	}
	return ""
}

func (input *NewContract) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Contract](ctx, id); err != nil {
			return err
		}
	}
	if !input.ContractType.IsValid() {
		return utils.NewValidationError("contract_type", "must be ELECTRICITY or GAS")
	}
	if err := utils.ValidateResourceId[Client](ctx, input.ClientId); err != nil {
		return errors.New("client not found")
	}
	if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
		return errors.New("supplier not found")
	}
	if _, err := utils.ParseDate(input.StartDate); err != nil {
		return utils.NewValidationError("start_date", "must be YYYY-MM-DD")
	}
	return nil
}

// CreateContract persists a contract together with its derived dates. The
// dates are computed by the caller (workflow.ComputeMilestones) so the
// lifecycle rules live in one place.
func CreateContract(ctx context.Context, input *NewContract, penaltyFree, recommended, expiry time.Time) (*Contract, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	startDate, err := utils.ParseDate(input.StartDate)
	if err != nil {
		return nil, utils.NewValidationError("start_date", "must be YYYY-MM-DD")
	}

	contract := Contract{
		Uuid:                   uuid.New(),
		ClientId:               input.ClientId,
		SupplierId:             input.SupplierId,
		ContractType:           input.ContractType,
		Pod:                    input.Pod,
		StartDate:              startDate,
		DurationMonths:         input.DurationMonths,
		PenaltyFreeAfterMonths: input.PenaltyFreeAfterMonths,
		PenaltyFreeDate:        &penaltyFree,
		RecommendedDate:        &recommended,
		ExpiryDate:             &expiry,
		UnitPrice:              input.UnitPrice,
		EstimatedAnnualCost:    input.EstimatedAnnualCost,
		Notes:                  input.Notes,
		IsActive:               utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// UpdateContract replaces the contract fields and all three derived dates.
func UpdateContract(ctx context.Context, id int, input *NewContract, penaltyFree, recommended, expiry time.Time) (*Contract, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	startDate, err := utils.ParseDate(input.StartDate)
	if err != nil {
		return nil, utils.NewValidationError("start_date", "must be YYYY-MM-DD")
	}

	var contract Contract
	if err := db.WithContext(ctx).First(&contract, id).Error; err != nil {
		return nil, err
	}

	contract.ClientId = input.ClientId
	contract.SupplierId = input.SupplierId
	contract.ContractType = input.ContractType
	contract.Pod = input.Pod
	contract.StartDate = startDate
	contract.DurationMonths = input.DurationMonths
	contract.PenaltyFreeAfterMonths = input.PenaltyFreeAfterMonths
	contract.PenaltyFreeDate = &penaltyFree
	contract.RecommendedDate = &recommended
	contract.ExpiryDate = &expiry
	contract.UnitPrice = input.UnitPrice
	contract.EstimatedAnnualCost = input.EstimatedAnnualCost
	contract.Notes = input.Notes

	if err := db.WithContext(ctx).Save(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// UpdateContractMilestones writes back refreshed derived dates only
// (self-healing backfill path; the three source fields are untouched).
func UpdateContractMilestones(ctx context.Context, id int, penaltyFree, recommended, expiry time.Time) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&Contract{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"penalty_free_date": penaltyFree,
			"recommended_date":  recommended,
			"expiry_date":       expiry,
		}).Error
}

func DeleteContract(ctx context.Context, id int) (*Contract, error) {
	db := config.GetDB()

	var contract Contract
	if err := db.WithContext(ctx).First(&contract, id).Error; err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Delete(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func GetContract(ctx context.Context, id int) (*Contract, error) {
	db := config.GetDB()

	var contract Contract
	if err := db.WithContext(ctx).Preload("Client").Preload("Supplier").
		First(&contract, id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetContracts lists contracts with client and supplier preloaded,
// optionally filtered by client.
func GetContracts(ctx context.Context, clientId *int) ([]*Contract, error) {
	db := config.GetDB()

	var contracts []*Contract
	query := db.WithContext(ctx).Model(&Contract{}).
		Preload("Client").Preload("Supplier").
		Order("expiry_date ASC")
	if clientId != nil && *clientId > 0 {
		query = query.Where("client_id = ?", *clientId)
	}
	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// GetActiveContracts returns the batch a notification cycle evaluates.
func GetActiveContracts(ctx context.Context) ([]*Contract, error) {
	db := config.GetDB()

	var contracts []*Contract
	if err := db.WithContext(ctx).Model(&Contract{}).
		Preload("Client").Preload("Supplier").
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}
