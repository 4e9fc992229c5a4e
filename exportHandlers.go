package main

import (
	"fmt"
	"time"

	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/workflow"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportDateLayout = "02/01/2006"

// exportContractsHandler streams the contract register as an XLSX workbook,
// one row per contract with the derived dates and live status included.
func exportContractsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contracts, err := models.GetContracts(c.Request.Context(), nil)
		if err != nil {
			writeError(c, err)
			return
		}

		f := excelize.NewFile()
		sheet := "Contracts"
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			writeError(c, err)
			return
		}

		headings := []string{
			"Client", "Supplier", "Type", "POD/PDR", "Start Date",
			"Duration (months)", "Penalty Free After (months)",
			"Penalty Free Date", "Recommended Date", "Expiry Date",
			"Status", "Days To Expiry", "Unit Price", "Estimated Annual Cost",
			"Active",
		}
		col := 'A'
		for _, h := range headings {
			f.SetCellValue(sheet, string(col)+"1", h)
			col++
		}

		now := time.Now().UTC()
		for i, contract := range contracts {
			ms := workflow.MilestonesOf(contract)
			row := fmt.Sprint(i + 2)
			daysToExpiry := ""
			if !ms.ExpiryDate.IsZero() {
				daysToExpiry = fmt.Sprint(workflow.DaysBetween(now, ms.ExpiryDate))
			}
			values := []interface{}{
				contract.ClientDisplayName(),
				supplierName(contract),
				string(contract.ContractType),
				contract.Pod,
				contract.StartDate.Format(exportDateLayout),
				contract.DurationMonths,
				contract.PenaltyFreeAfterMonths,
				formatOptionalDate(contract.PenaltyFreeDate),
				formatOptionalDate(contract.RecommendedDate),
				formatOptionalDate(contract.ExpiryDate),
				string(workflow.ClassifyStatus(now, ms)),
				daysToExpiry,
				contract.UnitPrice.String(),
				contract.EstimatedAnnualCost.String(),
				contract.IsActive != nil && *contract.IsActive,
			}
			col := 'A'
			for _, v := range values {
				f.SetCellValue(sheet, string(col)+row, v)
				col++
			}
		}

		filename := "contracts-" + now.Format("2006-01-02") + ".xlsx"
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := f.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}

func supplierName(contract *models.Contract) string {
	if contract.Supplier != nil {
		return contract.Supplier.Name
	}
	return ""
}

func formatOptionalDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(exportDateLayout)
}
