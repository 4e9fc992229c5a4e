package main

import (
	"net/http"
	"time"

	"github.com/davide122/energy-sub000/config"
	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/utils"
	"github.com/davide122/energy-sub000/workflow"
	"github.com/gin-gonic/gin"
)

// contractView decorates a contract row with the live derived status the
// listing pages badge on. Status is computed, never stored.
type contractView struct {
	*models.Contract
	Status       models.ContractStatus    `json:"status"`
	DaysToExpiry int                      `json:"days_to_expiry"`
	Modifiable   workflow.ModifiableFlags `json:"modifiable"`
}

func decorateContract(now time.Time, contract *models.Contract) contractView {
	ms := workflow.MilestonesOf(contract)
	view := contractView{
		Contract:   contract,
		Status:     workflow.ClassifyStatus(now, ms),
		Modifiable: workflow.ModifiableOf(now, contract),
	}
	if !ms.ExpiryDate.IsZero() {
		view.DaysToExpiry = workflow.DaysBetween(now, ms.ExpiryDate)
	}
	return view
}

// milestonesFromInput derives the three dates for a create/edit. Always all
// three at once; an edit of any source field replaces the full set.
func milestonesFromInput(input *models.NewContract) (workflow.Milestones, error) {
	startDate, err := utils.ParseDate(input.StartDate)
	if err != nil {
		return workflow.Milestones{}, utils.NewValidationError("start_date", "must be YYYY-MM-DD")
	}
	return workflow.ComputeMilestones(startDate, input.DurationMonths, input.PenaltyFreeAfterMonths)
}

func createContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewContract
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, err)
			return
		}
		ms, err := milestonesFromInput(&input)
		if err != nil {
			writeError(c, err)
			return
		}
		contract, err := models.CreateContract(c.Request.Context(), &input, ms.PenaltyFreeDate, ms.RecommendedDate, ms.ExpiryDate)
		if err != nil {
			writeError(c, err)
			return
		}
		invalidateDashboardCache()
		c.JSON(http.StatusCreated, decorateContract(time.Now().UTC(), contract))
	}
}

func updateContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewContract
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, err)
			return
		}
		ms, err := milestonesFromInput(&input)
		if err != nil {
			writeError(c, err)
			return
		}
		contract, err := models.UpdateContract(c.Request.Context(), id, &input, ms.PenaltyFreeDate, ms.RecommendedDate, ms.ExpiryDate)
		if err != nil {
			writeError(c, err)
			return
		}
		invalidateDashboardCache()
		c.JSON(http.StatusOK, decorateContract(time.Now().UTC(), contract))
	}
}

func deleteContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		contract, err := models.DeleteContract(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		invalidateDashboardCache()
		c.JSON(http.StatusOK, contract)
	}
}

func getContractHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		contract, err := models.GetContract(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, decorateContract(time.Now().UTC(), contract))
	}
}

func listContractsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var clientId *int
		if q := c.Query("client_id"); q != "" {
			if id, err := parsePositiveInt(q); err == nil {
				clientId = &id
			}
		}
		contracts, err := models.GetContracts(c.Request.Context(), clientId)
		if err != nil {
			writeError(c, err)
			return
		}
		now := time.Now().UTC()
		views := make([]contractView, 0, len(contracts))
		for _, contract := range contracts {
			views = append(views, decorateContract(now, contract))
		}
		c.JSON(http.StatusOK, views)
	}
}

func listContractNotificationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		records, err := models.GetNotificationsForContract(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

const dashboardCacheKey = "ContractsDashboard"

// contractsDashboardHandler groups contracts by live status for the
// landing page. Cached briefly in Redis; writes invalidate.
func contractsDashboardHandler() gin.HandlerFunc {
	logger := config.GetLogger()

	return func(c *gin.Context) {
		var cached map[models.ContractStatus][]contractView
		if exists, err := config.GetRedisObject(dashboardCacheKey, &cached); err == nil && exists {
			c.JSON(http.StatusOK, cached)
			return
		}

		contracts, err := models.GetContracts(c.Request.Context(), nil)
		if err != nil {
			writeError(c, err)
			return
		}

		now := time.Now().UTC()
		grouped := map[models.ContractStatus][]contractView{}
		for _, contract := range contracts {
			view := decorateContract(now, contract)
			grouped[view.Status] = append(grouped[view.Status], view)
		}

		if err := config.SetRedisObject(dashboardCacheKey, grouped, 5*time.Minute); err != nil {
			config.LogError(logger, "contractHandlers.go", "contractsDashboardHandler", "SetRedisObject", nil, err)
		}
		c.JSON(http.StatusOK, grouped)
	}
}

func invalidateDashboardCache() {
	_ = config.RemoveRedisKey(dashboardCacheKey)
}

func parsePositiveInt(s string) (int, error) {
	id := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, utils.NewValidationError("id", "must be a positive integer")
		}
		id = id*10 + int(r-'0')
	}
	if id <= 0 {
		return 0, utils.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
