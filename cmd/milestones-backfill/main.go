// milestones-backfill recomputes the derived contract dates (penalty-free,
// recommended, expiry) for the whole register and writes back any rows where
// the stored values are missing or disagree with the recomputation. Useful
// after importing legacy data or changing duration fields by hand.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	go run ./cmd/milestones-backfill [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/davide122/energy-sub000/config"
	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/workflow"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Report what would change without writing")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	var contracts []*models.Contract
	if err := db.WithContext(ctx).Model(&models.Contract{}).Order("id ASC").Find(&contracts).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to list contracts: %v\n", err)
		os.Exit(1)
	}

	var updated, skipped, invalid int
	for _, contract := range contracts {
		ms, err := workflow.ComputeMilestones(contract.StartDate, contract.DurationMonths, contract.PenaltyFreeAfterMonths)
		if err != nil {
			invalid++
			fmt.Fprintf(os.Stderr, "contract %d: cannot recompute milestones: %v\n", contract.ID, err)
			continue
		}
		if milestonesMatch(contract, ms) {
			skipped++
			continue
		}
		if *dryRun {
			fmt.Printf("contract %d: would set penalty_free=%s recommended=%s expiry=%s\n",
				contract.ID, ms.PenaltyFreeDate.Format("2006-01-02"),
				ms.RecommendedDate.Format("2006-01-02"), ms.ExpiryDate.Format("2006-01-02"))
			updated++
			continue
		}
		if err := models.UpdateContractMilestones(ctx, contract.ID, ms.PenaltyFreeDate, ms.RecommendedDate, ms.ExpiryDate); err != nil {
			fmt.Fprintf(os.Stderr, "contract %d: write-back failed: %v\n", contract.ID, err)
			continue
		}
		updated++
	}

	fmt.Printf("done: %d contracts, %d updated, %d already consistent, %d invalid\n",
		len(contracts), updated, skipped, invalid)
}

func milestonesMatch(contract *models.Contract, ms workflow.Milestones) bool {
	return sameDate(contract.PenaltyFreeDate, ms.PenaltyFreeDate) &&
		sameDate(contract.RecommendedDate, ms.RecommendedDate) &&
		sameDate(contract.ExpiryDate, ms.ExpiryDate)
}

func sameDate(stored *time.Time, computed time.Time) bool {
	if stored == nil {
		return false
	}
	y1, m1, d1 := stored.Date()
	y2, m2, d2 := computed.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
