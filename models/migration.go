package models

import (
	"log"

	"github.com/davide122/energy-sub000/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Client{},
		&Supplier{},
		&Contract{},
		&NotificationRecord{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
