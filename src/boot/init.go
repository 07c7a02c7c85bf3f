package boot

import (
	"context"
	"fmt"
	"log"

	"rewards/src/common"
	"rewards/src/config"
	"rewards/src/db"
	"rewards/src/events"
	"rewards/src/lib"
	"rewards/src/models"
	"rewards/src/services"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Profile{},
		&models.Offer{},
		&models.Slide{},
		&models.Transaction{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics(models.TransactionsReviewedTopic)
	go common.TransactionsReviewedConsumer()
}

// InitScheduler starts the hourly reminder sweep over stale pending
// reviews. Jobs only nudge admins; they never touch transaction status.
func InitScheduler() {
	id, err := lib.CreateCronJob(RemindStalePendingReviews, config.PendingReviewReminderInterval)
	if err != nil {
		log.Printf("Error scheduling review reminder job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s\n", *id)
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// RemindStalePendingReviews writes one reminder notification per admin for
// every transaction stuck in pending beyond the reminder age. A reminder
// is only written once per transaction.
func RemindStalePendingReviews() {
	db := db.GetDb()
	txns := services.NewTransactionService(db, events.NewBus[models.Transaction](), nil)

	stale, err := txns.StalePending(context.Background(), config.PendingReviewReminderAge)
	if err != nil {
		log.Printf("Error retrieving stale pending transactions: %s\n", err.Error())
		return
	}
	if len(stale) == 0 {
		return
	}
	log.Printf("Found %d stale pending transactions", len(stale))

	admins, err := services.NewProfileService(db).ListAdmins(context.Background())
	if err != nil {
		log.Printf("Error retrieving admins: %s\n", err.Error())
		return
	}

	for _, txn := range stale {
		var count int64
		if err := db.
			Model(&models.Notification{}).
			Where("reference_type = ? AND reference_id = ?", "review-reminder", txn.ID.String()).
			Count(&count).
			Error; err != nil || count > 0 {
			continue
		}
		body := fmt.Sprintf("Attempt for %s has been waiting on review since %s.", txn.OfferTitle, txn.CreatedAt.Format(config.TIME_PARSE_FORMAT))
		for _, admin := range admins {
			note := models.Notification{
				UserID:        admin.ID,
				Title:         "Review overdue",
				Body:          &body,
				ReferenceType: "review-reminder",
				ReferenceID:   txn.ID.String(),
			}
			if err := db.Create(&note).Error; err != nil {
				log.Printf("Error saving reminder for admin %s: %s\n", admin.ID, err.Error())
			}
		}
	}
}
