package common

import (
	"context"
	"fmt"
	"log"

	"rewards/src/db"
	"rewards/src/lib"
	"rewards/src/models"
	"rewards/src/types"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionsReviewedConsumer drains the review-decision topic and fans
// each decision out to the affected user: persisted notification, FCM
// push, email. Blocking; run on its own goroutine from boot.
func TransactionsReviewedConsumer() {
	lib.KafkaConsumeTopic("transactions_reviewed_consumer", models.TransactionsReviewedTopic, handleReviewDecision)
}

func handleReviewDecision(payload map[string]any) {
	idValue, _ := payload["transaction_id"].(string)
	txnId, err := uuid.Parse(idValue)
	if err != nil {
		log.Printf("[ReviewConsumer] Skipping message with bad transaction id %q: %s\n", idValue, err.Error())
		return
	}

	var txn models.Transaction
	var profile models.Profile
	db := db.GetDb()
	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Transaction{}).
			Where("id = ?", txnId).
			First(&txn).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Profile{}).
			Where("id = ?", txn.UserID).
			First(&profile).
			Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		log.Printf("[ReviewConsumer] Error on running database transaction: %s\n", err.Error())
		return
	}

	title, body := reviewMessage(txn)
	refBody := types.JSONB{"status": string(txn.Status), "amount": txn.Amount}
	note := models.Notification{
		UserID:        txn.UserID,
		Title:         title,
		Body:          &body,
		ReferenceType: "transaction",
		ReferenceID:   txn.ID.String(),
		ReferenceBody: &refBody,
	}
	if err := db.Create(&note).Error; err != nil {
		log.Printf("[ReviewConsumer] Error saving notification: %s\n", err.Error())
	}

	sendReviewPush(txn.UserID, title, body)

	if profile.Email != "" {
		if err := lib.SendMail(&lib.SendMailInput{
			From:     "rewards@example.com",
			FromName: "Rewards",
			To:       []string{profile.Email},
			Subject:  title,
			Body:     body,
		}); err != nil {
			log.Printf("[ReviewConsumer] Error sending mail to %s: %s\n", profile.Email, err.Error())
		}
	}
}

func sendReviewPush(uid string, title string, body string) {
	ctx := context.Background()
	rd := lib.GetRedisClient()
	fcmToken := rd.Get(ctx, fmt.Sprintf("%s:fcm", uid)).Val()
	if fcmToken == "" {
		return
	}
	fcm, _ := lib.GetFirebaseMessaging()
	res, err := fcm.Send(ctx, &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		log.Printf("[FCM] error sending notification message: %s\n", err.Error())
		return
	}
	log.Printf("[FCM] notification sent to %s: %s\n", uid, res)
}

func reviewMessage(txn models.Transaction) (title string, body string) {
	switch txn.Status {
	case types.TRANSACTION_PAID:
		title = "Reward paid"
		if txn.Amount != nil {
			body = fmt.Sprintf("Your reward of %.2f for %s has been paid.", *txn.Amount, txn.OfferTitle)
		} else {
			body = fmt.Sprintf("Your reward for %s has been paid.", txn.OfferTitle)
		}
	case types.TRANSACTION_REJECTED:
		title = "Attempt rejected"
		body = fmt.Sprintf("Your attempt for %s was rejected.", txn.OfferTitle)
		if txn.Notes != nil {
			body = fmt.Sprintf("%s Reason: %s", body, *txn.Notes)
		}
	default:
		title = "Attempt under review"
		body = fmt.Sprintf("Your attempt for %s is back in review.", txn.OfferTitle)
	}
	return title, body
}
