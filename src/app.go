package main

import (
	"sync"

	"rewards/src/config"
	"rewards/src/db"
	"rewards/src/events"
	"rewards/src/lib"
	"rewards/src/models"
	"rewards/src/realtime"
	"rewards/src/services"
)

var (
	appOnce sync.Once

	txnBus     *events.Bus[models.Transaction]
	feed       *realtime.Feed
	txnSvc     *services.TransactionService
	offerSvc   *services.OfferService
	slideSvc   *services.SlideService
	profileSvc *services.ProfileService
)

// initApp wires the singleton services. The change feed is only attached
// outside of tests; the services tolerate a nil feed.
func initApp() {
	appOnce.Do(func() {
		var pub realtime.Publisher
		if config.ApiEnv() != "test" {
			feed = realtime.NewFeed(lib.GetRedisClient())
			pub = feed
		}
		gdb := db.GetDb()
		txnBus = events.NewBus[models.Transaction]()
		txnSvc = services.NewTransactionService(gdb, txnBus, pub)
		if config.ApiEnv() != "test" {
			// Same-tick fanout: the mobile client hears about every
			// lifecycle mutation on its own channel.
			txnSvc.Subscribe(func(txn models.Transaction) {
				go lib.PusherTriggerUser(txn.UserID, "transaction", txn)
			})
		}
		offerSvc = services.NewOfferService(gdb, pub)
		slideSvc = services.NewSlideService(gdb, pub)
		profileSvc = services.NewProfileService(gdb)
	})
}

func getTransactionService() *services.TransactionService {
	initApp()
	return txnSvc
}

func getOfferService() *services.OfferService {
	initApp()
	return offerSvc
}

func getSlideService() *services.SlideService {
	initApp()
	return slideSvc
}

func getProfileService() *services.ProfileService {
	initApp()
	return profileSvc
}

func getFeed() *realtime.Feed {
	initApp()
	return feed
}
