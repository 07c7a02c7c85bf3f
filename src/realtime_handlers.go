package main

import (
	"io"
	"log"
	"net/http"

	"rewards/src/models"

	"github.com/gin-gonic/gin"
)

// streamSnapshots bridges a watcher onto the response as server-sent
// events. Every notification becomes a full "snapshot" event; reload
// failures surface as "error" events without ending the stream.
func streamSnapshots[T any](ctx *gin.Context, watch func(onData func([]T), onError func(error)) func()) {
	snapshots := make(chan []T, 8)
	errs := make(chan error, 1)
	stop := watch(func(rows []T) {
		select {
		case snapshots <- rows:
		default:
			log.Println("[realtime] dropping snapshot: slow client")
		}
	}, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	defer stop()

	ctx.Stream(func(w io.Writer) bool {
		select {
		case rows := <-snapshots:
			ctx.SSEvent("snapshot", rows)
			return true
		case err := <-errs:
			ctx.SSEvent("error", gin.H{"error": err.Error()})
			return true
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}

func realtimeHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/realtime/offers", func(ctx *gin.Context) {
			sub := getFeed()
			if sub == nil {
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			svc := getOfferService()
			streamSnapshots(ctx, func(onData func([]models.Offer), onError func(error)) func() {
				return svc.Watch(ctx, sub, true, onData, onError)
			})
		}).
		GET("/realtime/slides", func(ctx *gin.Context) {
			sub := getFeed()
			if sub == nil {
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			svc := getSlideService()
			streamSnapshots(ctx, func(onData func([]models.Slide), onError func(error)) func() {
				return svc.Watch(ctx, sub, onData, onError)
			})
		}).
		GET("/realtime/transactions", func(ctx *gin.Context) {
			sub := getFeed()
			if sub == nil {
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			uid := ctx.GetString("uid")
			svc := getTransactionService()
			streamSnapshots(ctx, func(onData func([]models.Transaction), onError func(error)) func() {
				return svc.WatchForUser(ctx, sub, uid, onData, onError)
			})
		})
	return g
}

func adminRealtimeHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/realtime/transactions", func(ctx *gin.Context) {
			sub := getFeed()
			if sub == nil {
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			svc := getTransactionService()
			streamSnapshots(ctx, func(onData func([]models.Transaction), onError func(error)) func() {
				return svc.WatchAll(ctx, sub, onData, onError)
			})
		})
	return g
}
