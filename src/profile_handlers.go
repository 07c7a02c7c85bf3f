package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"rewards/src/db"
	"rewards/src/lib"
	"rewards/src/models"
	"rewards/src/types"

	"github.com/gin-gonic/gin"
)

func profileHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/me", func(ctx *gin.Context) {
			uid := ctx.GetString("uid")
			svc := getProfileService()
			profile, err := svc.Get(ctx, uid)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": profile})
		}).
		PUT("/me", func(ctx *gin.Context) {
			var body types.UpsertProfileRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			uid := ctx.GetString("uid")
			email := ctx.GetString("email")
			svc := getProfileService()
			profile, err := svc.Upsert(ctx, uid, email, &body)
			if err != nil {
				log.Printf("Error upserting profile [%s]: %s\n", uid, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": profile})
		}).
		POST("/fcm", func(ctx *gin.Context) {
			var body struct {
				Token string `json:"token" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("[FCM] error: %v\n", err)
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			uid := ctx.GetString("uid")
			rd := lib.GetRedisClient()
			if err := rd.Set(context.Background(), fmt.Sprintf("%s:fcm", uid), body.Token, 0).Err(); err != nil {
				log.Printf("[FCM] error saving device token for %s: %s\n", uid, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/notifications", func(ctx *gin.Context) {
			uid := ctx.GetString("uid")
			var notifications []models.Notification
			db := db.GetDb()
			if err := db.
				Model(&models.Notification{}).
				Where("user_id = ?", uid).
				Order("created_at desc").
				Limit(100).
				Find(&notifications).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": notifications, "count": len(notifications)})
		}).
		PUT("/notifications/:id/read", func(ctx *gin.Context) {
			var params struct {
				NotificationID string `uri:"id" binding:"required,uuid"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			uid := ctx.GetString("uid")
			db := db.GetDb()
			if err := db.
				Model(&models.Notification{}).
				Where("id = ? AND user_id = ?", params.NotificationID, uid).
				Update("read", true).
				Error; err != nil {
				log.Printf("Error marking notification [%s] read: %s\n", params.NotificationID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
