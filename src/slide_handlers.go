package main

import (
	"log"
	"net/http"

	"rewards/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func slideHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/slides", func(ctx *gin.Context) {
			svc := getSlideService()
			slides, err := svc.List(ctx)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": slides, "count": len(slides)})
		})
	return g
}

func adminSlideHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/slides", func(ctx *gin.Context) {
			var body types.CreateSlideRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getSlideService()
			slide, err := svc.Create(ctx, &body)
			if err != nil {
				log.Printf("Error creating slide: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": slide})
		}).
		PATCH("/slides/:id", func(ctx *gin.Context) {
			var params types.SlideURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateSlideRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getSlideService()
			slide, err := svc.Update(ctx, uuid.MustParse(params.SlideID), &body)
			if err != nil {
				log.Printf("Error updating slide [%s]: %s\n", params.SlideID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": slide})
		}).
		DELETE("/slides/:id", func(ctx *gin.Context) {
			var params types.SlideURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getSlideService()
			if err := svc.Delete(ctx, uuid.MustParse(params.SlideID)); err != nil {
				log.Printf("Error deleting slide [%s]: %s\n", params.SlideID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
