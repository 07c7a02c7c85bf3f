package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path"

	"rewards/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeqown/go-qrcode"
)

func offerHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/offers", func(ctx *gin.Context) {
			svc := getOfferService()
			offers, err := svc.List(ctx, true)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": offers, "count": len(offers)})
		}).
		GET("/offers/:id", func(ctx *gin.Context) {
			var params types.OfferURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getOfferService()
			offer, err := svc.Get(ctx, uuid.MustParse(params.OfferID))
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": offer})
		}).
		GET("/offers/:id/qr", func(ctx *gin.Context) {
			var params types.OfferURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getOfferService()
			offer, err := svc.Get(ctx, uuid.MustParse(params.OfferID))
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if offer.StoreURL == nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "offer has no store link"})
				return
			}
			qrc, err := qrcode.New(*offer.StoreURL)
			if err != nil {
				log.Printf("Error generating qrcode for offer [%s]: %s\n", offer.Slug, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			filepath := path.Join(tempdir, fmt.Sprintf("%s.jpeg", offer.Slug))
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.FileAttachment(filepath, fmt.Sprintf("%s.jpeg", offer.Slug))
		})
	return g
}

func adminOfferHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/offers", func(ctx *gin.Context) {
			svc := getOfferService()
			offers, err := svc.List(ctx, false)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": offers, "count": len(offers)})
		}).
		POST("/offers", func(ctx *gin.Context) {
			var body types.CreateOfferRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getOfferService()
			offer, err := svc.Create(ctx, &body)
			if err != nil {
				log.Printf("Error creating offer: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": offer})
		}).
		PATCH("/offers/:id", func(ctx *gin.Context) {
			var params types.OfferURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateOfferRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getOfferService()
			offer, err := svc.Update(ctx, uuid.MustParse(params.OfferID), &body)
			if err != nil {
				log.Printf("Error updating offer [%s]: %s\n", params.OfferID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": offer})
		}).
		PATCH("/offers/:id/visibility", func(ctx *gin.Context) {
			var params types.OfferURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body struct {
				Active *bool `json:"active" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getOfferService()
			offer, err := svc.SetVisibility(ctx, uuid.MustParse(params.OfferID), *body.Active)
			if err != nil {
				log.Printf("Error updating offer visibility [%s]: %s\n", params.OfferID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": offer})
		}).
		DELETE("/offers/:id", func(ctx *gin.Context) {
			var params types.OfferURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getOfferService()
			if err := svc.Delete(ctx, uuid.MustParse(params.OfferID)); err != nil {
				log.Printf("Error deleting offer [%s]: %s\n", params.OfferID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
