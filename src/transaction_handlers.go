package main

import (
	"log"
	"net/http"

	"rewards/src/config"
	awslib "rewards/src/lib/aws"
	"rewards/src/models"
	"rewards/src/services"
	"rewards/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func transactionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/offers/:id/transactions", func(ctx *gin.Context) {
			var params types.OfferURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.InitiateTransactionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			uid := ctx.GetString("uid")
			offerId := uuid.MustParse(params.OfferID)

			input := services.CreateTransactionInput{
				UserID:     uid,
				OfferID:    offerId,
				OfferTitle: body.OfferTitle,
				OfferIcon:  body.OfferIcon,
				Amount:     body.Amount,
			}
			if body.OfferTitle == nil || body.Amount == nil {
				offer, err := getOfferService().Get(ctx, offerId)
				if err != nil {
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				if input.OfferTitle == nil {
					input.OfferTitle = &offer.Title
				}
				if input.OfferIcon == nil {
					input.OfferIcon = offer.Icon
				}
				if input.Amount == nil {
					input.Amount = &offer.Amount
				}
			}

			svc := getTransactionService()
			txn, err := svc.CreateOrReuseActive(ctx, input)
			if err != nil {
				log.Printf("Error initiating transaction for offer [%s]: %s\n", params.OfferID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": txn})
		}).
		GET("/transactions", func(ctx *gin.Context) {
			uid := ctx.GetString("uid")
			svc := getTransactionService()
			txns, err := svc.ListForUser(ctx, uid)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txns, "count": len(txns)})
		}).
		PATCH("/transactions/:id/proof", func(ctx *gin.Context) {
			var params types.TransactionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.SubmitProofRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			uid := ctx.GetString("uid")
			svc := getTransactionService()
			txn, err := svc.SubmitProof(ctx, uuid.MustParse(params.TransactionID), uid, body.ProofURL)
			if err != nil {
				log.Printf("Error submitting proof for transaction [%s]: %s\n", params.TransactionID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txn})
		}).
		POST("/transactions/:id/proof-upload", func(ctx *gin.Context) {
			var params types.TransactionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			uid := ctx.GetString("uid")
			svc := getTransactionService()
			txn, err := svc.Get(ctx, uuid.MustParse(params.TransactionID))
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if txn.UserID != uid {
				ctx.Status(http.StatusForbidden)
				return
			}
			uploadURL, objectURL, err := awslib.S3PresignProofUpload(params.TransactionID)
			if err != nil {
				log.Printf("Error presigning proof upload for [%s]: %s\n", params.TransactionID, err.Error())
				ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"upload_url": uploadURL, "proof_url": objectURL})
		})
	return g
}

func adminTransactionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/transactions", func(ctx *gin.Context) {
			svc := getTransactionService()
			txns, err := svc.ListAll(ctx)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txns, "count": len(txns)})
		}).
		GET("/transactions/:id/proof", func(ctx *gin.Context) {
			var params types.TransactionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			svc := getTransactionService()
			txn, err := svc.Get(ctx, uuid.MustParse(params.TransactionID))
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if txn.ProofURL == nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "no proof submitted"})
				return
			}
			url, err := awslib.S3PresignProofDownload(params.TransactionID)
			if err != nil {
				log.Printf("Error presigning proof download for [%s]: %s\n", params.TransactionID, err.Error())
				ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": url})
		}).
		PATCH("/transactions/:id/status", func(ctx *gin.Context) {
			var params types.TransactionURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ReviewTransactionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reviewer := ctx.GetString("uid")
			txnId := uuid.MustParse(params.TransactionID)
			svc := getTransactionService()
			txn, err := svc.UpdateStatus(ctx, txnId, body.Status, services.ReviewOptions{
				Notes:      body.Notes,
				ReviewedBy: &reviewer,
				ReviewedAt: body.ReviewedAt,
			})
			if err != nil {
				log.Printf("Error reviewing transaction [%s]: %s\n", params.TransactionID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if config.ApiEnv() != "test" {
				go models.TransactionReviewedProducer(txnId, map[string]any{
					"transaction_id": txnId.String(),
					"status":         txn.Status,
					"reviewed_by":    reviewer,
				})
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txn})
		})
	return g
}
