package main

import (
	"net/http"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func profileHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		PUT("/profile/rates", func(ctx *gin.Context) {
			var body types.UpdateRatesRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			role := ctx.GetString("role")
			if role != models.ROLE_PHOTOGRAPHER {
				ctx.Status(http.StatusForbidden)
				return
			}
			userId := ctx.GetUint("id")

			updates := map[string]any{}
			rate, err := decimal.NewFromString(body.HourlyRate)
			if err != nil || rate.IsNegative() {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "hourly_rate must be a non-negative decimal"})
				return
			}
			updates["hourly_rate"] = rate
			if body.IsAvailable != nil {
				updates["is_available"] = *body.IsAvailable
			}
			if body.EditingEnabled != nil {
				updates["editing_enabled"] = *body.EditingEnabled
			}
			if body.EditingPricingModel != nil {
				updates["editing_pricing_model"] = *body.EditingPricingModel
			}
			if body.EditingFlatRate != nil {
				flat, err := decimal.NewFromString(*body.EditingFlatRate)
				if err != nil || flat.IsNegative() {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "editing_flat_rate must be a non-negative decimal"})
					return
				}
				updates["editing_flat_rate"] = flat
			}
			if body.EditingPerPhotoRate != nil {
				perPhoto, err := decimal.NewFromString(*body.EditingPerPhotoRate)
				if err != nil || perPhoto.IsNegative() {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "editing_per_photo_rate must be a non-negative decimal"})
					return
				}
				updates["editing_per_photo_rate"] = perPhoto
			}

			d := db.GetDb()
			if err := d.
				Model(&models.User{}).
				Where("id = ?", userId).
				Updates(updates).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			var user models.User
			if err := d.
				Model(&models.User{}).
				Where(&models.User{ID: userId}).
				First(&user).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		GET("/photographers/:id/rates", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			d := db.GetDb()
			var payee models.User
			if err := d.
				Model(&models.User{}).
				Where(&models.User{ID: params.ID, Role: models.ROLE_PHOTOGRAPHER}).
				First(&payee).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"id":                     payee.ID,
				"name":                   payee.Name,
				"hourly_rate":            payee.HourlyRate,
				"is_available":           payee.IsAvailable,
				"editing_enabled":        payee.EditingEnabled,
				"editing_pricing_model":  payee.EditingPricingModel,
				"editing_flat_rate":      payee.EditingFlatRate,
				"editing_per_photo_rate": payee.EditingPerPhotoRate,
			}})
		})
	return g
}
