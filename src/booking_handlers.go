package main

import (
	"errors"
	"net/http"
	"pbs/src/common"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
)

// lifecycleErrorStatus maps lifecycle errors onto response codes shared by
// the booking and editing surfaces.
func lifecycleErrorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrPayeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, types.ErrWrongSourceState),
		errors.Is(err, types.ErrPayeeUnavailable),
		errors.Is(err, types.ErrDuplicateRequest),
		errors.Is(err, types.ErrEditingDisabled):
		return http.StatusConflict
	case errors.Is(err, types.ErrPhotoCountRequired):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrPaymentAuthorizationFailed),
		errors.Is(err, types.ErrPaymentCaptureFailed),
		errors.Is(err, types.ErrPaymentCaptureExpired):
		return http.StatusPaymentRequired
	default:
		return http.StatusUnprocessableEntity
	}
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			customerId := ctx.GetUint("id")
			booking, err := common.CreateBooking(ctx.Request.Context(), customerId, &body)
			if err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			var bookings []models.Booking
			var err error
			if role == models.ROLE_PHOTOGRAPHER {
				bookings, err = common.ListPayeeBookings(ctx.Request.Context(), userId)
			} else {
				bookings, err = common.ListCustomerBookings(ctx.Request.Context(), userId)
			}
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			d := db.GetDb()
			var booking models.Booking
			if err := d.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID}).
				Preload("Customer").
				Preload("Payee").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if booking.CustomerID != userId && booking.PayeeID != userId {
				ctx.Status(http.StatusForbidden)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PUT("/bookings/:id/accept", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			payeeId := ctx.GetUint("id")
			booking, err := common.AcceptBooking(ctx.Request.Context(), payeeId, params.ID)
			if err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PUT("/bookings/:id/decline", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			payeeId := ctx.GetUint("id")
			if err := common.DeclineBooking(ctx.Request.Context(), payeeId, params.ID); err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := common.CancelBooking(ctx.Request.Context(), userId, params.ID); err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/bookings/:id/dismiss", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := common.DismissBooking(userId, params.ID); err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/bookings/:id/delivery", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.PhotoDeliveryRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			payeeId := ctx.GetUint("id")
			delivery, err := common.RecordPhotoDelivery(payeeId, params.ID, body.PhotoUrls)
			if err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": delivery})
		}).
		GET("/bookings/:id/gallery", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			d := db.GetDb()
			var booking models.Booking
			if err := d.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID}).
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if booking.CustomerID != userId && booking.PayeeID != userId {
				ctx.Status(http.StatusForbidden)
				return
			}
			links, err := common.PhotoGalleryLinks(ctx.Request.Context(), params.ID)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": links, "count": len(links)})
		})
	return g
}
