package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"pbs/src/common"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		reconcileStripeEvent(event)
		ctx.Status(http.StatusOK)
	})
	return apiv1
}

// reconcileStripeEvent folds a verified gateway event back into local state.
// Unknown event types are ignored.
func reconcileStripeEvent(event stripe.Event) {
	switch event.Type {
	case "payment_intent.canceled":
		// The gateway resolved a hold on its own, usually an authorization
		// aging out. Expire the pending booking it belonged to; a booking
		// already resolved the other way keeps its status.
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
			break
		}
		d := db.GetDb()
		res := d.
			Model(&models.Booking{}).
			Where("payment_reference = ? AND status = ?", pi.ID, types.BOOKING_PENDING).
			Update("status", types.BOOKING_EXPIRED)
		if res.Error != nil {
			log.Printf("[Stripe] Error reconciling canceled intent %s: %s\n", pi.ID, res.Error.Error())
			break
		}
		if res.RowsAffected > 0 {
			log.Printf("[Stripe] Expired booking for canceled intent %s\n", pi.ID)
		}
	case "account.updated":
		var acct stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
			log.Printf("[Stripe] Error parsing Account: %s\n", err.Error())
			break
		}
		if !acct.ChargesEnabled {
			break
		}
		d := db.GetDb()
		err := d.
			Model(&models.User{}).
			Where(&models.User{StripeAccountId: acct.ID}).
			Update("is_available", true).
			Error
		if err != nil {
			log.Printf("[Stripe] Error enabling payee for account %s: %s\n", acct.ID, err.Error())
		}
	}
}

func handoffHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings/:id/handoff", func(ctx *gin.Context) {
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
			if booking.Status != types.BOOKING_COMPLETED {
				ctx.JSON(http.StatusConflict, gin.H{"error": types.ErrWrongSourceState.Error()})
				return
			}
			token, err := common.IssueHandoffToken(ctx.Request.Context(), params.ID)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"token": token}})
		})
	return g
}
