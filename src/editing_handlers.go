package main

import (
	"net/http"
	"pbs/src/common"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
)

func editingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/editing-requests", func(ctx *gin.Context) {
			var body types.CreateEditingRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			customerId := ctx.GetUint("id")
			request, err := common.CreateEditingRequest(customerId, &body)
			if err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": request})
		}).
		GET("/editing-requests", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			requests, err := common.ListEditingRequests(userId, role == models.ROLE_PHOTOGRAPHER)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": requests, "count": len(requests)})
		}).
		PUT("/editing-requests/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateEditingStatusRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			payeeId := ctx.GetUint("id")
			request, err := common.UpdateEditingStatus(payeeId, params.ID, types.EditingStatus(body.Status))
			if err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": request})
		}).
		PUT("/editing-requests/:id/deliver", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.DeliverEditsRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			payeeId := ctx.GetUint("id")
			request, err := common.DeliverEdits(payeeId, params.ID, &body)
			if err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": request})
		}).
		PUT("/editing-requests/:id/complete", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			customerId := ctx.GetUint("id")
			request, err := common.CompleteEditing(customerId, params.ID)
			if err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": request})
		}).
		PUT("/editing-requests/:id/revision", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.RequestRevisionRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			customerId := ctx.GetUint("id")
			request, err := common.RequestRevision(customerId, params.ID, &body)
			if err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": request})
		}).
		PUT("/editing-requests/:id/dismiss", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := common.DismissEditingRequest(userId, params.ID); err != nil {
				ctx.JSON(lifecycleErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
