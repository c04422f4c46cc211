package main

import (
	"net/http"
	"pbs/src/common"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
)

func earningHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/earnings", func(ctx *gin.Context) {
			payeeId := ctx.GetUint("id")
			status := types.EarningStatus(ctx.Query("status"))
			earnings, err := common.ListEarnings(payeeId, status)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": earnings, "count": len(earnings)})
		})
	return g
}
