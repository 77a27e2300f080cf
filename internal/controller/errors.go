package controller

import (
	"assessment_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 将引擎错误映射为 HTTP 状态码；未知错误记录日志并返回 500
func respondError(ctx *gin.Context, err error) {
	var notEligible *util.EligibilityError
	switch {
	case errors.As(err, &notEligible):
		ctx.JSON(http.StatusForbidden, util.Response{
			Code:    http.StatusForbidden,
			Message: notEligible.Message,
			Data:    gin.H{"reason": notEligible.Reason},
		})
	case errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrTimeExpired),
		errors.Is(err, util.ErrAlreadyFinalized),
		errors.Is(err, util.ErrAttemptInProgress),
		errors.Is(err, util.ErrNotAwaitingGrading),
		errors.Is(err, util.ErrConflict):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidScore):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrThrottled):
		util.TooManyRequests(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := util.ParseID(ctx.Param(name))
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}
