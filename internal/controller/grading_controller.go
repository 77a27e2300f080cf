package controller

import (
	"assessment_backend/internal/service"
	"assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type GradingController struct {
	GradingService *service.GradingService
}

func NewGradingController(gradingService *service.GradingService) *GradingController {
	return &GradingController{GradingService: gradingService}
}

type finalScoreRequest struct {
	FinalScore *decimal.Decimal `json:"finalScore" binding:"required"`
}

// @Summary 列出待人工评分的尝试
// @Tags 评分
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "作业ID"
// @Success 200 {object} util.Response
// @Router /teacher/assignments/{id}/pending [get]
func (c *GradingController) ListPending(ctx *gin.Context) {
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	attempts, err := c.GradingService.ListPendingGrading(ctx.Request.Context(), assignmentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// @Summary 录入最终成绩
// @Description 仅对已提交待评分的尝试有效，分数范围 [0, 满分]
// @Tags 评分
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Param body body finalScoreRequest true "最终成绩"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /teacher/attempts/{id}/final-score [put]
func (c *GradingController) SetFinalScore(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req finalScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.GradingService.SetFinalScore(ctx.Request.Context(), attemptID, user.UserID, *req.FinalScore)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary 重新评分
// @Description 按当前答案重新计算客观题得分，同一尝试有冷却时间
// @Tags 评分
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response
// @Failure 429 {object} util.Response
// @Router /admin/attempts/{id}/regrade [post]
func (c *GradingController) Regrade(ctx *gin.Context) {
	attemptID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	attempt, err := c.GradingService.Regrade(ctx.Request.Context(), attemptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}
