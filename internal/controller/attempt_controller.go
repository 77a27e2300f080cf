package controller

import (
	"assessment_backend/internal/service"
	"assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// @Summary 开始或继续作答
// @Description 存在进行中的尝试时直接返回；否则校验开放时间与次数后新建
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "作业ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /assignments/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	attempt, err := c.AttemptService.StartOrResumeAttempt(ctx.Request.Context(), assignmentID, user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	view, err := c.AttemptService.DescribeAttempt(ctx.Request.Context(), attempt)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 获取尝试详情
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 404 {object} util.Response
// @Router /attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	view, err := c.AttemptService.GetAttempt(ctx.Request.Context(), attemptID, user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 保存单题作答
// @Description selectedChoiceId 与 textAnswer 互斥，textAnswer 为空串表示清空
// @Tags 作答
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Param questionId path int true "题目ID"
// @Param body body service.AnswerInput true "作答内容"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "已交卷或已超时"
// @Router /attempts/{id}/answers/{questionId} [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}

	var req service.AnswerInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AttemptService.RecordAnswer(ctx.Request.Context(), attemptID, user.UserID, questionID, req); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"saved": true})
}

// @Summary 交卷
// @Description 重复提交不会报错，返回已定稿的结果
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 404 {object} util.Response
// @Router /attempts/{id}/finish [post]
func (c *AttemptController) FinishAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	attempt, err := c.AttemptService.FinishAttempt(ctx.Request.Context(), attemptID, user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	view, err := c.AttemptService.DescribeAttempt(ctx.Request.Context(), attempt)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 作答历史
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "作业ID"
// @Success 200 {object} util.Response{data=service.AttemptHistory}
// @Router /assignments/{id}/history [get]
func (c *AttemptController) GetHistory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	history, err := c.AttemptService.GetHistory(ctx.Request.Context(), assignmentID, user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
