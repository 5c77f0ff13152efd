package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/wordcount/api"
	"github.com/BaSui01/wordcount/counter"
	"github.com/BaSui01/wordcount/types"
)

// =============================================================================
// 🔢 词频统计 Handler
// =============================================================================

// Aggregator 统计文本词频，失败时不返回部分结果
type Aggregator interface {
	Run(ctx context.Context, text string) (counter.FrequencyTable, error)
}

// WordCountHandler 词频统计处理器。不持有任何跨请求状态。
type WordCountHandler struct {
	aggregator   Aggregator
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewWordCountHandler 创建词频统计处理器，maxBodyBytes <= 0 表示不限制请求体
func NewWordCountHandler(aggregator Aggregator, maxBodyBytes int64, logger *zap.Logger) *WordCountHandler {
	return &WordCountHandler{
		aggregator:   aggregator,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With(zap.String("handler", "wordcount")),
	}
}

// HandleWordCount 处理词频统计请求
// @Summary 词频统计
// @Description 对文本按空白切分、小写化后统计每个单词的出现次数
// @Tags 词频
// @Accept json
// @Produce json
// @Param request body api.WordCountRequest true "待统计文本"
// @Success 200 {object} api.WordCountResponse "单词到次数的映射"
// @Failure 400 {object} Response "无效请求"
// @Failure 413 {object} Response "请求体过大"
// @Failure 500 {object} Response "聚合失败"
// @Router /wordcount [post]
func (h *WordCountHandler) HandleWordCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		WriteRequestError(w, r, types.NewError(types.ErrMethodNotAllowed, "method not allowed").
			WithHTTPStatus(http.StatusMethodNotAllowed), h.logger)
		return
	}

	// 验证 Content-Type
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	// 解码请求
	var req api.WordCountRequest
	if err := DecodeJSONBody(w, r, &req, h.maxBodyBytes, h.logger); err != nil {
		return
	}
	if req.Text == nil {
		WriteRequestError(w, r, types.NewInvalidRequestError(`missing required field "text"`), h.logger)
		return
	}

	start := time.Now()
	table, err := h.aggregator.Run(r.Context(), *req.Text)
	duration := time.Since(start)
	if err != nil {
		h.handleAggregationError(w, r, err)
		return
	}

	if table == nil {
		table = counter.FrequencyTable{}
	}

	h.logger.Debug("word count",
		zap.Int("text_bytes", len(*req.Text)),
		zap.Int("distinct_words", len(table)),
		zap.Duration("duration", duration),
	)

	WriteJSON(w, http.StatusOK, api.WordCountResponse(table))
}

func (h *WordCountHandler) handleAggregationError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := types.AsError(err)
	if !ok {
		apiErr = types.NewAggregationError("aggregation failed", err)
	}
	if apiErr.Code == types.ErrCanceled && r.Context().Err() != nil {
		// 客户端已断开，响应无人接收
		h.logger.Info("client went away during aggregation", zap.Error(err))
	}
	WriteRequestError(w, r, apiErr, h.logger)
}
