package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/smallbiznis/orderdesk/internal/ledger/domain"
	orderdomain "github.com/smallbiznis/orderdesk/internal/order/domain"
)

type updateOrderRequest struct {
	ProductID string  `json:"product_id"`
	Amount    float64 `json:"amount"`
}

func (s *Server) UpdateOrder(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	productID, err := snowflake.ParseString(req.ProductID)
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_product", "invalid product id"))
		return
	}

	record, err := s.orderSvc.SaveDraft(c.Request.Context(), p, productID, req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

type updateOrdersRequest struct {
	Items []updateOrderRequest `json:"items"`
}

type batchItemResponse struct {
	ProductID string `json:"product_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// bindDraftItems decodes the shared {items:[{product_id, amount}]}
// body used by the batch draft and submit endpoints. It aborts the
// request itself on malformed input.
func bindDraftItems(c *gin.Context) ([]ledgerdomain.DraftItem, bool) {
	var req updateOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		AbortWithError(c, invalidRequestError())
		return nil, false
	}

	items := make([]ledgerdomain.DraftItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := snowflake.ParseString(item.ProductID)
		if err != nil {
			AbortWithError(c, newValidationError("product_id", "invalid_product", "invalid product id"))
			return nil, false
		}
		items = append(items, ledgerdomain.DraftItem{ProductID: productID, Amount: item.Amount})
	}
	return items, true
}

func (s *Server) UpdateOrders(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	items, ok := bindDraftItems(c)
	if !ok {
		return
	}

	result, err := s.orderSvc.SaveDraftBatch(c.Request.Context(), p, items)
	var partial *ledgerdomain.PartialBatchError
	if err != nil && !errors.As(err, &partial) {
		AbortWithError(c, err)
		return
	}

	respItems := make([]batchItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		resp := batchItemResponse{ProductID: item.ProductID.String(), Status: "updated"}
		if item.Err != nil {
			resp.Status = "failed"
			resp.Error = item.Err.Error()
		}
		respItems = append(respItems, resp)
	}

	status := http.StatusOK
	if partial != nil {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"data": gin.H{
		"updated_at": result.UpdatedAt,
		"items":      respItems,
	}})
}

type submitItemResponse struct {
	ProductID string  `json:"product_id"`
	Amount    float64 `json:"amount"`
	Outcome   string  `json:"outcome"`
	Error     string  `json:"error,omitempty"`
}

func (s *Server) SubmitOrders(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	items, ok := bindDraftItems(c)
	if !ok {
		return
	}

	result, err := s.orderSvc.SubmitAll(c.Request.Context(), p, items)
	var partial *orderdomain.PartialBatchError
	if err != nil && !errors.As(err, &partial) {
		AbortWithError(c, err)
		return
	}

	respItems := make([]submitItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		resp := submitItemResponse{
			ProductID: item.ProductID.String(),
			Amount:    item.Amount,
			Outcome:   string(item.Outcome),
		}
		if item.Err != nil {
			resp.Error = item.Err.Error()
		}
		respItems = append(respItems, resp)
	}

	status := http.StatusOK
	if partial != nil {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"data": gin.H{
		"batch_id":        result.BatchID.String(),
		"submitted_at":    result.SubmittedAt,
		"submitted_count": result.SubmittedCount,
		"skipped_count":   result.SkippedCount,
		"failed_count":    result.FailedCount,
		"items":           respItems,
	}})
}

func (s *Server) GetDraftView(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	lines, err := s.orderSvc.DraftView(c.Request.Context(), p)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lines})
}

func limitQuery(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
