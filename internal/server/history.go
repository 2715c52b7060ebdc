package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	historydomain "github.com/smallbiznis/orderdesk/internal/history/domain"
)

type historyItemResponse struct {
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Unit      string  `json:"unit"`
	Amount    float64 `json:"amount"`
}

type historyBatchResponse struct {
	BatchID     string                `json:"batch_id"`
	SubmittedAt time.Time             `json:"submitted_at"`
	IsArchived  bool                  `json:"is_archived"`
	Items       []historyItemResponse `json:"items"`
}

func historyBatches(batches []historydomain.Batch) []historyBatchResponse {
	resp := make([]historyBatchResponse, 0, len(batches))
	for _, batch := range batches {
		out := historyBatchResponse{
			BatchID:     batch.BatchID.String(),
			SubmittedAt: batch.SubmittedAt,
			IsArchived:  batch.IsArchived,
			Items:       make([]historyItemResponse, 0, len(batch.Items)),
		}
		for _, item := range batch.Items {
			out.Items = append(out.Items, historyItemResponse{
				ProductID: item.ProductID.String(),
				SKU:       item.Details.SKU,
				Name:      item.Details.Name,
				Price:     item.Details.Price,
				Unit:      item.Details.Unit,
				Amount:    item.OrderAmount,
			})
		}
		resp = append(resp, out)
	}
	return resp
}

func (s *Server) GetOwnHistory(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	batches, err := s.orderSvc.CustomerHistory(c.Request.Context(), p, limitQuery(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": historyBatches(batches)})
}

func (s *Server) GetCustomerPastHistory(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	customerID, err := snowflake.ParseString(c.Param("customerId"))
	if err != nil {
		AbortWithError(c, newValidationError("customerId", "invalid_customer", "invalid customer id"))
		return
	}

	batches, err := s.orderSvc.AdminHistory(c.Request.Context(), p, customerID, limitQuery(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": historyBatches(batches)})
}

func (s *Server) ArchiveOrder(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	customerID, err := snowflake.ParseString(c.Param("customerId"))
	if err != nil {
		AbortWithError(c, newValidationError("customerId", "invalid_customer", "invalid customer id"))
		return
	}
	submittedAt, err := time.Parse(time.RFC3339Nano, c.Param("submittedAt"))
	if err != nil {
		AbortWithError(c, newValidationError("submittedAt", "invalid_timestamp", "invalid timestamp"))
		return
	}

	result, err := s.orderSvc.ArchiveOrder(c.Request.Context(), p, customerID, submittedAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cleared := 0
	for _, item := range result.Items {
		if item.Cleared {
			cleared++
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"modified_count": result.ModifiedCount,
		"cleared_count":  cleared,
	}})
}
