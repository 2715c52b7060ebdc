package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/orderdesk/internal/catalog/domain"
	customerdomain "github.com/smallbiznis/orderdesk/internal/customer/domain"
	historydomain "github.com/smallbiznis/orderdesk/internal/history/domain"
)

// GetStatistics reports back-office counts for the admin dashboard.
func (s *Server) GetStatistics(c *gin.Context) {
	ctx := c.Request.Context()

	var customers int64
	if err := s.db.WithContext(ctx).Model(&customerdomain.Customer{}).Count(&customers).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	var masterProducts int64
	if err := s.db.WithContext(ctx).Model(&catalogdomain.MasterProduct{}).Count(&masterProducts).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	var assignedProducts int64
	if err := s.db.WithContext(ctx).Model(&catalogdomain.Product{}).Count(&assignedProducts).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	var activeBatches int64
	err := s.db.WithContext(ctx).
		Model(&historydomain.Snapshot{}).
		Where("is_archived = ?", false).
		Distinct("batch_id").
		Count(&activeBatches).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var archivedRows int64
	err = s.db.WithContext(ctx).
		Model(&historydomain.Snapshot{}).
		Where("is_archived = ?", true).
		Count(&archivedRows).Error
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"customers":         customers,
		"master_products":   masterProducts,
		"assigned_products": assignedProducts,
		"active_batches":    activeBatches,
		"archived_rows":     archivedRows,
	}})
}
