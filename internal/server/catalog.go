package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/orderdesk/internal/catalog/domain"
)

type productRequest struct {
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Unit  string  `json:"unit"`
}

func (r productRequest) masterInput() catalogdomain.MasterProductInput {
	return catalogdomain.MasterProductInput{
		SKU:   strings.TrimSpace(r.SKU),
		Name:  strings.TrimSpace(r.Name),
		Price: r.Price,
		Unit:  strings.TrimSpace(r.Unit),
	}
}

func (r productRequest) productInput() catalogdomain.ProductInput {
	return catalogdomain.ProductInput{
		SKU:   strings.TrimSpace(r.SKU),
		Name:  strings.TrimSpace(r.Name),
		Price: r.Price,
		Unit:  strings.TrimSpace(r.Unit),
	}
}

func (s *Server) CreateMasterProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.CreateMaster(c.Request.Context(), req.masterInput())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) ListMasterProducts(c *gin.Context) {
	products, err := s.catalogSvc.ListMaster(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (s *Server) GetMasterProductByID(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_product", "invalid product id"))
		return
	}

	product, err := s.catalogSvc.GetMaster(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) UpdateMasterProduct(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_product", "invalid product id"))
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.UpdateMaster(c.Request.Context(), id, req.masterInput())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) DeleteMasterProduct(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_product", "invalid product id"))
		return
	}

	if err := s.catalogSvc.DeleteMaster(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type assignProductsRequest struct {
	CustomerIDs      []string `json:"customer_ids"`
	MasterProductIDs []string `json:"master_product_ids"`
}

type assignItemResponse struct {
	CustomerID      string `json:"customer_id"`
	MasterProductID string `json:"master_product_id"`
	ProductID       string `json:"product_id,omitempty"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
}

// AssignProducts copies master products onto customer catalogs as a
// best-effort bulk operation with a per-item report.
func (s *Server) AssignProducts(c *gin.Context) {
	var req assignProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.CustomerIDs) == 0 || len(req.MasterProductIDs) == 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerIDs, err := parseIDs(req.CustomerIDs)
	if err != nil {
		AbortWithError(c, newValidationError("customer_ids", "invalid_customer", "invalid customer id"))
		return
	}
	masterIDs, err := parseIDs(req.MasterProductIDs)
	if err != nil {
		AbortWithError(c, newValidationError("master_product_ids", "invalid_product", "invalid product id"))
		return
	}

	failed := 0
	respItems := make([]assignItemResponse, 0, len(customerIDs)*len(masterIDs))
	for _, customerID := range customerIDs {
		result, err := s.catalogSvc.Assign(c.Request.Context(), customerID, masterIDs)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		for _, item := range result.Items {
			resp := assignItemResponse{
				CustomerID:      customerID.String(),
				MasterProductID: item.MasterProductID.String(),
				Status:          "assigned",
			}
			if item.Err != nil {
				resp.Status = "failed"
				resp.Error = item.Err.Error()
				failed++
			} else {
				resp.ProductID = item.ProductID.String()
			}
			respItems = append(respItems, resp)
		}
	}

	status := http.StatusOK
	if failed > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"data": gin.H{"items": respItems}})
}

func (s *Server) ListCustomerProducts(c *gin.Context) {
	customerID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_customer", "invalid customer id"))
		return
	}

	products, err := s.catalogSvc.ListForCustomer(c.Request.Context(), customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (s *Server) UpdateCustomerProduct(c *gin.Context) {
	customerID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_customer", "invalid customer id"))
		return
	}
	productID, err := snowflake.ParseString(c.Param("productId"))
	if err != nil {
		AbortWithError(c, newValidationError("productId", "invalid_product", "invalid product id"))
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.UpdateForCustomer(c.Request.Context(), customerID, productID, req.productInput())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) RemoveCustomerProduct(c *gin.Context) {
	customerID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_customer", "invalid customer id"))
		return
	}
	productID, err := snowflake.ParseString(c.Param("productId"))
	if err != nil {
		AbortWithError(c, newValidationError("productId", "invalid_product", "invalid product id"))
		return
	}

	if err := s.catalogSvc.RemoveFromCustomer(c.Request.Context(), customerID, productID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseIDs(raw []string) ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(raw))
	for _, value := range raw {
		id, err := snowflake.ParseString(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
