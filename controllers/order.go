package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eshop/services"
	"eshop/store"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (oc *OrderController) GetOrders(c *gin.Context) {
	orders, err := oc.orders.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var body struct {
		OrderItems      []services.OrderLine `json:"orderItems" binding:"required"`
		ShippingAddress string               `json:"shippingAddress" binding:"required"`
		City            string               `json:"city" binding:"required"`
		Zip             string               `json:"zip" binding:"required"`
		Country         string               `json:"country" binding:"required"`
		Phone           string               `json:"phone" binding:"required"`
		Status          string               `json:"status"`
		User            string               `json:"user" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid order payload")
		return
	}

	order, err := oc.orders.Place(c.Request.Context(), services.PlaceOrderInput{
		OrderItems:      body.OrderItems,
		ShippingAddress: body.ShippingAddress,
		City:            body.City,
		Zip:             body.Zip,
		Country:         body.Country,
		Phone:           body.Phone,
		Status:          body.Status,
		User:            body.User,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, order)
}

func (oc *OrderController) UpdateOrder(c *gin.Context) {
	var body struct {
		ShippingAddress *string `json:"shippingAddress"`
		City            *string `json:"city"`
		Zip             *string `json:"zip"`
		Country         *string `json:"country"`
		Phone           *string `json:"phone"`
		Status          *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := oc.orders.Update(c.Request.Context(), c.Param("id"), store.OrderPatch{
		ShippingAddress: body.ShippingAddress,
		City:            body.City,
		Zip:             body.Zip,
		Country:         body.Country,
		Phone:           body.Phone,
		Status:          body.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	if err := oc.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "The order is deleted!")
}

func (oc *OrderController) GetTotalSales(c *gin.Context) {
	total, err := oc.orders.TotalSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"totalsales": total})
}

func (oc *OrderController) GetOrderCount(c *gin.Context) {
	count, err := oc.orders.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"orderCount": count})
}

func (oc *OrderController) GetUserOrders(c *gin.Context) {
	orders, err := oc.orders.ListForUser(c.Request.Context(), c.Param("userid"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}
