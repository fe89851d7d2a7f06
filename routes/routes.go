package routes

import (
	"github.com/gin-gonic/gin"

	"eshop/controllers"
	"eshop/middleware"
)

// RegisterRoutes wires the full API surface under /api/v1. Catalog
// writes, user admin ops and the order list/delete endpoints are
// admin-gated; login and register are rate limited.
func RegisterRoutes(r *gin.Engine, cc *controllers.CategoryController, pc *controllers.ProductController, oc *controllers.OrderController, uc *controllers.UserController) {
	api := r.Group("/api/v1")

	categories := api.Group("/categories")
	{
		categories.GET("", cc.GetCategories)
		categories.GET("/:id", cc.GetCategory)

		admin := categories.Group("", middleware.RequireAuth(), middleware.RequireAdmin())
		admin.POST("", cc.CreateCategory)
		admin.PUT("/:id", cc.UpdateCategory)
		admin.DELETE("/:id", cc.DeleteCategory)
	}

	products := api.Group("/products")
	{
		products.GET("", pc.GetProducts)
		products.GET("/:id", pc.GetProduct)
		products.GET("/get/count", pc.GetProductCount)
		products.GET("/get/featured/:count", pc.GetFeaturedProducts)

		admin := products.Group("", middleware.RequireAuth(), middleware.RequireAdmin())
		admin.POST("", pc.CreateProduct)
		admin.PUT("/:id", pc.UpdateProduct)
		admin.DELETE("/:id", pc.DeleteProduct)
	}

	orders := api.Group("/orders")
	{
		orders.GET("/:id", oc.GetOrder)
		orders.POST("", oc.PlaceOrder)
		orders.PUT("/:id", oc.UpdateOrder)
		orders.GET("/get/sales", oc.GetTotalSales)
		orders.GET("/get/totalsales", oc.GetTotalSales)
		orders.GET("/get/count", oc.GetOrderCount)
		orders.GET("/get/userorders/:userid", oc.GetUserOrders)

		admin := orders.Group("", middleware.RequireAuth(), middleware.RequireAdmin())
		admin.GET("", oc.GetOrders)
		admin.DELETE("/:id", oc.DeleteOrder)
	}

	users := api.Group("/users")
	{
		users.GET("/:id", uc.GetUser)
		users.PUT("/:id", uc.UpdateUser)
		users.POST("/login", middleware.RateLimiter(), uc.Login)
		users.POST("/register", middleware.RateLimiter(), uc.CreateUser)
		users.GET("/get/count", uc.GetUserCount)

		admin := users.Group("", middleware.RequireAuth(), middleware.RequireAdmin())
		admin.GET("", uc.GetUsers)
		admin.POST("", uc.CreateUser)
		admin.DELETE("/:id", uc.DeleteUser)
	}
}
