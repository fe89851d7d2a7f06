package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"eshop/config"
	"eshop/controllers"
	"eshop/database"
	"eshop/docs"
	"eshop/middleware"
	"eshop/routes"
	"eshop/services"
	"eshop/store"
	"eshop/utils"
)

func main() {
	config.LoadEnv()

	client := database.ConnectMongo()
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Println("MongoDB disconnect error:", err)
		}
	}()

	dbName := config.GetEnv("DB_NAME", "eshop")
	database.EnsureIndexes(client, dbName)
	database.InitRedis()

	st := store.NewMongo(client, dbName)

	var mailer services.Mailer
	if emailService := utils.NewEmailService(); emailService != nil {
		mailer = emailService
	}
	orderService := services.NewOrderService(st, st, st, st, mailer)

	categoryController := controllers.NewCategoryController(st)
	productController := controllers.NewProductController(st, st, database.RedisClient)
	orderController := controllers.NewOrderController(orderService)
	userController := controllers.NewUserController(st)

	r := gin.Default()
	r.SetTrustedProxies(nil)
	r.Use(middleware.CORSMiddleware())
	r.Static("/public/uploads", "./public/uploads")

	docs.Register(r)
	routes.RegisterRoutes(r, categoryController, productController, orderController, userController)

	port := config.GetEnv("PORT", "8080")
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
