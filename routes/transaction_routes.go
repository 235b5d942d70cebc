package routes

import (
	"relief-app/config"
	"relief-app/controllers"
	"relief-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupTransactionRoutes(app *fiber.App, db *gorm.DB) {
	transactionController := controllers.NewTransactionController(db)
	api := app.Group(config.MAIN_ROUTES+"/transactions", middleware.AuthMiddleware)

	api.Get("/", transactionController.GetTransactions)
	api.Get("/overdue", transactionController.GetOverdueTransactions)
	api.Get("/:id", transactionController.GetTransaction)
	api.Post("/", transactionController.CreateTransaction)
	api.Put("/:id/status", transactionController.TransitionTransaction)
}
