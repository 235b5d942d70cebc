package routes

import (
	"relief-app/config"
	"relief-app/controllers"
	"relief-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupWarehouseRoutes(app *fiber.App, db *gorm.DB) {
	warehouseController := controllers.NewWarehouseController(db)
	api := app.Group(config.MAIN_ROUTES+"/warehouses", middleware.AuthMiddleware)

	api.Get("/", warehouseController.GetWarehouses)
	api.Post("/", warehouseController.CreateWarehouse)
}
