package routes

import (
	"relief-app/config"
	"relief-app/controllers"
	"relief-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupItemRoutes(app *fiber.App, db *gorm.DB) {
	itemController := controllers.NewItemController(db)
	api := app.Group(config.MAIN_ROUTES+"/items", middleware.AuthMiddleware)

	api.Get("/", itemController.GetItems)
	api.Get("/excel", itemController.ExportExcel)
	api.Get("/:id", itemController.GetItem)
	api.Post("/", itemController.CreateItem)
	api.Put("/:id", itemController.UpdateItem)
	api.Delete("/:id", itemController.DeleteItem)
	api.Post("/:id/adjust-stock", itemController.AdjustStock)
}
