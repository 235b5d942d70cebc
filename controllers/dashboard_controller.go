package controllers

import (
	"relief-app/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(DB *gorm.DB) *DashboardController {
	return &DashboardController{DB: DB}
}

func (c *DashboardController) GetAlerts(ctx *fiber.Ctx) error {
	repo := repositories.NewItemRepository(c.DB)
	alerts, err := repo.GetAlerts(ctx.Query("whs_code"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"alerts": alerts}})
}

func (c *DashboardController) GetSummary(ctx *fiber.Ctx) error {
	repo := repositories.NewItemRepository(c.DB)
	summary, err := repo.GetStockSummary(ctx.Query("whs_code"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"summary": summary}})
}
