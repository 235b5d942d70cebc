package controllers

import (
	"fmt"
	"net/http"
	"relief-app/middleware"
	"relief-app/repositories"
	"relief-app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ItemController struct {
	DB *gorm.DB
}

func NewItemController(DB *gorm.DB) *ItemController {
	return &ItemController{DB: DB}
}

func (c *ItemController) GetItems(ctx *fiber.Ctx) error {
	repo := repositories.NewItemRepository(c.DB)
	items, err := repo.GetItems(repositories.ItemFilter{
		Category: ctx.Query("category"),
		WhsCode:  ctx.Query("whs_code"),
		Search:   ctx.Query("search"),
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"items": items}})
}

func (c *ItemController) GetItem(ctx *fiber.Ctx) error {
	repo := repositories.NewItemRepository(c.DB)
	item, err := repo.GetItemByID(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Item not found",
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{
		"item":          item,
		"qty_available": item.QtyAvailable(),
		"stock_status":  services.StockStatusOf(item),
	}})
}

func (c *ItemController) CreateItem(ctx *fiber.Ctx) error {
	var payload services.CreateItemInput
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid payload",
			"error":   err.Error(),
		})
	}
	payload.Actor = middleware.ActorName(ctx)

	item, err := services.NewTransactionService(c.DB).CreateItem(payload)
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"item": item}})
}

func (c *ItemController) UpdateItem(ctx *fiber.Ctx) error {
	itemID, err := paramID(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid item id"})
	}

	var payload services.UpdateItemInput
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid payload",
			"error":   err.Error(),
		})
	}
	payload.Actor = middleware.ActorName(ctx)

	item, err := services.NewTransactionService(c.DB).UpdateItem(itemID, payload)
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"item": item}})
}

func (c *ItemController) DeleteItem(ctx *fiber.Ctx) error {
	itemID, err := paramID(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid item id"})
	}

	if err := services.NewTransactionService(c.DB).DeleteItem(itemID, middleware.ActorName(ctx)); err != nil {
		return renderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Item archived"})
}

type adjustStockPayload struct {
	QtyCurrent int    `json:"qty_current"`
	Reason     string `json:"reason"`
}

func (c *ItemController) AdjustStock(ctx *fiber.Ctx) error {
	itemID, err := paramID(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid item id"})
	}

	var payload adjustStockPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid payload",
			"error":   err.Error(),
		})
	}

	item, err := services.NewTransactionService(c.DB).
		AdjustStock(itemID, payload.QtyCurrent, payload.Reason, middleware.ActorName(ctx))
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{
		"item":          item,
		"qty_available": item.QtyAvailable(),
		"stock_status":  services.StockStatusOf(item),
	}})
}

// ExportExcel streams the current stock snapshot as an xlsx report.
func (c *ItemController) ExportExcel(ctx *fiber.Ctx) error {
	repo := repositories.NewItemRepository(c.DB)
	items, err := repo.GetItems(repositories.ItemFilter{WhsCode: ctx.Query("whs_code")})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Whs Code")
	f.SetCellValue(sheet, "B1", "Item Code")
	f.SetCellValue(sheet, "C1", "Item Name")
	f.SetCellValue(sheet, "D1", "Category")
	f.SetCellValue(sheet, "E1", "Uom")
	f.SetCellValue(sheet, "F1", "Current")
	f.SetCellValue(sheet, "G1", "Reserved")
	f.SetCellValue(sheet, "H1", "Available")
	f.SetCellValue(sheet, "I1", "Status")

	for i, item := range items {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.WhsCode)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.ItemCode)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.ItemName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Category)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.Uom)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), item.QtyCurrent)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), item.QtyReserved)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), item.QtyAvailable)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), item.StockStatus)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="stock-report.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}

	return nil
}
