package controllers

import (
	"relief-app/middleware"
	"relief-app/repositories"
	"relief-app/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TransactionController struct {
	DB *gorm.DB
}

func NewTransactionController(DB *gorm.DB) *TransactionController {
	return &TransactionController{DB: DB}
}

func (c *TransactionController) GetTransactions(ctx *fiber.Ctx) error {
	repo := repositories.NewTransactionRepository(c.DB)
	transactions, err := repo.GetTransactions(repositories.TransactionFilter{
		Status:  ctx.Query("status"),
		Type:    ctx.Query("type"),
		ItemID:  ctx.Query("item_id"),
		WhsCode: ctx.Query("whs_code"),
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"transactions": transactions}})
}

func (c *TransactionController) GetTransaction(ctx *fiber.Ctx) error {
	repo := repositories.NewTransactionRepository(c.DB)
	trx, err := repo.GetTransactionByID(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Transaction not found",
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"transaction": trx}})
}

func (c *TransactionController) CreateTransaction(ctx *fiber.Ctx) error {
	var payload services.CreateTransactionInput
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid payload",
			"error":   err.Error(),
		})
	}
	payload.Actor = middleware.ActorName(ctx)

	trx, err := services.NewTransactionService(c.DB).CreateTransaction(payload)
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"transaction": trx}})
}

type transitionPayload struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func (c *TransactionController) TransitionTransaction(ctx *fiber.Ctx) error {
	trxID, err := paramID(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid transaction id"})
	}

	var payload transitionPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid payload",
			"error":   err.Error(),
		})
	}

	trx, err := services.NewTransactionService(c.DB).
		TransitionTransaction(trxID, payload.Status, middleware.ActorName(ctx), payload.Comment)
	if err != nil {
		return renderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"transaction": trx}})
}

func (c *TransactionController) GetOverdueTransactions(ctx *fiber.Ctx) error {
	repo := repositories.NewTransactionRepository(c.DB)
	transactions, err := repo.GetOverdueTransactions(ctx.Query("whs_code"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"transactions": transactions}})
}
