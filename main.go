package main

import (
	"fmt"
	"log"
	"relief-app/config"
	"relief-app/database"
	"relief-app/idgen"
	"relief-app/routes"
	"relief-app/services"
	"time"

	"github.com/gofiber/fiber/v2"
)

func main() {

	config.LoadConfig()

	app := fiber.New()

	db, err := database.OpenConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	idgen.Init()
	database.RunSeeders(db)

	// Drain committed domain events to the notifier in the background.
	// Delivery failures never touch ledger state, the outbox retries.
	dispatcher := services.NewOutboxDispatcher(db, services.LogNotifier{})
	stop := make(chan struct{})
	go dispatcher.Run(5*time.Second, stop)
	defer close(stop)

	config.SetupCORS(app)

	routes.SetupItemRoutes(app, db)
	routes.SetupTransactionRoutes(app, db)
	routes.SetupDashboardRoutes(app, db)
	routes.SetupWarehouseRoutes(app, db)

	port := config.APP_PORT
	fmt.Println("🚀 Server listening on port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
