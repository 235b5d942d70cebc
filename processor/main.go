package main

import (
	"fmt"
	"log"
	"relief-app/config"
	"relief-app/database"
	"relief-app/models"
	"relief-app/repositories"
	"relief-app/services"
	"strings"

	"gopkg.in/gomail.v2"
)

// Standalone stock-alert mailer, meant to run from cron. Reads the current
// snapshot, classifies it, and mails a digest to the ops address. Owns no
// state and performs no writes.
func main() {

	config.LoadConfig()

	db, err := database.OpenConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	repo := repositories.NewItemRepository(db)
	alerts, err := repo.GetAlerts("")
	if err != nil {
		log.Fatalf("Failed to evaluate alerts: %v", err)
	}

	total := len(alerts.OutOfStock) + len(alerts.Critical) + len(alerts.LowStock) +
		len(alerts.Expiring) + len(alerts.Expired)
	if total == 0 {
		fmt.Println("No stock alerts, nothing to send")
		return
	}

	if config.AlertMailTo == "" {
		log.Fatal("ALERT_MAIL_TO is not configured")
	}

	body := buildDigest(alerts)

	m := gomail.NewMessage()
	m.SetHeader("From", config.MailFrom)
	m.SetHeader("To", config.AlertMailTo)
	m.SetHeader("Subject", fmt.Sprintf("Stock alert digest (%d items)", total))
	m.SetBody("text/plain", body)

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)
	if err := dialer.DialAndSend(m); err != nil {
		log.Fatalf("Failed to send alert digest: %v", err)
	}

	fmt.Printf("Sent alert digest covering %d items\n", total)
}

func buildDigest(alerts services.AlertBuckets) string {
	sections := []struct {
		title string
		items []models.InventoryItem
	}{
		{"OUT OF STOCK", alerts.OutOfStock},
		{"CRITICAL", alerts.Critical},
		{"LOW STOCK", alerts.LowStock},
		{"EXPIRING SOON", alerts.Expiring},
		{"EXPIRED", alerts.Expired},
	}

	var b strings.Builder
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s\n", section.title)
		for _, item := range section.items {
			fmt.Fprintf(&b, "  %s %s (%s): current %d, minimum %d\n",
				item.ItemCode, item.ItemName, item.WhsCode, item.QtyCurrent, item.QtyMinimum)
		}
		b.WriteString("\n")
	}
	return b.String()
}
