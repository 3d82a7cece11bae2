package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sjperalta/bitacora-api/internal/bitacora"
	"github.com/sjperalta/bitacora-api/internal/config"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/services"
	"github.com/sjperalta/bitacora-api/pkg/logger"
	"gorm.io/datatypes"
)

// Sends a sample day-closed e-mail through Resend to check credentials and the template.
func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.Setup("development", "debug")

	if !cfg.EmailEnabled() {
		log.Fatal("RESEND_API_KEY or FROM_EMAIL is not set")
	}

	// The membership lookup is only used by the notification job
	emailService := services.NewEmailService(cfg, nil)

	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com. Emails might fail if the domain is not verified.")
	}

	admin := &models.User{FullName: "Usuario de Prueba", Email: toEmail}
	project := &models.Project{ID: 1, Name: "Proyecto de prueba", Location: "CDMX"}

	calendar := bitacora.NewCalendar(cfg.Location())
	today := calendar.Today()
	content := "Documento de prueba del cierre diario de bitácora."
	closure := &models.DayClosure{
		GUID:            "00000000-0000-0000-0000-000000000000",
		ProjectID:       project.ID,
		ClosureDate:     datatypes.Date(today.Key()),
		OfficialContent: content,
		ContentHash:     bitacora.ContentHash(content),
		ClosedAt:        time.Now().UTC(),
		Closer:          models.User{FullName: "Residente de Obra"},
	}

	log.Printf("Sending Day Closed email to %s...", toEmail)
	if err := emailService.SendDayClosed(context.Background(), admin, project, closure); err != nil {
		log.Fatalf("Failed to send Day Closed email: %v", err)
	}
	log.Println("Day Closed email sent successfully!")
}
