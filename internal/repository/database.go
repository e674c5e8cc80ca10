package repository

import (
	"fmt"
	"os"

	"github.com/unilinkhq/messaging-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
	)

	// TranslateError lets callers match unique violations via
	// gorm.ErrDuplicatedKey (the 1:1 pair-key race depends on it).
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Users are migrated too so foreign keys resolve in dev environments;
	// the table itself is written only by the host platform's sync.
	if err := db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
