// File: cmd/server/providers.go
package main

import (
	"log"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"propdesk_backend/internal/auth"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/join"
	"propdesk_backend/internal/platform/database"
)

func provideAuthSessionStore(cfg *config.Config) auth.SessionStore {
	return auth.NewInMemorySessionStore(cfg.SessionStateTTL)
}

func provideJoinSessionStore(cfg *config.Config) join.SessionStore {
	return join.NewInMemorySessionStore(cfg.JoinSessionTTL)
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
