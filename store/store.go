// Package store is the persistence engine over the embedded SQLite file:
// CRUD and natural-key upserts for the five record types, transactional
// cascade deletes, and live snapshot subscriptions.
package store

import (
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Store struct {
	db  *gorm.DB
	hub *hub
	log zerolog.Logger

	// mu serializes writers. SQLite allows a single writer at a time anyway;
	// taking the lock up front keeps multi-statement transactions from ever
	// hitting SQLITE_BUSY under concurrent callers.
	mu sync.Mutex
}

func New(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{db: db, hub: newHub(), log: log.With().Str("component", "store").Logger()}
}
