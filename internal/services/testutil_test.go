package services

import (
	"testing"

	"afiliados-api/internal/database"
	"afiliados-api/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestStore(t *testing.T) *database.Store {
	store, _ := newTestStoreDB(t)
	return store
}

// newTestStoreDB also exposes the raw connection for seeding rows the
// store never writes itself, like afiliado records.
func newTestStoreDB(t *testing.T) (*database.Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Afiliado{},
		&models.Cliente{},
		&models.Assinatura{},
		&models.Pagamento{},
		&models.Cobranca{},
		&models.ChurnClassificacao{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database.NewStore(db), db
}

func seedAfiliado(t *testing.T, db *gorm.DB, id, fullName string) {
	t.Helper()
	if err := db.Create(&models.Afiliado{ID: id, FullName: fullName}).Error; err != nil {
		t.Fatalf("seed afiliado %s: %v", id, err)
	}
}
