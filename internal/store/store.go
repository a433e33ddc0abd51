package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Product() Product
	ImportJob() ImportJob
	Webhook() Webhook
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db        *gorm.DB
	product   Product
	importJob ImportJob
	webhook   Webhook
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:        db,
		product:   NewProductStore(db),
		importJob: NewImportJobStore(db),
		webhook:   NewWebhookStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Product() Product {
	return s.product
}

func (s *DataStore) ImportJob() ImportJob {
	return s.importJob
}

func (s *DataStore) Webhook() Webhook {
	return s.webhook
}

func (s *DataStore) InitialMigration() error {
	if err := s.product.InitialMigration(); err != nil {
		return err
	}
	if err := s.importJob.InitialMigration(); err != nil {
		return err
	}
	return s.webhook.InitialMigration()
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
