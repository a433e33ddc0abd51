package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/acme/product-importer/internal/imports"
	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/internal/store/model"
	"github.com/acme/product-importer/pkg/metrics"
)

const importBatchSize = 1000

type ProductService struct {
	store store.Store
}

func NewProductService(s store.Store) *ProductService {
	return &ProductService{store: s}
}

func (s *ProductService) ListProducts(ctx context.Context) (model.ProductList, error) {
	return s.store.Product().List(ctx)
}

// ImportProducts is the direct synchronous ingestion path. Unlike the
// queued worker it deduplicates across the whole file with the first
// occurrence of a sku winning, and applies every batch inside a single
// transaction: any failure rolls everything back and nothing becomes
// visible in the store.
func (s *ProductService) ImportProducts(ctx context.Context, file io.Reader) (int64, error) {
	logger := zap.S().Named("product_service")

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1

	headerRecord, err := reader.Read()
	if err != nil {
		return 0, NewErrFileCorrupted(err)
	}
	header := imports.NewHeader(headerRecord)

	required := []string{imports.ColumnName, imports.ColumnSku, imports.ColumnDescription}
	if missing := header.Missing(required...); len(missing) > 0 {
		return 0, NewErrMissingColumns(missing)
	}

	ctx, err = s.store.NewTransactionContext(ctx)
	if err != nil {
		return 0, err
	}

	// The seen set lives and dies with this call. It must not be
	// promoted to shared state across requests.
	seen := make(map[string]struct{})
	batch := make([]model.Product, 0, importBatchSize)
	var totalImported int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.store.Product().BulkUpsert(ctx, batch); err != nil {
			return err
		}
		totalImported += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_, _ = store.Rollback(ctx)
			return 0, NewErrFileCorrupted(err)
		}

		sku := strings.TrimSpace(header.Value(record, imports.ColumnSku))
		if sku == "" {
			continue
		}
		if _, dup := seen[sku]; dup {
			// duplicate within the file, first occurrence wins
			continue
		}
		seen[sku] = struct{}{}

		batch = append(batch, model.Product{
			Sku:         sku,
			Name:        strings.TrimSpace(header.Value(record, imports.ColumnName)),
			Description: strings.TrimSpace(header.Value(record, imports.ColumnDescription)),
			Price:       imports.ParsePrice(header.Value(record, imports.ColumnPrice)),
			Active:      true,
		})

		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				_, _ = store.Rollback(ctx)
				return 0, err
			}
		}
	}

	if err := flush(); err != nil {
		_, _ = store.Rollback(ctx)
		return 0, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return 0, err
	}

	metrics.AddRowsImported("direct", int(totalImported))
	logger.Infow("products imported", "rows", totalImported)
	return totalImported, nil
}
