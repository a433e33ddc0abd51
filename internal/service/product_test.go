package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/acme/product-importer/internal/config"
	"github.com/acme/product-importer/internal/service"
	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/internal/store/model"
)

// recordingStore intercepts the product store so tests can observe and
// fail batch writes while everything else hits the real database.
type recordingStore struct {
	store.Store
	product *recordingProductStore
}

func newRecordingStore(s store.Store) *recordingStore {
	return &recordingStore{
		Store:   s,
		product: &recordingProductStore{Product: s.Product()},
	}
}

func (r *recordingStore) Product() store.Product { return r.product }

type recordingProductStore struct {
	store.Product
	batchSizes []int
	failOnCall int
	calls      int
}

func (r *recordingProductStore) BulkUpsert(ctx context.Context, batch []model.Product) error {
	r.calls++
	if r.failOnCall != 0 && r.calls == r.failOnCall {
		return errors.New("write rejected")
	}
	r.batchSizes = append(r.batchSizes, len(batch))
	return r.Product.BulkUpsert(ctx, batch)
}

func productsCsv(rows int) string {
	var b strings.Builder
	b.WriteString("name,sku,description,price\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "item %d,SKU-%d,desc %d,%.2f\n", i, i, i, float64(i)+0.5)
	}
	return b.String()
}

var _ = Describe("product service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(Succeed())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM products;")
	})

	Context("import products", func() {
		It("imports every unique row in fixed-size batches", func() {
			recording := newRecordingStore(s)
			srv := service.NewProductService(recording)

			imported, err := srv.ImportProducts(context.TODO(), strings.NewReader(productsCsv(2500)))
			Expect(err).To(BeNil())
			Expect(imported).To(Equal(int64(2500)))
			Expect(recording.product.batchSizes).To(Equal([]int{1000, 1000, 500}))

			products, err := s.Product().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(products).To(HaveLen(2500))
		})

		It("keeps the first occurrence of a duplicated sku", func() {
			srv := service.NewProductService(s)

			file := "name,sku,description\nfirst,SKU-1,d1\nother,SKU-2,d2\nlast,SKU-1,d3\n"
			imported, err := srv.ImportProducts(context.TODO(), strings.NewReader(file))
			Expect(err).To(BeNil())
			Expect(imported).To(Equal(int64(2)))

			products, err := s.Product().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(products).To(HaveLen(2))
			Expect(products[0].Sku).To(Equal("SKU-1"))
			Expect(products[0].Name).To(Equal("first"))
		})

		It("skips rows without a sku", func() {
			srv := service.NewProductService(s)

			file := "name,sku,description\nkept,SKU-1,d1\ndropped,,d2\nkept too,SKU-2,d3\n"
			imported, err := srv.ImportProducts(context.TODO(), strings.NewReader(file))
			Expect(err).To(BeNil())
			Expect(imported).To(Equal(int64(2)))
		})

		It("rejects a file without the required columns", func() {
			srv := service.NewProductService(s)

			file := "name,sku\na,SKU-1\n"
			_, err := srv.ImportProducts(context.TODO(), strings.NewReader(file))

			var missingErr *service.ErrMissingColumns
			Expect(errors.As(err, &missingErr)).To(BeTrue())

			products, err := s.Product().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(products).To(BeEmpty())
		})

		It("rolls back all batches when a later write fails", func() {
			recording := newRecordingStore(s)
			recording.product.failOnCall = 2
			srv := service.NewProductService(recording)

			_, err := srv.ImportProducts(context.TODO(), strings.NewReader(productsCsv(1500)))
			Expect(err).To(HaveOccurred())

			products, err := s.Product().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(products).To(BeEmpty())
		})
	})
})
