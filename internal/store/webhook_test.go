package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/acme/product-importer/internal/config"
	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/internal/store/model"
)

var _ = Describe("webhook store", Ordered, func() {
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
		gormdb.Exec("DELETE FROM webhooks;")
	})

	Context("create and list", func() {
		It("assigns ids and lists in insertion order", func() {
			first, err := s.Webhook().Create(context.TODO(), model.Webhook{
				Url: "https://example.com/a", Event: "import_complete", Active: true,
			})
			Expect(err).To(BeNil())
			Expect(first.ID).NotTo(BeZero())

			_, err = s.Webhook().Create(context.TODO(), model.Webhook{
				Url: "https://example.com/b", Event: "import_complete", Active: true,
			})
			Expect(err).To(BeNil())

			webhooks, err := s.Webhook().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(webhooks).To(HaveLen(2))
			Expect(webhooks[0].Url).To(Equal("https://example.com/a"))
		})
	})

	Context("get", func() {
		It("returns ErrRecordNotFound for an unknown id", func() {
			_, err := s.Webhook().Get(context.TODO(), 4242)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("list active by event", func() {
		It("filters out inactive registrations and other events", func() {
			_, err := s.Webhook().Create(context.TODO(), model.Webhook{
				Url: "https://example.com/match", Event: "import_complete", Active: true,
			})
			Expect(err).To(BeNil())
			_, err = s.Webhook().Create(context.TODO(), model.Webhook{
				Url: "https://example.com/inactive", Event: "import_complete", Active: false,
			})
			Expect(err).To(BeNil())
			_, err = s.Webhook().Create(context.TODO(), model.Webhook{
				Url: "https://example.com/other", Event: "product_deleted", Active: true,
			})
			Expect(err).To(BeNil())

			webhooks, err := s.Webhook().ListActiveByEvent(context.TODO(), "import_complete")
			Expect(err).To(BeNil())
			Expect(webhooks).To(HaveLen(1))
			Expect(webhooks[0].Url).To(Equal("https://example.com/match"))
		})
	})
})
