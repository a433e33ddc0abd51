package service_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/acme/product-importer/internal/config"
	"github.com/acme/product-importer/internal/notifier"
	"github.com/acme/product-importer/internal/service"
	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/internal/store/model"
)

var _ = Describe("webhook service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		srv    *service.WebhookService
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(Succeed())

		srv = service.NewWebhookService(s, notifier.NewWebhookNotifier(s))
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM webhooks;")
	})

	Context("create", func() {
		It("registers an active webhook by default", func() {
			webhook, err := srv.CreateWebhook(context.TODO(), service.WebhookCreateForm{
				Url:   "https://example.com/hook",
				Event: "import_complete",
			})
			Expect(err).To(BeNil())
			Expect(webhook.ID).NotTo(BeZero())
			Expect(webhook.Active).To(BeTrue())
		})

		It("honors an explicit inactive flag", func() {
			inactive := false
			webhook, err := srv.CreateWebhook(context.TODO(), service.WebhookCreateForm{
				Url:    "https://example.com/hook",
				Event:  "import_complete",
				Active: &inactive,
			})
			Expect(err).To(BeNil())

			stored, err := s.Webhook().Get(context.TODO(), webhook.ID)
			Expect(err).To(BeNil())
			Expect(stored.Active).To(BeFalse())
		})

		It("rejects a malformed url", func() {
			_, err := srv.CreateWebhook(context.TODO(), service.WebhookCreateForm{
				Url:   "not a url",
				Event: "import_complete",
			})

			var invalidErr *service.ErrInvalidRequest
			Expect(errors.As(err, &invalidErr)).To(BeTrue())
		})

		It("rejects a missing event", func() {
			_, err := srv.CreateWebhook(context.TODO(), service.WebhookCreateForm{
				Url: "https://example.com/hook",
			})

			var invalidErr *service.ErrInvalidRequest
			Expect(errors.As(err, &invalidErr)).To(BeTrue())
		})
	})

	Context("test delivery", func() {
		It("posts the test payload and reports the upstream status", func() {
			var received []byte
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				received, _ = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusAccepted)
			}))
			defer upstream.Close()

			webhook, err := s.Webhook().Create(context.TODO(), model.Webhook{
				Url: upstream.URL, Event: "import_complete", Active: true,
			})
			Expect(err).To(BeNil())

			code, err := srv.TestWebhook(context.TODO(), webhook.ID)
			Expect(err).To(BeNil())
			Expect(code).To(Equal(http.StatusAccepted))
			Expect(received).To(MatchJSON(`{"event": "test", "msg": "Hello from server"}`))
		})

		It("reports an unhealthy upstream by its status code", func() {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer upstream.Close()

			webhook, err := s.Webhook().Create(context.TODO(), model.Webhook{
				Url: upstream.URL, Event: "import_complete", Active: true,
			})
			Expect(err).To(BeNil())

			code, err := srv.TestWebhook(context.TODO(), webhook.ID)
			Expect(err).To(BeNil())
			Expect(code).To(Equal(http.StatusServiceUnavailable))
		})

		It("returns not found for an unknown webhook", func() {
			_, err := srv.TestWebhook(context.TODO(), 4242)

			var notFoundErr *service.ErrResourceNotFound
			Expect(errors.As(err, &notFoundErr)).To(BeTrue())
		})
	})
})
