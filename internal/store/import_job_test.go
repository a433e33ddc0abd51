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

var _ = Describe("import job store", Ordered, func() {
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
		gormdb.Exec("DELETE FROM import_jobs;")
	})

	Context("create and get", func() {
		It("round-trips a queued job", func() {
			created, err := s.ImportJob().Create(context.TODO(), model.ImportJob{
				ID:         "job-1",
				SourcePath: "/tmp/uploads/job-1.csv",
				Status:     model.JobStatusQueued,
				Message:    "Queued for import",
			})
			Expect(err).To(BeNil())
			Expect(created.ID).To(Equal("job-1"))

			job, err := s.ImportJob().Get(context.TODO(), "job-1")
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.JobStatusQueued))
			Expect(job.Percent).To(BeZero())
			Expect(job.Message).To(Equal("Queued for import"))
		})

		It("returns ErrRecordNotFound for an unknown id", func() {
			_, err := s.ImportJob().Get(context.TODO(), "missing")
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("progress", func() {
		It("overwrites percent and message, last writer wins", func() {
			_, err := s.ImportJob().Create(context.TODO(), model.ImportJob{ID: "job-1", Status: model.JobStatusRunning})
			Expect(err).To(BeNil())

			Expect(s.ImportJob().UpdateProgress(context.TODO(), "job-1", 40, "Processed 1000/2500")).To(Succeed())
			Expect(s.ImportJob().UpdateProgress(context.TODO(), "job-1", 80, "Processed 2000/2500")).To(Succeed())

			job, err := s.ImportJob().Get(context.TODO(), "job-1")
			Expect(err).To(BeNil())
			Expect(job.Percent).To(Equal(80.0))
			Expect(job.Message).To(Equal("Processed 2000/2500"))
		})
	})

	Context("status", func() {
		It("records a terminal failure with its error", func() {
			_, err := s.ImportJob().Create(context.TODO(), model.ImportJob{ID: "job-1", Status: model.JobStatusRunning})
			Expect(err).To(BeNil())

			Expect(s.ImportJob().UpdateStatus(context.TODO(), "job-1", model.JobStatusFailed, "flush batch: disk full")).To(Succeed())

			job, err := s.ImportJob().Get(context.TODO(), "job-1")
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.JobStatusFailed))
			Expect(job.Error).To(Equal("flush batch: disk full"))
		})

		It("clears the failure text when a redelivered job recovers", func() {
			_, err := s.ImportJob().Create(context.TODO(), model.ImportJob{ID: "job-1", Status: model.JobStatusRunning})
			Expect(err).To(BeNil())

			Expect(s.ImportJob().UpdateStatus(context.TODO(), "job-1", model.JobStatusFailed, "flush batch: disk full")).To(Succeed())
			Expect(s.ImportJob().UpdateStatus(context.TODO(), "job-1", model.JobStatusComplete, "")).To(Succeed())

			job, err := s.ImportJob().Get(context.TODO(), "job-1")
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.JobStatusComplete))
			Expect(job.Error).To(BeEmpty())
		})
	})

	Context("checkpoint", func() {
		It("advances the checkpoint as batches are applied", func() {
			_, err := s.ImportJob().Create(context.TODO(), model.ImportJob{ID: "job-1", Status: model.JobStatusRunning})
			Expect(err).To(BeNil())

			Expect(s.ImportJob().UpdateCheckpoint(context.TODO(), "job-1", 1000)).To(Succeed())
			Expect(s.ImportJob().UpdateCheckpoint(context.TODO(), "job-1", 2000)).To(Succeed())

			job, err := s.ImportJob().Get(context.TODO(), "job-1")
			Expect(err).To(BeNil())
			Expect(job.Checkpoint).To(Equal(int64(2000)))
		})
	})
})
