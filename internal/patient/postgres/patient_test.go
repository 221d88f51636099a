package postgres_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/frahmantamala/ebooklet-admin/internal/patient"
	patientPostgres "github.com/frahmantamala/ebooklet-admin/internal/patient/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPatientPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Patient Postgres Suite")
}

var _ = Describe("Patient Repository", func() {
	var (
		db   *gorm.DB
		repo *patientPostgres.PatientRepository
	)

	mustUpsert := func(p *patient.Patient) {
		if p.AccessToken == "" {
			p.AccessToken = "token-" + p.MRNumber
		}
		if p.ApprovalStatus == "" {
			p.ApprovalStatus = patient.StatusPending
		}
		Expect(repo.Upsert(p)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&patient.Patient{})).To(Succeed())

		repo = patientPostgres.NewPatientRepository(db)
	})

	Describe("search", func() {
		BeforeEach(func() {
			mustUpsert(&patient.Patient{MRNumber: "RM-001", Name: "Siti Rahma", ScheduledAt: time.Now()})
			mustUpsert(&patient.Patient{MRNumber: "RM-002", Name: "Budi Santoso", ScheduledAt: time.Now()})
			mustUpsert(&patient.Patient{MRNumber: "RM-003", Name: "Dewi Lestari", ScheduledAt: time.Now()})
		})

		It("matches names case-insensitively", func() {
			results, total, err := repo.List(patient.ListParams{Page: 1, Limit: 20, Search: "sit"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(results[0].Name).To(Equal("Siti Rahma"))
		})

		It("matches the medical record number too", func() {
			results, total, err := repo.List(patient.ListParams{Page: 1, Limit: 20, Search: "rm-002"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(results[0].MRNumber).To(Equal("RM-002"))
		})

		It("returns everything for an empty search", func() {
			_, total, err := repo.List(patient.ListParams{Page: 1, Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
		})
	})

	Describe("status filter", func() {
		BeforeEach(func() {
			mustUpsert(&patient.Patient{MRNumber: "RM-001", Name: "Siti", ScheduledAt: time.Now()})
			approved := &patient.Patient{MRNumber: "RM-002", Name: "Budi", ScheduledAt: time.Now(), ApprovalStatus: patient.StatusApproved}
			mustUpsert(approved)
		})

		It("filters approved records", func() {
			results, total, err := repo.List(patient.ListParams{Page: 1, Limit: 20, Status: patient.StatusApproved})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(results[0].MRNumber).To(Equal("RM-002"))
		})

		It("filters pending records", func() {
			_, total, err := repo.List(patient.ListParams{Page: 1, Limit: 20, Status: patient.StatusPending})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})
	})

	Describe("sorting", func() {
		BeforeEach(func() {
			base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
			names := []string{"Citra", "Agus", "Bambang"}
			for i, name := range names {
				p := &patient.Patient{
					MRNumber:    fmt.Sprintf("RM-%03d", i+1),
					Name:        name,
					ScheduledAt: base.AddDate(0, 0, i),
					AccessToken: "t",
					CreatedAt:   base.Add(time.Duration(i) * time.Minute),
				}
				Expect(db.Create(p).Error).To(Succeed())
			}
		})

		It("sorts by a whitelisted column ascending", func() {
			results, _, err := repo.List(patient.ListParams{Page: 1, Limit: 20, SortBy: "name", SortOrder: "ASC"})
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Name).To(Equal("Agus"))
			Expect(results[2].Name).To(Equal("Citra"))
		})

		It("defaults to newest first for an unknown sort column", func() {
			results, _, err := repo.List(patient.ListParams{Page: 1, Limit: 20, SortBy: "no_such_column"})
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Name).To(Equal("Bambang"))
		})

		It("defaults to descending for anything but exactly ASC", func() {
			results, _, err := repo.List(patient.ListParams{Page: 1, Limit: 20, SortBy: "name", SortOrder: "asc"})
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Name).To(Equal("Citra"))
		})
	})

	Describe("pagination", func() {
		BeforeEach(func() {
			base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
			for i := 1; i <= 25; i++ {
				p := &patient.Patient{
					MRNumber:    fmt.Sprintf("RM-%03d", i),
					Name:        fmt.Sprintf("Pasien %02d", i),
					ScheduledAt: base,
					AccessToken: "t",
					CreatedAt:   base.Add(time.Duration(i) * time.Minute),
				}
				Expect(db.Create(p).Error).To(Succeed())
			}
		})

		It("returns the remainder on the final page", func() {
			results, total, err := repo.List(patient.ListParams{Page: 2, Limit: 20, SortBy: "mr_number", SortOrder: "ASC"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(25)))
			Expect(results).To(HaveLen(5))
			Expect(results[0].MRNumber).To(Equal("RM-021"))
			Expect(results[4].MRNumber).To(Equal("RM-025"))
		})

		It("counts the full match set, not the page", func() {
			results, total, err := repo.List(patient.ListParams{Page: 1, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(25)))
			Expect(results).To(HaveLen(10))
		})
	})

	Describe("Upsert", func() {
		It("keeps the token and approval fields on conflict", func() {
			approvedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
			original := &patient.Patient{
				MRNumber:       "RM-001",
				Name:           "Siti",
				ScheduledAt:    time.Now(),
				AccessToken:    "token-asli",
				ApprovalStatus: patient.StatusApproved,
				ApprovedAt:     &approvedAt,
			}
			Expect(repo.Upsert(original)).To(Succeed())

			update := &patient.Patient{
				MRNumber:       "RM-001",
				Name:           "Siti Rahma",
				ScheduledAt:    time.Now(),
				AccessToken:    "token-baru",
				ApprovalStatus: patient.StatusPending,
			}
			Expect(repo.Upsert(update)).To(Succeed())

			stored, err := repo.GetByMRNumber("RM-001")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("Siti Rahma"))
			Expect(stored.AccessToken).To(Equal("token-asli"))
			Expect(stored.ApprovalStatus).To(Equal(patient.StatusApproved))
			Expect(stored.ApprovedAt).NotTo(BeNil())
		})
	})

	Describe("Delete", func() {
		It("removes one record", func() {
			mustUpsert(&patient.Patient{MRNumber: "RM-001", Name: "Siti", ScheduledAt: time.Now()})

			Expect(repo.Delete("RM-001")).To(Succeed())

			_, err := repo.GetByMRNumber("RM-001")
			Expect(err).To(MatchError(patient.ErrNotFound))
		})

		It("reports not found for a missing record", func() {
			Expect(repo.Delete("RM-999")).To(MatchError(patient.ErrNotFound))
		})
	})

	Describe("DeleteAll", func() {
		It("empties the table and reports the count", func() {
			mustUpsert(&patient.Patient{MRNumber: "RM-001", Name: "Siti", ScheduledAt: time.Now()})
			mustUpsert(&patient.Patient{MRNumber: "RM-002", Name: "Budi", ScheduledAt: time.Now()})

			removed, err := repo.DeleteAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(Equal(int64(2)))

			_, total, err := repo.List(patient.ListParams{Page: 1, Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
		})
	})
})
