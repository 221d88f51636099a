package patient_test

import (
	"bytes"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/ebooklet-admin/internal/patient"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository implements patient.Repository for testing
type MockRepository struct {
	patients   map[string]*patient.Patient
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{patients: make(map[string]*patient.Patient)}
}

func (m *MockRepository) all() []*patient.Patient {
	var result []*patient.Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MRNumber < result[j].MRNumber })
	return result
}

func (m *MockRepository) List(params patient.ListParams) ([]*patient.Patient, int64, error) {
	if m.shouldFail {
		return nil, 0, m.failError
	}
	all := m.all()
	total := int64(len(all))

	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *MockRepository) ListAll(params patient.ListParams) ([]*patient.Patient, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.all(), nil
}

func (m *MockRepository) GetByMRNumber(mrNumber string) (*patient.Patient, error) {
	p, ok := m.patients[mrNumber]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (m *MockRepository) Upsert(p *patient.Patient) error {
	if m.shouldFail {
		return m.failError
	}
	if existing, ok := m.patients[p.MRNumber]; ok {
		// conflict path: editable fields only
		existing.Name = p.Name
		existing.ScheduledAt = p.ScheduledAt
		existing.Doctor = p.Doctor
		existing.Gender = p.Gender
		existing.Age = p.Age
		existing.Diagnosis = p.Diagnosis
		existing.Payer = p.Payer
		existing.Class = p.Class
		existing.Scale = p.Scale
		return nil
	}
	cp := *p
	m.patients[p.MRNumber] = &cp
	return nil
}

func (m *MockRepository) Delete(mrNumber string) error {
	if _, ok := m.patients[mrNumber]; !ok {
		return patient.ErrNotFound
	}
	delete(m.patients, mrNumber)
	return nil
}

func (m *MockRepository) DeleteAll() (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	n := int64(len(m.patients))
	m.patients = make(map[string]*patient.Patient)
	return n, nil
}

var _ = Describe("Patient Service", func() {
	var (
		repo    *MockRepository
		service *patient.Service
	)

	seed := func(n int) {
		for i := 0; i < n; i++ {
			Expect(repo.Upsert(&patient.Patient{
				MRNumber:    "RM-" + string(rune('A'+i)),
				Name:        "Pasien",
				ScheduledAt: time.Now(),
				AccessToken: "token",
			})).To(Succeed())
		}
	}

	BeforeEach(func() {
		repo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = patient.NewService(repo, nil, logger)
	})

	Describe("List", func() {
		It("computes total pages with a partial final page", func() {
			seed(5)

			result, err := service.List(patient.ListParams{Page: 1, Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Pagination.Total).To(Equal(int64(5)))
			Expect(result.Pagination.TotalPages).To(Equal(3))
		})

		It("fills display placeholders on results", func() {
			seed(1)

			result, err := service.List(patient.ListParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Patients).To(HaveLen(1))
			Expect(result.Patients[0].Doctor).To(Equal("Akan ditentukan"))
			Expect(result.Patients[0].Diagnosis).To(Equal("-"))
		})

		It("returns an empty page past the end rather than an error", func() {
			seed(3)

			result, err := service.List(patient.ListParams{Page: 5, Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Patients).To(BeEmpty())
			Expect(result.Pagination.Total).To(Equal(int64(3)))
		})
	})

	Describe("Upsert", func() {
		It("generates an access token for a new record", func() {
			p, err := service.Upsert("admin", patient.UpsertPatientDTO{
				MRNumber:    "RM-100",
				Name:        "Siti Rahma",
				ScheduledAt: time.Now(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.AccessToken).NotTo(BeEmpty())
			Expect(p.ApprovalStatus).To(Equal(patient.StatusPending))
		})

		It("preserves the original token and status when updating", func() {
			first, err := service.Upsert("admin", patient.UpsertPatientDTO{
				MRNumber:    "RM-100",
				Name:        "Siti Rahma",
				ScheduledAt: time.Now(),
			})
			Expect(err).NotTo(HaveOccurred())

			second, err := service.Upsert("admin", patient.UpsertPatientDTO{
				MRNumber:    "RM-100",
				Name:        "Siti Rahma Dewi",
				ScheduledAt: time.Now(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Name).To(Equal("Siti Rahma Dewi"))
			Expect(second.AccessToken).To(Equal(first.AccessToken))
		})

		It("rejects a record without required fields", func() {
			_, err := service.Upsert("admin", patient.UpsertPatientDTO{MRNumber: "RM-100"})
			var verr patient.ValidationError
			Expect(err).To(BeAssignableToTypeOf(verr))
		})
	})

	Describe("ClearAll", func() {
		BeforeEach(func() {
			seed(3)
		})

		It("refuses without the exact confirmation phrase", func() {
			for _, phrase := range []string{"", "hapus permanen", "HAPUS", "HAPUS PERMANEN "} {
				_, err := service.ClearAll("admin", phrase)
				Expect(err).To(MatchError(patient.ErrConfirmationMismatch), "phrase %q", phrase)
			}
			Expect(repo.patients).To(HaveLen(3))
		})

		It("wipes everything with the exact phrase and reports the count", func() {
			removed, err := service.ClearAll("admin", "HAPUS PERMANEN")
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(Equal(int64(3)))
			Expect(repo.patients).To(BeEmpty())
		})
	})

	Describe("ExportCSV", func() {
		It("renders a header row plus one row per patient", func() {
			seed(2)

			var buf bytes.Buffer
			Expect(service.ExportCSV(&buf, patient.ListParams{})).To(Succeed())

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			Expect(lines).To(HaveLen(3))
			Expect(lines[0]).To(ContainSubstring("No. RM"))
		})

		It("writes placeholders for missing fields", func() {
			seed(1)

			var buf bytes.Buffer
			Expect(service.ExportCSV(&buf, patient.ListParams{})).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("Akan ditentukan"))
		})
	})
})
