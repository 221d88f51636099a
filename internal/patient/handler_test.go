package patient_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/ebooklet-admin/internal/auth"
	"github.com/frahmantamala/ebooklet-admin/internal/patient"
	"github.com/frahmantamala/ebooklet-admin/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Patient Handler Integration", func() {
	var (
		repo    *MockRepository
		service *patient.Service
		handler *patient.Handler
	)

	withIdentity := func(req *http.Request) *http.Request {
		perms, _ := permission.ByRole(permission.RoleAdmin)
		identity := &auth.Identity{UserID: 1, Username: "admin", Role: permission.RoleAdmin, Permissions: perms}
		return req.WithContext(context.WithValue(req.Context(), auth.ContextIdentityKey, identity))
	}

	BeforeEach(func() {
		repo = NewMockRepository()
		slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = patient.NewService(repo, nil, slogger)
		handler = patient.NewHandler(service)
	})

	Describe("GET /patients", func() {
		It("returns patients with pagination metadata", func() {
			Expect(repo.Upsert(&patient.Patient{MRNumber: "RM-001", Name: "Siti", ScheduledAt: time.Now(), AccessToken: "t"})).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/patients?page=1&limit=20", nil)
			w := httptest.NewRecorder()

			handler.ListPatients(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var result patient.ListResult
			Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
			Expect(result.Patients).To(HaveLen(1))
			Expect(result.Pagination.Total).To(Equal(int64(1)))
			Expect(result.Pagination.TotalPages).To(Equal(1))
		})
	})

	Describe("POST /patients", func() {
		It("creates a record and returns it", func() {
			body := `{"mr_number":"RM-001","name":"Siti Rahma","scheduled_at":"2024-06-01T08:00:00Z"}`
			req := withIdentity(httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(body)))
			w := httptest.NewRecorder()

			handler.UpsertPatient(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var p patient.Patient
			Expect(json.NewDecoder(w.Body).Decode(&p)).To(Succeed())
			Expect(p.MRNumber).To(Equal("RM-001"))
			Expect(p.ApprovalStatus).To(Equal(patient.StatusPending))
		})

		It("rejects a payload missing required fields", func() {
			body := `{"mr_number":"RM-001"}`
			req := withIdentity(httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(body)))
			w := httptest.NewRecorder()

			handler.UpsertPatient(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects an unauthenticated request", func() {
			req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(`{}`))
			w := httptest.NewRecorder()

			handler.UpsertPatient(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("POST /patients/clear-all", func() {
		BeforeEach(func() {
			Expect(repo.Upsert(&patient.Patient{MRNumber: "RM-001", Name: "Siti", ScheduledAt: time.Now(), AccessToken: "t"})).To(Succeed())
		})

		It("returns 400 with the mismatch code for a wrong phrase", func() {
			body := `{"confirmation":"hapus permanen"}`
			req := withIdentity(httptest.NewRequest(http.MethodPost, "/patients/clear-all", strings.NewReader(body)))
			w := httptest.NewRecorder()

			handler.ClearAllPatients(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("CONFIRMATION_MISMATCH"))
			Expect(repo.patients).To(HaveLen(1))
		})

		It("clears everything with the exact phrase", func() {
			body := `{"confirmation":"HAPUS PERMANEN"}`
			req := withIdentity(httptest.NewRequest(http.MethodPost, "/patients/clear-all", strings.NewReader(body)))
			w := httptest.NewRecorder()

			handler.ClearAllPatients(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(repo.patients).To(BeEmpty())
		})
	})

	Describe("GET /patients/export", func() {
		It("sets CSV download headers", func() {
			Expect(repo.Upsert(&patient.Patient{MRNumber: "RM-001", Name: "Siti", ScheduledAt: time.Now(), AccessToken: "t"})).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/patients/export", nil)
			w := httptest.NewRecorder()

			handler.ExportCSV(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("text/csv"))
			Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("attachment"))
			Expect(w.Body.String()).To(ContainSubstring("RM-001"))
		})
	})
})
