package patient

import (
	"encoding/csv"
	"io"
	"time"
)

var csvHeader = []string{
	"No. RM",
	"Nama Pasien",
	"Jadwal Operasi",
	"Dokter",
	"Jenis Kelamin",
	"Usia",
	"Diagnosis",
	"Penjamin",
	"Kelas",
	"Skala",
	"Status Persetujuan",
	"Waktu Persetujuan",
}

// writeCSV renders the rows in the same column order the admin table shows.
func writeCSV(w io.Writer, patients []*Patient) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, p := range patients {
		approvedAt := "-"
		if p.ApprovedAt != nil {
			approvedAt = p.ApprovedAt.Format(time.RFC3339)
		}
		row := []string{
			p.MRNumber,
			p.Name,
			p.ScheduledAt.Format("2006-01-02 15:04"),
			p.Doctor,
			p.Gender,
			p.Age,
			p.Diagnosis,
			p.Payer,
			p.Class,
			p.Scale,
			p.ApprovalStatus,
			approvedAt,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
