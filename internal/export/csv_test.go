package export

import (
	"strings"
	"testing"
	"time"

	"guidetrack/internal/core"
)

func sampleTours() []core.TourEntry {
	return []core.TourEntry{
		{
			ID: "t2", Title: "Kapadokya, 3 gün", Type: core.TourPackage,
			StartDate: "2024-06-20", EndDate: "2024-06-22", AgencyID: "a1",
			DailyRate: core.NewMoney(1800), PaymentStatus: core.Paid, PaidAmount: core.NewMoney(5400),
			Tips: []core.Tip{{ID: "x", Amount: core.Money{Cents: 1250}}},
		},
		{
			ID: "t1", Title: "Efes", Type: core.TourHalf,
			StartDate: "2024-06-10", EndDate: "2024-06-10", AgencyID: "gone",
			DailyRate: core.NewMoney(1500), PaymentStatus: core.Unpaid,
			Commissions: []core.Commission{{ID: "c", Category: "Halı", Amount: core.NewMoney(300)}},
			Notes: `dedi ki "tamam"`,
		},
	}
}

func TestTourRows(t *testing.T) {
	tours := sampleTours()
	agencies := []core.Agency{{ID: "a1", Name: "TUI"}}

	rows := TourRows(tours, agencies)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if tours[0].ID != "t2" {
		t.Fatal("input slice was reordered")
	}

	first := rows[0]
	if first[0] != "Efes" || first[1] != "Yarım Gün" || first[4] != UnknownAgency {
		t.Errorf("unexpected first row: %v", first)
	}
	if first[6] != "0.5" || first[7] != "750" || first[9] != "300" || first[10] != "1050" {
		t.Errorf("unexpected income columns: %v", first)
	}
	if first[11] != "Ödenmedi" || first[12] != "0" {
		t.Errorf("unexpected payment columns: %v", first)
	}

	second := rows[1]
	if second[2] != "20.06.2024" || second[3] != "22.06.2024" || second[4] != "TUI" {
		t.Errorf("unexpected second row: %v", second)
	}
	if second[6] != "3" || second[7] != "5400" || second[8] != "12.5" || second[10] != "5412.5" {
		t.Errorf("unexpected income columns: %v", second)
	}
	if second[1] != "Paket Tur" || second[11] != "Ödendi" {
		t.Errorf("unexpected labels: %v", second)
	}
	if len(first) != len(TourHeader) {
		t.Errorf("row has %d columns, header has %d", len(first), len(TourHeader))
	}
}

func TestToursCSV(t *testing.T) {
	out := ToursCSV(sampleTours(), nil)

	if !strings.HasPrefix(out, "\uFEFFTur Adı,Tür,") {
		t.Fatalf("missing BOM or header: %q", out[:30])
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("document should not end with a newline")
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], `"dedi ki ""tamam"""`) {
		t.Errorf("quotes not escaped: %s", lines[1])
	}
	if !strings.HasPrefix(lines[2], `"Kapadokya, 3 gün"`) {
		t.Errorf("comma field not quoted: %s", lines[2])
	}
}

func TestExpensesCSV(t *testing.T) {
	expenses := []core.Expense{
		{Title: "Kira", Category: "Kira", Date: "2024-07-01", Amount: core.NewMoney(12000), IsRecurring: true},
		{Title: "Taksi", Category: "Ulaşım", Date: "2024-06-03", Amount: core.Money{Cents: 25050}},
	}

	out := ExpensesCSV(expenses)
	want := "\uFEFFBaşlık,Kategori,Tarih,Tutar (₺),Tekrarlayan,Notlar\n" +
		"Taksi,Ulaşım,03.06.2024,250.5,Hayır,\n" +
		"Kira,Kira,01.07.2024,12000,Evet,"
	if out != want {
		t.Errorf("ExpensesCSV() =\n%q\nwant\n%q", out, want)
	}
}

func TestAllCSV(t *testing.T) {
	out := AllCSV(nil, nil, nil)
	want := "TUR KAYITLARI\n\uFEFF" + strings.Join(TourHeader, ",") +
		"\n\nGİDER KAYITLARI\n\uFEFF" + strings.Join(ExpenseHeader, ",")
	if out != want {
		t.Errorf("AllCSV() = %q, want %q", out, want)
	}
}

func TestAgencyRows(t *testing.T) {
	rows := AgencyRows([]core.Agency{{Name: "TUI", DefaultDailyRate: core.NewMoney(2000), Phone: "555"}})
	if len(rows) != 1 || rows[0][0] != "TUI" || rows[0][1] != "2000" || rows[0][3] != "555" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestFilenames(t *testing.T) {
	now := time.Date(2024, 6, 10, 23, 30, 0, 0, time.FixedZone("TRT", 3*3600))
	tests := map[string]string{
		ToursFilename(now):    "guidetrack-turlar-2024-06-10.csv",
		ExpensesFilename(now): "guidetrack-giderler-2024-06-10.csv",
		AllFilename(now):      "guidetrack-tum-veriler-2024-06-10.csv",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}
}
