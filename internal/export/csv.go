// Package export renders tours, expenses and agencies as tabular rows and
// CSV documents. Rows are shared with the spreadsheet mirror.
package export

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"strings"
	"time"

	"guidetrack/internal/core"
	"guidetrack/internal/finance"
)

const (
	bom = "\uFEFF"

	UnknownAgency = "Bilinmiyor"

	toursSectionTitle    = "TUR KAYITLARI"
	expensesSectionTitle = "GİDER KAYITLARI"
)

var TourHeader = []string{
	"Tur Adı",
	"Tür",
	"Başlangıç",
	"Bitiş",
	"Ajans",
	"Günlük Ücret (₺)",
	"Gün Sayısı",
	"Yevmiye Toplamı (₺)",
	"Bahşiş (₺)",
	"Komisyon (₺)",
	"Toplam Gelir (₺)",
	"Ödeme Durumu",
	"Ödenen (₺)",
	"Notlar",
}

var ExpenseHeader = []string{"Başlık", "Kategori", "Tarih", "Tutar (₺)", "Tekrarlayan", "Notlar"}

var AgencyHeader = []string{"Ajans", "Günlük Ücret (₺)", "Yetkili", "Telefon", "E-posta", "Notlar"}

// TourRows returns one row per tour ordered by start date. The input slice
// is left untouched.
func TourRows(tours []core.TourEntry, agencies []core.Agency) [][]string {
	names := make(map[string]string, len(agencies))
	for _, a := range agencies {
		names[a.ID] = a.Name
	}

	sorted := make([]core.TourEntry, len(tours))
	copy(sorted, tours)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate < sorted[j].StartDate
	})

	rows := make([][]string, 0, len(sorted))
	for _, t := range sorted {
		agency, ok := names[t.AgencyID]
		if !ok {
			agency = UnknownAgency
		}
		rows = append(rows, []string{
			t.Title,
			tourTypeLabel(t.Type),
			core.FormatDate(t.StartDate),
			core.FormatDate(t.EndDate),
			agency,
			amount(t.DailyRate),
			strconv.FormatFloat(finance.DurationDays(t), 'f', -1, 64),
			amount(finance.BaseIncome(t)),
			amount(finance.TipsTotal(t)),
			amount(finance.CommissionsTotal(t)),
			amount(finance.TotalIncome(t)),
			paymentLabel(t.PaymentStatus),
			amount(t.PaidAmount),
			t.Notes,
		})
	}
	return rows
}

// ExpenseRows returns one row per expense ordered by date.
func ExpenseRows(expenses []core.Expense) [][]string {
	sorted := make([]core.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	rows := make([][]string, 0, len(sorted))
	for _, e := range sorted {
		recurring := "Hayır"
		if e.IsRecurring {
			recurring = "Evet"
		}
		rows = append(rows, []string{
			e.Title,
			e.Category,
			core.FormatDate(e.Date),
			amount(e.Amount),
			recurring,
			e.Notes,
		})
	}
	return rows
}

// AgencyRows keeps the agency list order.
func AgencyRows(agencies []core.Agency) [][]string {
	rows := make([][]string, 0, len(agencies))
	for _, a := range agencies {
		rows = append(rows, []string{
			a.Name,
			amount(a.DefaultDailyRate),
			a.ContactPerson,
			a.Phone,
			a.Email,
			a.Notes,
		})
	}
	return rows
}

func ToursCSV(tours []core.TourEntry, agencies []core.Agency) string {
	return document(TourHeader, TourRows(tours, agencies))
}

func ExpensesCSV(expenses []core.Expense) string {
	return document(ExpenseHeader, ExpenseRows(expenses))
}

// AllCSV joins both documents under section titles, each keeping its own BOM.
func AllCSV(tours []core.TourEntry, expenses []core.Expense, agencies []core.Agency) string {
	return toursSectionTitle + "\n" + ToursCSV(tours, agencies) +
		"\n\n" + expensesSectionTitle + "\n" + ExpensesCSV(expenses)
}

func ToursFilename(now time.Time) string    { return filename("turlar", now) }
func ExpensesFilename(now time.Time) string { return filename("giderler", now) }
func AllFilename(now time.Time) string      { return filename("tum-veriler", now) }

func filename(kind string, now time.Time) string {
	return "guidetrack-" + kind + "-" + now.UTC().Format(core.DateLayout) + ".csv"
}

// document writes header and rows separated by '\n' with no trailing newline.
func document(header []string, rows [][]string) string {
	var buf bytes.Buffer
	buf.WriteString(bom)
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	_ = w.WriteAll(rows)
	return strings.TrimSuffix(buf.String(), "\n")
}

func amount(m core.Money) string {
	return m.Decimal().String()
}

func tourTypeLabel(t core.TourType) string {
	switch t {
	case core.TourHalf, core.TourFull:
		return core.TourTypeLabels[t]
	}
	return core.TourTypeLabels[core.TourPackage]
}

func paymentLabel(s core.PaymentStatus) string {
	switch s {
	case core.Paid, core.Partial:
		return core.PaymentStatusLabels[s]
	}
	return core.PaymentStatusLabels[core.Unpaid]
}
