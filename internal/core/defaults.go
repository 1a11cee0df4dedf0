package core

var DefaultExpenseCategories = []string{
	"Kira",
	"Bağkur",
	"Ulaşım",
	"Yemek",
	"Fatura",
	"Telefon",
	"Sağlık",
	"Diğer",
}

var DefaultCommissionCategories = []string{
	"Halı",
	"Taş",
	"Seramik",
	"At Turu",
	"ATV Turu",
	"Yemek",
	"Balon",
	"Deri",
	"Kuru Yemiş",
	"Diğer",
}

var TourTypeLabels = map[TourType]string{
	TourHalf:    "Yarım Gün",
	TourFull:    "Tam Gün",
	TourPackage: "Paket Tur",
}

var PaymentStatusLabels = map[PaymentStatus]string{
	Unpaid:  "Ödenmedi",
	Partial: "Kısmi Ödendi",
	Paid:    "Ödendi",
}

var TourStatusLabels = map[TourStatus]string{
	Upcoming: "Yaklaşan",
	Current:  "Aktif",
	Past:     "Geçmiş",
}

var MonthNames = []string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// DefaultSettings are used when no settings were ever saved.
func DefaultSettings() AppSettings {
	return AppSettings{
		DefaultDailyRate:     NewMoney(1500),
		NotificationsEnabled: true,
		FirstDayOfWeek:       1,
	}
}

// DefaultAgencies seeds the agency list on first use.
func DefaultAgencies(createdAt string) []Agency {
	return []Agency{
		{ID: "agency-1", Name: "Özel Tur", DefaultDailyRate: NewMoney(1500), CreatedAt: createdAt},
		{ID: "agency-2", Name: "TUI", DefaultDailyRate: NewMoney(2000), CreatedAt: createdAt},
		{ID: "agency-3", Name: "Neckermann", DefaultDailyRate: NewMoney(1800), CreatedAt: createdAt},
		{ID: "agency-4", Name: "Thomas Cook", DefaultDailyRate: NewMoney(1800), CreatedAt: createdAt},
	}
}

// MergeExpenseCategories returns the defaults followed by every extra
// category not already present, preserving order.
func MergeExpenseCategories(extra []string) []string {
	out := append([]string(nil), DefaultExpenseCategories...)
	seen := make(map[string]struct{}, len(out)+len(extra))
	for _, c := range out {
		seen[c] = struct{}{}
	}
	for _, c := range extra {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// CustomExpenseCategories is the inverse of MergeExpenseCategories: it drops
// the defaults and keeps user-added categories only.
func CustomExpenseCategories(all []string) []string {
	defaults := make(map[string]struct{}, len(DefaultExpenseCategories))
	for _, c := range DefaultExpenseCategories {
		defaults[c] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, c := range all {
		if _, ok := defaults[c]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
