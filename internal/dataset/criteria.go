package dataset

// Criterion describes one scoring attribute of a destination.
type Criterion struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// DefaultCriteria are the backpacker criteria the bundled dataset carries.
var DefaultCriteria = []Criterion{
	{Name: "Biaya Harian", Description: "Pengeluaran rata-rata per hari."},
	{Name: "Biaya Perjalanan", Description: "Ongkos perjalanan menuju destinasi."},
	{Name: "Tingkat Keamanan", Description: "Tingkat keamanan umum."},
	{Name: "Stabilitas Politik", Description: "Situasi politik negara."},
	{Name: "Kemudahan Visa", Description: "Kemudahan mendapatkan visa."},
	{Name: "Transportasi Publik", Description: "Kualitas transportasi lokal."},
	{Name: "Keberagaman Aktivitas", Description: "Banyaknya aktivitas menarik."},
}

// CriterionNames returns the names of cs in order.
func CriterionNames(cs []Criterion) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}
