package services

import "github.com/pilah-labs/pilah/internal/core/domain"

// ReferenceWasteItems returns the fixed seed list, five items per category.
func ReferenceWasteItems() []domain.WasteItem {
	return []domain.WasteItem{
		{Name: "Sisa makanan", Category: domain.CategoryOrganic,
			Description: "Nasi, sayur dan lauk sisa. Dapat diolah menjadi kompos atau pakan maggot."},
		{Name: "Kulit buah", Category: domain.CategoryOrganic,
			Description: "Kulit pisang, jeruk dan mangga. Mudah terurai dan cocok untuk kompos."},
		{Name: "Daun kering", Category: domain.CategoryOrganic,
			Description: "Daun gugur dan ranting kecil dari halaman. Bisa dijadikan kompos atau mulsa."},
		{Name: "Ampas kopi dan teh", Category: domain.CategoryOrganic,
			Description: "Ampas seduhan kopi dan daun teh. Menambah unsur hara pada kompos."},
		{Name: "Cangkang telur", Category: domain.CategoryOrganic,
			Description: "Cangkang telur yang dihancurkan menjadi sumber kalsium untuk tanah."},
		{Name: "Botol plastik", Category: domain.CategoryNonOrganic,
			Description: "Botol minuman PET. Bilas, lepaskan tutup dan label, lalu setorkan ke bank sampah."},
		{Name: "Kaleng minuman", Category: domain.CategoryNonOrganic,
			Description: "Kaleng aluminium. Dapat didaur ulang berkali-kali tanpa menurunkan mutu."},
		{Name: "Kardus", Category: domain.CategoryNonOrganic,
			Description: "Kemasan karton dan kertas tebal. Simpan dalam keadaan kering agar bisa didaur ulang."},
		{Name: "Kantong plastik", Category: domain.CategoryNonOrganic,
			Description: "Kantong belanja plastik. Gunakan ulang atau kumpulkan untuk didaur ulang."},
		{Name: "Botol kaca", Category: domain.CategoryNonOrganic,
			Description: "Botol dan toples kaca. Pisahkan dari sampah lain agar tidak pecah dan melukai petugas."},
		{Name: "Baterai bekas", Category: domain.CategoryB3,
			Description: "Mengandung logam berat seperti merkuri dan kadmium. Serahkan ke titik pengumpulan B3."},
		{Name: "Lampu neon", Category: domain.CategoryB3,
			Description: "Lampu TL dan CFL mengandung uap merkuri. Jangan dipecahkan dan jangan dibuang ke tempat sampah biasa."},
		{Name: "Kemasan pestisida", Category: domain.CategoryB3,
			Description: "Wadah bekas racun serangga dan herbisida. Tutup rapat dan serahkan ke pengelola limbah B3."},
		{Name: "Obat kedaluwarsa", Category: domain.CategoryB3,
			Description: "Obat dan salep yang sudah kedaluwarsa. Kembalikan ke apotek atau fasilitas kesehatan."},
		{Name: "Limbah elektronik", Category: domain.CategoryB3,
			Description: "Ponsel, charger dan papan sirkuit rusak. Mengandung timbal dan harus didaur ulang secara khusus."},
	}
}

// categoryDefinitions are indexed after the seed rows.
var categoryDefinitions = []struct {
	category domain.Category
	text     string
}{
	{domain.CategoryOrganic,
		"Sampah organik adalah sampah yang berasal dari makhluk hidup dan mudah terurai secara alami, " +
			"seperti sisa makanan, daun dan kulit buah. Sampah organik dapat diolah menjadi kompos."},
	{domain.CategoryNonOrganic,
		"Sampah non-organik adalah sampah yang sulit terurai secara alami, seperti plastik, kaleng, " +
			"kaca dan kertas. Sampah non-organik sebaiknya dipilah dan didaur ulang."},
	{domain.CategoryB3,
		"Sampah B3 (Bahan Berbahaya dan Beracun) adalah sampah yang mengandung zat berbahaya bagi " +
			"kesehatan dan lingkungan, seperti baterai, lampu neon dan bahan kimia. Sampah B3 harus " +
			"dikelola secara khusus dan tidak boleh dicampur dengan sampah lain."},
}
