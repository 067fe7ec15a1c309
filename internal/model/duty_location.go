package model

// DutyLocations 讲道人所属单位（封闭集合，区分大小写）
// 与迁移文件 ck_khatib_schedules_tempat_tugas 约束保持一致
var DutyLocations = []string{
	"Al-Jami'ah",
	"Fakultas Adab dan Humaniora",
	"Fakultas Dakwah dan Komunikasi",
	"Fakultas Ekonomi dan Bisnis Islam",
	"Fakultas Ilmu Sosial dan Ilmu Politik",
	"Fakultas Psikologi",
	"Fakultas Sains dan Teknologi",
	"Fakultas Syariah dan Hukum",
	"Fakultas Tarbiyah dan Keguruan",
	"Fakultas Ushuluddin",
	"Pascasarjana",
}

// IsDutyLocation 判断是否为合法单位
func IsDutyLocation(s string) bool {
	for _, loc := range DutyLocations {
		if loc == s {
			return true
		}
	}
	return false
}
