package model

import "time"

// ISODateLayout 报名记录与周五档期的匹配键格式
const ISODateLayout = "2006-01-02"

// KhatibSchedule 周五讲道报名表，对应 khatib_schedules
// schedule_date 唯一：每个周五至多一条报名
type KhatibSchedule struct {
	ID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"id"`
	ScheduleDate time.Time `gorm:"type:date;not null;uniqueIndex:uq_khatib_schedules_date" json:"schedule_date"`
	NamaLengkap  string    `gorm:"type:varchar(100);not null"                              json:"nama_lengkap"`
	NIP          string    `gorm:"column:nip;type:varchar(30);not null"                    json:"nip"`
	NoHP         string    `gorm:"column:no_hp;type:varchar(15);not null"                  json:"no_hp"`
	TempatTugas  string    `gorm:"type:varchar(100);not null"                              json:"tempat_tugas"`
	Saran        *string   `gorm:"type:varchar(500)"                                       json:"saran,omitempty"`
	BaseModel
}

// TableName 指定表名
func (KhatibSchedule) TableName() string { return "khatib_schedules" }

// DateKey 返回 YYYY-MM-DD 形式的日期键
func (k *KhatibSchedule) DateKey() string {
	return k.ScheduleDate.Format(ISODateLayout)
}
