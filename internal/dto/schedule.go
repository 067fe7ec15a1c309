package dto

// ── 排期模块 DTO ──

// 档期状态
const (
	SlotStatusOpen   = "open"
	SlotStatusFilled = "filled"
)

// ScheduleQuery 排期查询参数；year 为空时使用配置的默认年份
type ScheduleQuery struct {
	Year int `form:"year" binding:"omitempty,min=1900,max=9999"`
}

// KhatibBrief 公开展示的讲道人信息（不含 NIP / 电话）
type KhatibBrief struct {
	NamaLengkap string `json:"nama_lengkap"`
	TempatTugas string `json:"tempat_tugas"`
}

// SlotResponse 单个周五档期
type SlotResponse struct {
	ISODate      string       `json:"iso_date"`
	DisplayLabel string       `json:"display_label"`
	MonthName    string       `json:"month_name"`
	MonthIndex   int          `json:"month_index"`
	WeekOfMonth  int          `json:"week_of_month"`
	Status       string       `json:"status"` // open | filled
	Khatib       *KhatibBrief `json:"khatib,omitempty"`
}

// MonthGroupResponse 按月分组
type MonthGroupResponse struct {
	MonthIndex int            `json:"month_index"`
	MonthName  string         `json:"month_name"`
	Filled     int            `json:"filled"`
	Slots      []SlotResponse `json:"slots"`
}

// ScheduleResponse 某年份完整排期
type ScheduleResponse struct {
	Year   int                  `json:"year"`
	Total  int                  `json:"total"`
	Filled int                  `json:"filled"`
	Open   int                  `json:"open"`
	Months []MonthGroupResponse `json:"months"`
}
