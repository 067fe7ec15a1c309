package dto

// ── 报名模块 DTO ──

// ClaimRequest 报名请求（认领某个周五）
// 校验规则由 service 层统一执行，gin 仅负责 JSON 解码
type ClaimRequest struct {
	NamaLengkap string `json:"nama_lengkap" validate:"required,min=3,max=100"`
	NIP         string `json:"nip"          validate:"required,min=8,max=30"`
	NoHP        string `json:"no_hp"        validate:"required,min=10,max=15"`
	TempatTugas string `json:"tempat_tugas" validate:"required,duty_location"`
	Saran       string `json:"saran"        validate:"omitempty,max=500"`
}

// RegistrationResponse 报名详情（管理端，含联系方式）
type RegistrationResponse struct {
	ID           string  `json:"id"`
	ScheduleDate string  `json:"schedule_date"`
	DisplayLabel string  `json:"display_label"`
	NamaLengkap  string  `json:"nama_lengkap"`
	NIP          string  `json:"nip"`
	NoHP         string  `json:"no_hp"`
	TempatTugas  string  `json:"tempat_tugas"`
	Saran        *string `json:"saran,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}
