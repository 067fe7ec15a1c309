package service

import (
	"errors"
	"sort"
	"strings"
)

// ── 排期 / 报名模块业务错误 ──

var (
	ErrInvalidYear          = errors.New("tahun tidak valid")
	ErrInvalidDate          = errors.New("format tanggal harus YYYY-MM-DD")
	ErrSlotAlreadyClaimed   = errors.New("jadwal pada tanggal ini sudah terisi")
	ErrRegistrationNotFound = errors.New("jadwal khutbah tidak ditemukan")
	// ErrStore 存储层故障；调用方不得将其解释为"空位"或"报名成功"
	ErrStore = errors.New("gagal mengakses data jadwal")
)

// ValidationError 字段级校验错误，在任何存储调用之前返回
type ValidationError struct {
	Fields map[string]string // json 字段名 → 提示信息
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validasi gagal: " + strings.Join(parts, "; ")
}

// IsValidationError 判断是否为字段校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
