package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"khatib-jumat/internal/dto"
	"khatib-jumat/internal/model"
)

// 字段提示信息（印尼语，与前端表单保持一致）
var fieldMessages = map[string]map[string]string{
	"nama_lengkap": {
		"required": "Nama lengkap wajib diisi",
		"min":      "Nama lengkap minimal 3 karakter",
		"max":      "Nama lengkap maksimal 100 karakter",
	},
	"nip": {
		"required": "NIP wajib diisi",
		"min":      "NIP minimal 8 digit",
		"max":      "NIP maksimal 30 karakter",
	},
	"no_hp": {
		"required": "Nomor HP wajib diisi",
		"min":      "Nomor HP minimal 10 digit",
		"max":      "Nomor HP maksimal 15 karakter",
	},
	"tempat_tugas": {
		"required":      "Pilih tempat tugas",
		"duty_location": "Tempat tugas tidak dikenal",
	},
	"saran": {
		"max": "Saran maksimal 500 karakter",
	},
}

const (
	msgDateFormat = "Format tanggal harus YYYY-MM-DD"
	msgNotFriday  = "Tanggal yang dipilih bukan hari Jumat"
	msgInvalid    = "Data tidak valid"
)

// newValidator 构造使用 validate 标签与 json 字段名的校验器
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// RegisterValidation 仅在 tag 为空或函数为 nil 时返回错误
	_ = v.RegisterValidation("duty_location", func(fl validator.FieldLevel) bool {
		return model.IsDutyLocation(fl.Field().String())
	})
	return v
}

// normalizeClaim 去除首尾空白，避免纯空格通过长度校验
func normalizeClaim(req *dto.ClaimRequest) {
	req.NamaLengkap = strings.TrimSpace(req.NamaLengkap)
	req.NIP = strings.TrimSpace(req.NIP)
	req.NoHP = strings.TrimSpace(req.NoHP)
	req.Saran = strings.TrimSpace(req.Saran)
}

// validateClaim 校验报名请求，返回 *ValidationError 或 nil
func validateClaim(v *validator.Validate, req *dto.ClaimRequest) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"form": msgInvalid}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		msg := fieldMessages[fe.Field()][fe.Tag()]
		if msg == "" {
			msg = msgInvalid
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}
