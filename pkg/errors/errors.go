package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateKey 唯一约束冲突：目标记录已存在
var ErrDuplicateKey = errors.New("记录已存在，违反唯一约束")

// PostgreSQL SQLSTATE
const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
)

// IsUniqueViolation 判断是否为唯一约束冲突
// 同时兼容开启 TranslateError 后 GORM 返回的 ErrDuplicatedKey
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsCheckViolation 判断是否为 CHECK 约束失败（应用层校验遗漏时由数据库兜底）
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeCheckViolation
}
