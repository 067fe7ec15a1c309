package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"khatib-jumat/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("gagal membuat file Excel")

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出某年份全部周五，一行一个档期；未报名的档期填 "-"
//   - 导出直接读取数据库，不经过缓存
//   - 以 bytes.Buffer 返回，由 Handler 层设置下载响应头
type ExportService interface {
	ExportRegistrations(ctx context.Context, year int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var exportHeaders = []string{
	"No", "Tanggal", "Bulan", "Jumat ke-", "Nama dan Gelar Lengkap",
	"NIP", "No. HP / WhatsApp", "Tempat Tugas", "Saran",
}

var exportColWidths = []float64{5, 28, 12, 10, 36, 22, 18, 38, 40}

// ═══════════════════════════════════════════════════════════
// ExportRegistrations 导出年度讲道排期为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportRegistrations(ctx context.Context, year int) (*bytes.Buffer, string, error) {
	if year < 1900 || year > 9999 {
		return nil, "", ErrInvalidYear
	}

	regs, err := s.repo.Registration.ListByYear(ctx, year)
	if err != nil {
		s.logger.Error("查询报名记录失败", zap.Int("year", year), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %w", ErrStore, err)
	}
	merged := MergeRegistrations(GenerateFridays(year), regs)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("Jadwal %d", year)
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, w := range exportColWidths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F6F50"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Jadwal Khatib Jum'at %d", year))
	f.MergeCell(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(exportHeaders)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i := range merged {
		m := &merged[i]
		values := []interface{}{i + 1, m.DisplayLabel, m.MonthName, m.WeekOfMonthOrdinal, "-", "", "", "", ""}
		if m.IsFilled() {
			r := m.Registration
			saran := ""
			if r.Saran != nil {
				saran = *r.Saran
			}
			values[4], values[5], values[6], values[7], values[8] = r.NamaLengkap, r.NIP, r.NoHP, r.TempatTugas, saran
		}
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("jadwal_khatib_%d.xlsx", year)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
