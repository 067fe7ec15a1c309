package service

import (
	"time"

	"github.com/goodsign/monday"

	"khatib-jumat/internal/model"
)

// ═══════════════════════════════════════════════════════════
// 周五档期日历：生成 → 合并报名 → 按月分组
// ═══════════════════════════════════════════════════════════
//
// 三个函数均为纯函数，不做 I/O，不依赖当前系统时间。
// 日期统一使用 UTC 零点表示，ISODate 是与报名记录匹配的唯一键。

const (
	displayLayout = "Monday, 2 January 2006"
	monthLayout   = "January"
	slotLocale    = monday.LocaleIdID
)

// GenerateFridays 生成指定年份的全部周五档期（升序，52 或 53 个）
func GenerateFridays(year int) []model.Slot {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	// 跳到当年第一个周五后按 7 天步进，与逐日枚举再过滤等价
	offset := (int(time.Friday) - int(start.Weekday()) + 7) % 7
	first := start.AddDate(0, 0, offset)

	slots := make([]model.Slot, 0, 53)
	for d := first; d.Before(end); d = d.AddDate(0, 0, 7) {
		slots = append(slots, newSlot(d, weekOfMonth(slots, d)))
	}
	return slots
}

// weekOfMonth 统计已生成档期中同月且更早的周五数量 + 1
func weekOfMonth(prior []model.Slot, d time.Time) int {
	n := 0
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].Date.Month() != d.Month() {
			break
		}
		if prior[i].Date.Before(d) {
			n++
		}
	}
	return n + 1
}

func newSlot(d time.Time, ordinal int) model.Slot {
	return model.Slot{
		Date:               d,
		ISODate:            d.Format(model.ISODateLayout),
		DisplayLabel:       FormatDisplayDate(d),
		MonthName:          monday.Format(d, monthLayout, slotLocale),
		MonthIndex:         int(d.Month()) - 1,
		WeekOfMonthOrdinal: ordinal,
	}
}

// FormatDisplayDate 印尼语长日期，例如 "Jumat, 2 Januari 2026"
func FormatDisplayDate(d time.Time) string {
	return monday.Format(d, displayLayout, slotLocale)
}

// MergeRegistrations 将报名记录按 ISODate 挂到对应档期上
// 输出与输入档期一一对应、顺序不变；无匹配记录的档期为空位
func MergeRegistrations(slots []model.Slot, regs []model.KhatibSchedule) []model.MergedSlot {
	byDate := make(map[string]*model.KhatibSchedule, len(regs))
	for i := range regs {
		key := regs[i].DateKey()
		if _, dup := byDate[key]; !dup {
			byDate[key] = &regs[i]
		}
	}

	merged := make([]model.MergedSlot, len(slots))
	for i, s := range slots {
		merged[i] = model.MergedSlot{Slot: s, Registration: byDate[s.ISODate]}
	}
	return merged
}

// GroupByMonth 按月份分组，月份按时间顺序排列，空月份省略
func GroupByMonth(merged []model.MergedSlot) []model.MonthGroup {
	var buckets [12][]model.MergedSlot
	for _, m := range merged {
		buckets[m.MonthIndex] = append(buckets[m.MonthIndex], m)
	}

	groups := make([]model.MonthGroup, 0, 12)
	for idx, slots := range buckets {
		if len(slots) == 0 {
			continue
		}
		groups = append(groups, model.MonthGroup{
			MonthIndex: idx,
			MonthName:  slots[0].MonthName,
			Slots:      slots,
		})
	}
	return groups
}

// ParseISODate 解析 YYYY-MM-DD；返回 UTC 零点
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(model.ISODateLayout, s, time.UTC)
}

// IsFriday 判断日期是否为周五
func IsFriday(d time.Time) bool {
	return d.Weekday() == time.Friday
}
