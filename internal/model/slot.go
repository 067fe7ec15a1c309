package model

import "time"

// Slot 一个可报名的周五档期（按年份生成，不落库）
type Slot struct {
	Date               time.Time `json:"-"`
	ISODate            string    `json:"iso_date"`
	DisplayLabel       string    `json:"display_label"`
	MonthName          string    `json:"month_name"`
	MonthIndex         int       `json:"month_index"` // 0-11
	WeekOfMonthOrdinal int       `json:"week_of_month"`
}

// MergedSlot 档期 + 可选的报名记录，每次读取时重新计算
type MergedSlot struct {
	Slot
	Registration *KhatibSchedule `json:"registration,omitempty"`
}

// IsFilled 是否已有人报名
func (m *MergedSlot) IsFilled() bool { return m.Registration != nil }

// MonthGroup 按月分组后的档期
type MonthGroup struct {
	MonthIndex int
	MonthName  string
	Slots      []MergedSlot
}
