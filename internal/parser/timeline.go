package parser

import (
	"math"
	"sort"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"
)

// monthInterval 闭区间 [start, end]，单位为月序号
type monthInterval struct {
	start int
	end   int
}

func (iv monthInterval) months() int {
	return iv.end - iv.start + 1
}

// ComputeTotalYears 由 Role 序列确定性推导总经验年限
//
// 规则按顺序应用：
//  1. 非实习经历贡献其自身月数（闭区间，Jan 2020–Dec 2020 计12个月）
//  2. 实习折算：不足3个月计0.25年；3–6个月计0.5年；超过6个月按实际时长
//  3. 并行经历只计时间区间的并集，绝不重复累计
//  4. 零年限是合法的中性结果（fresher），不做下限钳制
//
// 日期未知的经历贡献0个月。结果与输入顺序无关。
func ComputeTotalYears(roles []types.Role, now types.YearMonth) float64 {
	var paid []monthInterval
	var internships []monthInterval

	for _, role := range roles {
		iv, ok := roleInterval(role, now)
		if !ok {
			continue
		}
		if role.Internship {
			internships = append(internships, iv)
		} else {
			paid = append(paid, iv)
		}
	}

	merged := mergeIntervals(paid)

	totalMonths := 0
	for _, iv := range merged {
		totalMonths += iv.months()
	}
	years := float64(totalMonths) / 12.0

	// 实习与正式工作重叠的月份已计入并集，折算前先剔除
	for _, iv := range internships {
		actual := monthsOutside(iv, merged)
		years += internshipYears(actual)
	}

	return roundYears(years)
}

// roleInterval 把一段经历转成月序号闭区间
func roleInterval(role types.Role, now types.YearMonth) (monthInterval, bool) {
	if !role.Start.Known() {
		return monthInterval{}, false
	}
	end := role.End
	if role.Present {
		end = now
	}
	if !end.Known() || end.Before(role.Start) {
		return monthInterval{}, false
	}
	return monthInterval{start: role.Start.Index(), end: end.Index()}, true
}

// mergeIntervals 合并重叠/相邻的闭区间
func mergeIntervals(intervals []monthInterval) []monthInterval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]monthInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})

	merged := []monthInterval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.start <= last.end+1 {
			if iv.end > last.end {
				last.end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// monthsOutside 计算区间 iv 中不被 merged（已排序且互不重叠）覆盖的月数
func monthsOutside(iv monthInterval, merged []monthInterval) int {
	covered := 0
	for _, m := range merged {
		lo := maxInt(iv.start, m.start)
		hi := minInt(iv.end, m.end)
		if lo <= hi {
			covered += hi - lo + 1
		}
	}
	return iv.months() - covered
}

// internshipYears 实习折算表
func internshipYears(months int) float64 {
	switch {
	case months <= 0:
		return 0
	case months < 3:
		return 0.25
	case months <= 6:
		return 0.5
	default:
		return float64(months) / 12.0
	}
}

// roundYears 统一舍入到三位小数，避免浮点尾差影响比较
func roundYears(y float64) float64 {
	return math.Round(y*1000) / 1000
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
