package labels

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ClassCount is the number of points of a class and their share of all points, in percent
type ClassCount struct {
	Name     string          `json:"name"`
	Points   int             `json:"points"`
	Coverage decimal.Decimal `json:"coverage"`
}

// Summary describes the labels of a scan
type Summary struct {
	Points    int                   `json:"points"`
	Invalid   int                   `json:"invalid"`
	Instances int                   `json:"instances"`
	Classes   map[string]ClassCount `json:"classes"`
}

// Summarize counts points per class. Only classes with at least one point are reported.
func Summarize(semantic, instance []int32) Summary {
	summary := Summary{
		Points:    len(semantic),
		Instances: len(DistinctInstances(instance)),
		Classes:   make(map[string]ClassCount),
	}

	var counts [NumClasses]int
	for _, id := range semantic {
		if !ValidSemantic(id) {
			summary.Invalid++
			continue
		}
		counts[id]++
	}

	for id, count := range counts {
		if count == 0 {
			continue
		}
		summary.Classes[classNames[id]] = ClassCount{
			Name:     classNames[id],
			Points:   count,
			Coverage: percentage(count, summary.Points),
		}
	}

	return summary
}

func percentage(count, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(2)
}
