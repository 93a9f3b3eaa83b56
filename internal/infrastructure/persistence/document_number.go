package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// nextDocumentNumber generates the next {prefix}-{year}-{seq} document number
// by scanning the highest existing number for the current year. Uniqueness is
// re-checked before returning so a gap left by a concurrent insert does not
// produce a duplicate. A race that slips past the pre-check still hits the
// unique index at insert time; the services retry creation with a fresh
// number when that happens.
func nextDocumentNumber(ctx context.Context, db *gorm.DB, table, column, prefix string) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, time.Now().Year())

	var numbers []string
	if err := db.WithContext(ctx).
		Table(table).
		Where(column+" LIKE ?", yearPrefix+"%").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &numbers).Error; err != nil {
		return "", err
	}

	var next int64 = 1
	if len(numbers) > 0 {
		parts := strings.Split(numbers[0], "-")
		if len(parts) == 3 {
			var num int64
			if _, err := fmt.Sscanf(parts[2], "%d", &num); err == nil {
				next = num + 1
			}
		}
	}

	for attempt := 0; attempt < 100; attempt++ {
		candidate := fmt.Sprintf("%s%04d", yearPrefix, next)
		var count int64
		if err := db.WithContext(ctx).
			Table(table).
			Where(column+" = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		next++
	}

	return "", fmt.Errorf("could not generate a unique %s document number", prefix)
}
