package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddIndexes adds the lookup indexes the list and dashboard queries lean on.
// Postgres only; AutoMigrate covers the unique indexes declared on the models.
func AddIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"callings", "idx_callings_unit_id", "unit_id"},
		{"callings", "idx_callings_organization_id", "organization_id"},
		{"callings", "idx_callings_position_id", "position_id"},
		{"callings", "idx_callings_status", "status"},
		{"callings", "idx_callings_date_called", "date_called"},
		{"callings", "idx_callings_date_released", "date_released"},

		{"calling_histories", "idx_calling_histories_calling_changed", "calling_id, changed_at"},

		{"organizations", "idx_organizations_unit_id", "unit_id"},
		{"units", "idx_units_parent_unit_id", "parent_unit_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Scan(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logrus.WithFields(logrus.Fields{
			"index": idx.name,
			"table": idx.table,
		}).Info("Created index")
	}

	return nil
}
