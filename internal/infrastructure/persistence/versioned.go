package persistence

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// updateWithVersion updates a versioned row only while its stored version
// still equals the version the caller loaded, and bumps it by one.
// Zero affected rows means another writer got there first.
func updateWithVersion(db *gorm.DB, model any, entity string, tenantID, id uuid.UUID, version int, fields map[string]any) error {
	fields["version"] = version + 1
	result := db.Model(model).
		Where("tenant_id = ? AND id = ? AND version = ?", tenantID, id, version).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrentModification,
			fmt.Sprintf("The %s has been modified by another user", entity))
	}
	return nil
}
