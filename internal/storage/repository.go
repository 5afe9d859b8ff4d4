// ABOUTME: Repository interface for measurement storage.
// ABOUTME: Defines the contract for measurements, tracking rows and bulk import/export.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/measure/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrAmbiguous = errors.New("ambiguous id prefix")
)

// Repository defines the storage interface for measurements.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Measurement operations
	CreateMeasurement(ctx context.Context, m *models.Measurement) error
	UpdateMeasurement(ctx context.Context, m *models.Measurement) error
	GetMeasurement(ctx context.Context, idOrPrefix string) (*models.Measurement, error)
	DeleteMeasurement(ctx context.Context, idOrPrefix string) error
	// ListMeasurements returns newest first; an empty typeName lists every type
	// and a limit of 0 means no limit.
	ListMeasurements(ctx context.Context, typeName string, limit int) ([]*models.Measurement, error)
	// ListSince returns entries at or after since, oldest first.
	ListSince(ctx context.Context, typeName string, since time.Time) ([]*models.Measurement, error)
	// FirstMeasurement and LatestMeasurement return models.ErrNoData when the
	// type has no entries.
	FirstMeasurement(ctx context.Context, typeName string) (*models.Measurement, error)
	LatestMeasurement(ctx context.Context, typeName string) (*models.Measurement, error)
	CountMeasurements(ctx context.Context, typeName string) (int, error)
	// Exists reports whether an entry of the same type, second and value is stored.
	Exists(ctx context.Context, m *models.Measurement) (bool, error)

	// Tracking rows
	ListTypes(ctx context.Context) ([]models.TypeRow, error)
	SaveType(ctx context.Context, row models.TypeRow) (models.TypeRow, error)

	// Export/Import
	GetAllData(ctx context.Context) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) (*ImportSummary, error)

	// Lifecycle
	Close() error
}
