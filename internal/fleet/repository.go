package fleet

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("fleet record not found")

// Vehicle is one unit of the campus motor pool.
type Vehicle struct {
	ID          string `json:"id"`
	PlateNumber string `json:"plateNumber"`
	Model       string `json:"model"`
	Capacity    int    `json:"capacity"`
	Status      string `json:"status"` // available | maintenance | retired
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// Driver is an assignable motor pool driver.
type Driver struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	LicenseNumber string `json:"licenseNumber,omitempty"`
	Status        string `json:"status"` // active | on_leave | inactive
	CreatedAt     string `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	const q = `
SELECT id, plate_number, COALESCE(model,''), COALESCE(capacity,0), status, created_at::text, updated_at::text
FROM vehicles
ORDER BY plate_number
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.PlateNumber, &v.Model, &v.Capacity, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repository) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	const q = `
SELECT id, plate_number, COALESCE(model,''), COALESCE(capacity,0), status, created_at::text, updated_at::text
FROM vehicles
WHERE id = $1
`
	v := &Vehicle{}
	err := r.db.QueryRow(ctx, q, id).Scan(&v.ID, &v.PlateNumber, &v.Model, &v.Capacity, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Repository) ListDrivers(ctx context.Context) ([]Driver, error) {
	const q = `
SELECT id, name, COALESCE(phone,''), COALESCE(license_number,''), status, created_at::text
FROM drivers
ORDER BY name
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.LicenseNumber, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// VehicleAvailable checks the unit is in service and not assigned to an
// overlapping in-flight or approved trip.
func (r *Repository) VehicleAvailable(ctx context.Context, vehicleID string, start, end time.Time) (bool, error) {
	const q = `
SELECT v.status = 'available'
   AND NOT EXISTS (
     SELECT 1 FROM requests t
     WHERE t.assigned_vehicle_id = v.id
       AND t.stage NOT IN ('rejected','cancelled','draft')
       AND t.travel_start < $3 AND t.travel_end > $2
   )
FROM vehicles v
WHERE v.id = $1
`
	var ok bool
	err := r.db.QueryRow(ctx, q, vehicleID, start, end).Scan(&ok)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
