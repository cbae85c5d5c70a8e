// Package repository holds the sqlite implementations of the persistence
// ports.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/omcsuite/daily-delivery/internal/application/port"
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/infrastructure/persistence/sqlite"
)

const deliveryColumns = `
	id, tenant_id, delivery_number, delivery_date,
	supplier_id, depot_id, customer_id, customer_name,
	product_type, product_description, quantity_litres, unit_price, total_value, currency,
	psa_number, waybill_number, invoice_number,
	vehicle_registration_number, transporter_name,
	driver_id, driver_name, driver_license_number, driver_phone,
	loading_terminal, discharge_terminal, loading_start_time, loading_end_time,
	temperature_at_loading, density_at_loading,
	npa_permit_number, customs_entry_number, customs_duty_paid,
	petroleum_tax_amount, energy_fund_levy, road_fund_levy, price_stabilization_levy, uppf_levy,
	special_handling_requirements,
	status, approval_workflow_id, created_at, updated_at`

// DeliveryRepository implements port.DeliveryRepository
type DeliveryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *sqlite.DB, logger *zap.Logger) port.DeliveryRepository {
	return &DeliveryRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new delivery record
func (r *DeliveryRepository) Create(ctx context.Context, d *entity.DailyDelivery) error {
	query := `
		INSERT INTO daily_deliveries (` + deliveryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		d.ID, d.TenantID, d.DeliveryNumber, d.DeliveryDate,
		d.SupplierID, d.DepotID, d.CustomerID, d.CustomerName,
		d.ProductType, d.ProductDescription, d.QuantityLitres, d.UnitPrice, d.TotalValue, d.Currency,
		d.PSANumber, d.WaybillNumber, d.InvoiceNumber,
		d.VehicleRegistrationNumber, d.TransporterName,
		d.DriverID, d.DriverName, d.DriverLicenseNumber, d.DriverPhone,
		d.LoadingTerminal, d.DischargeTerminal, d.LoadingStartTime, d.LoadingEndTime,
		d.TemperatureAtLoading, d.DensityAtLoading,
		d.NPAPermitNumber, d.CustomsEntryNumber, d.CustomsDutyPaid,
		d.PetroleumTaxAmount, d.EnergyFundLevy, d.RoadFundLevy, d.PriceStabilizationLevy, d.UPPFLevy,
		d.SpecialHandlingRequirements,
		d.Status, d.ApprovalWorkflowID, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create delivery", zap.String("id", d.ID), zap.Error(err))
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	return nil
}

// GetByID retrieves a delivery by ID. Returns nil when not found.
func (r *DeliveryRepository) GetByID(ctx context.Context, id string) (*entity.DailyDelivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM daily_deliveries WHERE id = ?`

	d, err := r.scanDelivery(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get delivery", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}
	return d, nil
}

// GetByIDs retrieves multiple deliveries by ID. Missing ids are simply
// absent from the result.
func (r *DeliveryRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.DailyDelivery, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT ` + deliveryColumns + ` FROM daily_deliveries WHERE id IN (` + placeholders + `)`

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to get deliveries", zap.Int("count", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("failed to get deliveries: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// UpdateStatus updates the delivery status
func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE daily_deliveries SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update delivery status", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delivery %s not found", id)
	}
	return nil
}

// SetApprovalWorkflow links a delivery to its workflow instance
func (r *DeliveryRepository) SetApprovalWorkflow(ctx context.Context, id, workflowInstanceID string) error {
	query := `UPDATE daily_deliveries SET approval_workflow_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, workflowInstanceID, id)
	if err != nil {
		r.logger.Error("Failed to link workflow", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to link workflow: %w", err)
	}
	return nil
}

// List retrieves deliveries with pagination, newest first
func (r *DeliveryRepository) List(ctx context.Context, limit, offset int) ([]*entity.DailyDelivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM daily_deliveries ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list deliveries", zap.Error(err))
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *DeliveryRepository) scanDelivery(row rowScanner) (*entity.DailyDelivery, error) {
	var d entity.DailyDelivery
	var productDescription, invoiceNumber, transporterName sql.NullString
	var driverID, driverName, driverLicense, driverPhone sql.NullString
	var loadingTerminal, dischargeTerminal sql.NullString
	var loadingStart, loadingEnd sql.NullTime
	var temperature, density sql.NullFloat64
	var npaPermit, customsEntry, specialHandling, workflowID sql.NullString

	err := row.Scan(
		&d.ID, &d.TenantID, &d.DeliveryNumber, &d.DeliveryDate,
		&d.SupplierID, &d.DepotID, &d.CustomerID, &d.CustomerName,
		&d.ProductType, &productDescription, &d.QuantityLitres, &d.UnitPrice, &d.TotalValue, &d.Currency,
		&d.PSANumber, &d.WaybillNumber, &invoiceNumber,
		&d.VehicleRegistrationNumber, &transporterName,
		&driverID, &driverName, &driverLicense, &driverPhone,
		&loadingTerminal, &dischargeTerminal, &loadingStart, &loadingEnd,
		&temperature, &density,
		&npaPermit, &customsEntry, &d.CustomsDutyPaid,
		&d.PetroleumTaxAmount, &d.EnergyFundLevy, &d.RoadFundLevy, &d.PriceStabilizationLevy, &d.UPPFLevy,
		&specialHandling,
		&d.Status, &workflowID, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.ProductDescription = productDescription.String
	d.InvoiceNumber = invoiceNumber.String
	d.TransporterName = transporterName.String
	d.DriverID = driverID.String
	d.DriverName = driverName.String
	d.DriverLicenseNumber = driverLicense.String
	d.DriverPhone = driverPhone.String
	d.LoadingTerminal = loadingTerminal.String
	d.DischargeTerminal = dischargeTerminal.String
	d.NPAPermitNumber = npaPermit.String
	d.CustomsEntryNumber = customsEntry.String
	d.SpecialHandlingRequirements = specialHandling.String
	d.ApprovalWorkflowID = workflowID.String

	if loadingStart.Valid {
		d.LoadingStartTime = &loadingStart.Time
	}
	if loadingEnd.Valid {
		d.LoadingEndTime = &loadingEnd.Time
	}
	if temperature.Valid {
		d.TemperatureAtLoading = &temperature.Float64
	}
	if density.Valid {
		d.DensityAtLoading = &density.Float64
	}

	return &d, nil
}

func (r *DeliveryRepository) collect(rows *sql.Rows) ([]*entity.DailyDelivery, error) {
	var deliveries []*entity.DailyDelivery
	for rows.Next() {
		d, err := r.scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
