package entity

import "time"

// DailyDelivery represents a single petroleum product delivery record
type DailyDelivery struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	DeliveryNumber string    `json:"delivery_number"`
	DeliveryDate   time.Time `json:"delivery_date"`

	SupplierID   string `json:"supplier_id"`
	DepotID      string `json:"depot_id"`
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`

	ProductType        string  `json:"product_type"`
	ProductDescription string  `json:"product_description,omitempty"`
	QuantityLitres     float64 `json:"quantity_litres"`
	UnitPrice          float64 `json:"unit_price"`
	TotalValue         float64 `json:"total_value"`
	Currency           string  `json:"currency"`

	PSANumber     string `json:"psa_number"`
	WaybillNumber string `json:"waybill_number"`
	InvoiceNumber string `json:"invoice_number,omitempty"`

	VehicleRegistrationNumber string `json:"vehicle_registration_number"`
	TransporterName           string `json:"transporter_name,omitempty"`
	DriverID                  string `json:"driver_id,omitempty"`
	DriverName                string `json:"driver_name,omitempty"`
	DriverLicenseNumber       string `json:"driver_license_number,omitempty"`
	DriverPhone               string `json:"driver_phone,omitempty"`

	LoadingTerminal   string     `json:"loading_terminal,omitempty"`
	DischargeTerminal string     `json:"discharge_terminal,omitempty"`
	LoadingStartTime  *time.Time `json:"loading_start_time,omitempty"`
	LoadingEndTime    *time.Time `json:"loading_end_time,omitempty"`

	TemperatureAtLoading *float64 `json:"temperature_at_loading,omitempty"`
	DensityAtLoading     *float64 `json:"density_at_loading,omitempty"`

	NPAPermitNumber    string  `json:"npa_permit_number,omitempty"`
	CustomsEntryNumber string  `json:"customs_entry_number,omitempty"`
	CustomsDutyPaid    float64 `json:"customs_duty_paid"`

	PetroleumTaxAmount     float64 `json:"petroleum_tax_amount"`
	EnergyFundLevy         float64 `json:"energy_fund_levy"`
	RoadFundLevy           float64 `json:"road_fund_levy"`
	PriceStabilizationLevy float64 `json:"price_stabilization_levy"`
	UPPFLevy               float64 `json:"uppf_levy"`

	SpecialHandlingRequirements string `json:"special_handling_requirements,omitempty"`

	Status             string    `json:"status"`
	ApprovalWorkflowID string    `json:"approval_workflow_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TotalTaxes returns the sum of all statutory tax and levy components
func (d *DailyDelivery) TotalTaxes() float64 {
	return d.PetroleumTaxAmount +
		d.EnergyFundLevy +
		d.RoadFundLevy +
		d.PriceStabilizationLevy +
		d.UPPFLevy
}

// UPPFEligible reports whether the delivery qualifies for a UPPF claim
func (d *DailyDelivery) UPPFEligible() bool {
	return d.UPPFLevy > 0
}

// AsRecord flattens the delivery into a field map keyed by the names used in
// the validation rule tables. Optional fields that were never supplied are
// left out so required/empty checks see them as missing.
func (d *DailyDelivery) AsRecord() map[string]interface{} {
	record := map[string]interface{}{
		"deliveryNumber":            d.DeliveryNumber,
		"supplierId":                d.SupplierID,
		"customerId":                d.CustomerID,
		"customerName":              d.CustomerName,
		"productType":               d.ProductType,
		"quantityLitres":            d.QuantityLitres,
		"unitPrice":                 d.UnitPrice,
		"totalValue":                d.TotalValue,
		"currency":                  d.Currency,
		"psaNumber":                 d.PSANumber,
		"waybillNumber":             d.WaybillNumber,
		"vehicleRegistrationNumber": d.VehicleRegistrationNumber,
		"customsDutyPaid":           d.CustomsDutyPaid,
		"totalTaxes":                d.TotalTaxes(),
	}

	if !d.DeliveryDate.IsZero() {
		record["deliveryDate"] = d.DeliveryDate
	}
	if d.NPAPermitNumber != "" {
		record["npaPermitNumber"] = d.NPAPermitNumber
	}
	if d.CustomsEntryNumber != "" {
		record["customsEntryNumber"] = d.CustomsEntryNumber
	}
	if d.DriverID != "" {
		record["driverId"] = d.DriverID
	}
	if d.DriverName != "" {
		record["driverName"] = d.DriverName
	}
	if d.DriverLicenseNumber != "" {
		record["driverLicenseNumber"] = d.DriverLicenseNumber
	}
	if d.SpecialHandlingRequirements != "" {
		record["specialHandlingRequirements"] = d.SpecialHandlingRequirements
	}
	if d.TemperatureAtLoading != nil {
		record["temperatureAtLoading"] = *d.TemperatureAtLoading
	}
	if d.DensityAtLoading != nil {
		record["densityAtLoading"] = *d.DensityAtLoading
	}
	if d.LoadingStartTime != nil {
		record["loadingStartTime"] = *d.LoadingStartTime
	}
	if d.LoadingEndTime != nil {
		record["loadingEndTime"] = *d.LoadingEndTime
	}

	return record
}
