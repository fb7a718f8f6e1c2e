package enquiry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/freightdesk/backoffice/internal/config"
	"github.com/freightdesk/backoffice/internal/domain/models"
)

// Client exposes the enquiry-side operations of the freight ERP: the
// ordered service list of an enquiry and, in edit mode, previously
// persisted quotation records.
type Client interface {
	ListServices(ctx context.Context, enquiryID string) ([]models.EnquiryService, error)
	GetQuotation(ctx context.Context, quotationID string, serviceID int) (*models.QuotationRecord, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an enquiry API client using the provided configuration values.
func NewClient(cfg config.UpstreamConfig) *APIClient {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// apiError represents an ERP error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// serviceDTO mirrors the loosely-typed upstream service shape. Cargo fields
// are flat and optional; they are resolved into the typed CargoDetail union
// here, at the boundary, and nowhere else.
type serviceDTO struct {
	ID          int     `json:"id"`
	ServiceType string  `json:"service_type"`
	Trade       string  `json:"trade"`
	POL         string  `json:"pol"`
	POD         string  `json:"pod"`
	Pieces      int     `json:"pieces"`
	GrossWtKg   float64 `json:"gross_weight_kg"`
	ChargeWt    float64 `json:"chargeable_weight"`
	CtrType     string  `json:"container_type"`
	Containers  int     `json:"containers"`
	CargoWtMt   float64 `json:"cargo_weight_mt"`
	Packages    int     `json:"packages"`
	VolumeCbm   float64 `json:"volume_cbm"`
	WeightKg    float64 `json:"weight_kg"`
	Commodity   string  `json:"commodity"`
	CargoRemark string  `json:"cargo_remark"`
	BuyRate     string  `json:"buy_rate"`
	SellRate    string  `json:"sell_rate"`
	RateCurr    string  `json:"rate_currency"`
}

type listServicesResponse struct {
	Services []serviceDTO `json:"services"`
}

// ListServices fetches the ordered service list of an enquiry.
func (c *APIClient) ListServices(ctx context.Context, enquiryID string) ([]models.EnquiryService, error) {
	result := new(listServicesResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/enquiries/%s/services", enquiryID))
	if err != nil {
		return nil, fmt.Errorf("list enquiry services: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("enquiry api error: code=%d, message=%s", resp.StatusCode(), apiErr.Error.Message)
	}

	services := make([]models.EnquiryService, 0, len(result.Services))
	for _, dto := range result.Services {
		services = append(services, resolveService(dto))
	}
	return services, nil
}

type quotationRecordDTO struct {
	ServiceID int                     `json:"service_id"`
	Scalars   models.QuotationScalars `json:"scalars"`
	Charges   []chargeDTO             `json:"charges"`
}

type chargeDTO struct {
	ChargeName  string `json:"charge_name"`
	Currency    string `json:"currency"`
	ROE         string `json:"roe"`
	Unit        string `json:"unit"`
	Quantity    string `json:"quantity"`
	SellPerUnit string `json:"sell_per_unit"`
	CostPerUnit string `json:"cost_per_unit"`
}

// GetQuotation fetches the persisted quotation record for one service of a
// quotation, or nil when none exists yet.
func (c *APIClient) GetQuotation(ctx context.Context, quotationID string, serviceID int) (*models.QuotationRecord, error) {
	result := new(quotationRecordDTO)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/quotations/%s/services/%d", quotationID, serviceID))
	if err != nil {
		return nil, fmt.Errorf("get quotation record: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("quotation api error: code=%d, message=%s", resp.StatusCode(), apiErr.Error.Message)
	}

	record := &models.QuotationRecord{
		ServiceID: result.ServiceID,
		Scalars:   result.Scalars,
		Charges:   make([]models.ChargeLine, 0, len(result.Charges)),
	}
	for _, dto := range result.Charges {
		record.Charges = append(record.Charges, models.ChargeLine{
			ChargeName:  dto.ChargeName,
			Currency:    dto.Currency,
			ROE:         parseDecimal(dto.ROE),
			Unit:        dto.Unit,
			Quantity:    parseDecimal(dto.Quantity),
			SellPerUnit: parseDecimal(dto.SellPerUnit),
			CostPerUnit: parseDecimal(dto.CostPerUnit),
		})
	}
	return record, nil
}

// resolveService converts the flat upstream shape into the tagged cargo
// union, keyed by service type. Fields belonging to other variants are
// dropped rather than carried around untyped.
func resolveService(dto serviceDTO) models.EnquiryService {
	svc := models.EnquiryService{
		ID:          dto.ID,
		Type:        models.ParseServiceType(dto.ServiceType),
		Trade:       strings.ToUpper(dto.Trade),
		PortOfLoad:  dto.POL,
		PortOfDisch: dto.POD,
		BuyRate:     dto.BuyRate,
		SellRate:    dto.SellRate,
		RateCurr:    dto.RateCurr,
	}
	svc.Cargo.Remark = dto.CargoRemark

	switch svc.Type {
	case models.ServiceAIR:
		svc.Cargo.Air = &models.AirCargo{
			Pieces:           dto.Pieces,
			GrossWeightKg:    dto.GrossWtKg,
			ChargeableWeight: dto.ChargeWt,
			Commodity:        dto.Commodity,
		}
	case models.ServiceFCL:
		svc.Cargo.FCL = &models.FCLCargo{
			ContainerType: dto.CtrType,
			Containers:    dto.Containers,
			CargoWeightMt: dto.CargoWtMt,
			Commodity:     dto.Commodity,
		}
	case models.ServiceLCL:
		svc.Cargo.LCL = &models.LCLCargo{
			Packages:  dto.Packages,
			VolumeCbm: dto.VolumeCbm,
			WeightKg:  dto.WeightKg,
			Commodity: dto.Commodity,
		}
	}
	return svc
}

func parseDecimal(raw string) decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return value
}
