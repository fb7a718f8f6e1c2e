package quotation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

// Origin names the navigation path a drafting session was opened from.
// Each origin has its own adapter producing the common charge-line shape;
// the mapping rules differ per path and are kept separate on purpose.
type Origin string

const (
	OriginEnquiry     Origin = "enquiry"
	OriginDestination Origin = "destination"
	OriginChatbot     Origin = "chatbot"
	OriginEdit        Origin = "edit"
)

// ParseOrigin resolves a request parameter to an origin, defaulting to the
// plain enquiry flow.
func ParseOrigin(raw string) Origin {
	switch Origin(strings.ToLower(strings.TrimSpace(raw))) {
	case OriginDestination:
		return OriginDestination
	case OriginChatbot:
		return OriginChatbot
	case OriginEdit:
		return OriginEdit
	default:
		return OriginEnquiry
	}
}

// ChargesFromEnquiry seeds charge lines from the rate fields of an enquiry
// service. Which cargo figure supplies the quantity depends on the service
// type; a rate that cannot be mapped unambiguously is logged for product
// clarification instead of being guessed at.
func ChargesFromEnquiry(svc models.EnquiryService, homeCountry string, logger *zap.Logger) []models.ChargeLine {
	if logger == nil {
		logger = zap.NewNop()
	}

	sell := parseRate(svc.SellRate)
	cost := parseRate(svc.BuyRate)
	if sell.IsZero() && cost.IsZero() {
		return nil
	}
	if sell.IsZero() != cost.IsZero() {
		logger.Warn("enquiry carries only one side of the rate, leaving the other blank",
			zap.Int("service_id", svc.ID),
			zap.String("service_type", string(svc.Type)))
	}

	line := models.ChargeLine{
		Currency:    strings.ToUpper(svc.RateCurr),
		SellPerUnit: sell,
		CostPerUnit: cost,
		Quantity:    decimal.NewFromInt(1),
	}
	if rate, ok := LookupROE(homeCountry, line.Currency); ok {
		line.ROE = rate
	}

	switch svc.Type {
	case models.ServiceAIR:
		line.ChargeName = "AIR FREIGHT"
		line.Unit = "KG"
		if svc.Cargo.Air != nil && svc.Cargo.Air.ChargeableWeight > 0 {
			line.Quantity = decimal.NewFromFloat(svc.Cargo.Air.ChargeableWeight)
		}
	case models.ServiceFCL:
		line.ChargeName = "OCEAN FREIGHT"
		line.Unit = "CNTR"
		if svc.Cargo.FCL != nil && svc.Cargo.FCL.Containers > 0 {
			line.Quantity = decimal.NewFromInt(int64(svc.Cargo.FCL.Containers))
		}
	case models.ServiceLCL:
		line.ChargeName = "OCEAN FREIGHT"
		line.Unit = "CBM"
		if svc.Cargo.LCL != nil && svc.Cargo.LCL.VolumeCbm > 0 {
			line.Quantity = decimal.NewFromFloat(svc.Cargo.LCL.VolumeCbm)
		}
	default:
		line.ChargeName = "FREIGHT"
		line.Unit = "SHPT"
	}

	lines := []models.ChargeLine{line}
	RecomputeCharges(lines)
	return lines
}

// ChargesFromTariff copies a published rate card into charge lines. Tariff
// prices are stored as strings; unparseable ones become zero and fail row
// validation later rather than aborting the hydration.
func ChargesFromTariff(tariff models.Tariff, homeCountry string) []models.ChargeLine {
	lines := make([]models.ChargeLine, 0, len(tariff.Lines))
	for _, tl := range tariff.Lines {
		line := models.ChargeLine{
			ChargeName:  tl.ChargeName,
			Currency:    strings.ToUpper(tl.Currency),
			Unit:        tl.Unit,
			Quantity:    decimal.NewFromInt(1),
			SellPerUnit: parseRate(tl.SellPerUnit),
			CostPerUnit: parseRate(tl.CostPerUnit),
		}
		if rate, ok := LookupROE(homeCountry, line.Currency); ok {
			line.ROE = rate
		}
		lines = append(lines, line)
	}
	RecomputeCharges(lines)
	return lines
}

// ChargesFromChatMessage parses the chatbot hand-off format: one charge per
// line, fields pipe-separated as name|currency|unit|qty|sell|cost.
func ChargesFromChatMessage(text, homeCountry string) ([]models.ChargeLine, error) {
	var lines []models.ChargeLine

	for n, raw := range strings.Split(strings.TrimSpace(text), "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		fields := strings.Split(raw, "|")
		if len(fields) != 6 {
			return nil, fmt.Errorf("chat charge line %d: want 6 fields, got %d", n+1, len(fields))
		}

		qty, err := decimal.NewFromString(strings.TrimSpace(fields[3]))
		if err != nil {
			return nil, fmt.Errorf("chat charge line %d: bad quantity %q", n+1, fields[3])
		}
		sell, err := decimal.NewFromString(strings.TrimSpace(fields[4]))
		if err != nil {
			return nil, fmt.Errorf("chat charge line %d: bad sell price %q", n+1, fields[4])
		}
		cost, err := decimal.NewFromString(strings.TrimSpace(fields[5]))
		if err != nil {
			return nil, fmt.Errorf("chat charge line %d: bad cost price %q", n+1, fields[5])
		}

		line := models.ChargeLine{
			ChargeName:  strings.ToUpper(strings.TrimSpace(fields[0])),
			Currency:    strings.ToUpper(strings.TrimSpace(fields[1])),
			Unit:        strings.ToUpper(strings.TrimSpace(fields[2])),
			Quantity:    qty,
			SellPerUnit: sell,
			CostPerUnit: cost,
		}
		if rate, ok := LookupROE(homeCountry, line.Currency); ok {
			line.ROE = rate
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("chat message contains no charge lines")
	}
	RecomputeCharges(lines)
	return lines, nil
}

func parseRate(raw string) decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return value
}
