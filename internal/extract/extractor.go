package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/fleetlens/carrierscan/internal/carrier"
)

// Categories derived from the marked carrier-operation labels, checked in
// fixed priority order; the first membership match wins.
const (
	CategoryFreight   = "freight"
	CategoryPassenger = "passenger"
	CategoryBroker    = "broker"
)

var categoryRules = []struct {
	name   string
	tokens []string
}{
	{CategoryFreight, []string{"auth. for hire", "general freight", "property"}},
	{CategoryPassenger, []string{"passenger"}},
	{CategoryBroker, []string{"broker"}},
}

// Extractor produces a flat record from a raw snapshot document.
type Extractor struct {
	logger *zap.Logger
}

// New builds an Extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract builds the record for a document. It never fails; every field that
// cannot be located is an empty string. Extracting twice from the same body
// yields identical records.
func (e *Extractor) Extract(address, document string) carrier.Record {
	doc := Parse(document)
	return e.ExtractParsed(address, doc)
}

// ExtractParsed is Extract over an already-parsed document, so callers that
// parsed for filtering do not parse twice.
func (e *Extractor) ExtractParsed(address string, doc *Document) carrier.Record {
	fields := map[string]string{
		carrier.FieldLegalName:       doc.LabelValue(LabelLegalName),
		carrier.FieldDBAName:         doc.LabelValue(LabelDBAName),
		carrier.FieldEntityType:      doc.LabelValue(LabelEntityType),
		carrier.FieldOperatingStatus: doc.LabelValue(LabelOperatingStatus),
		carrier.FieldUSDOTNumber:     doc.LabelValue(LabelUSDOTNumber),
		carrier.FieldPowerUnits:      doc.LabelValue(LabelPowerUnits),
		carrier.FieldDrivers:         doc.LabelValue(LabelDrivers),
		carrier.FieldFormDate:        doc.LabelValue(LabelFormDate),
	}

	fields[carrier.FieldDocketNumber] = DocketNumber(doc.Raw())

	phone := doc.LabelValue(LabelPhone)
	if phone == "" {
		phone = Phone(doc.Raw())
	}
	fields[carrier.FieldPhone] = phone
	fields[carrier.FieldEmail] = Email(doc.Raw())

	addr := doc.LabelValue(LabelPhysicalAddr)
	fields[carrier.FieldPhysicalAddress] = addr
	city, state, zip := SplitAddress(addr)
	fields[carrier.FieldCity] = city
	fields[carrier.FieldState] = state
	fields[carrier.FieldZip] = zip

	marked := doc.MarkedLabels()
	fields[carrier.FieldCarrierOperation] = strings.Join(marked, "; ")
	fields[carrier.FieldCategory] = Category(marked)

	e.logger.Debug("record extracted",
		zap.String("url", address),
		zap.String("legal_name", fields[carrier.FieldLegalName]),
	)
	return carrier.Record{Address: address, Fields: fields}
}

// Category derives the coarse operation category from the marked labels.
func Category(marked []string) string {
	joined := strings.ToLower(strings.Join(marked, "; "))
	for _, rule := range categoryRules {
		for _, token := range rule.tokens {
			if strings.Contains(joined, token) {
				return rule.name
			}
		}
	}
	return ""
}
