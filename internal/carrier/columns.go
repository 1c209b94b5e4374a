package carrier

import "fmt"

// Column set variants. Each names a fixed output column order; every row
// written by the sink carries exactly these columns.
const (
	VariantContact      = "contact"
	VariantSnapshot     = "snapshot"
	VariantRegistration = "registration"
)

var columnSets = map[string][]string{
	VariantContact: {
		FieldLookupURL,
		FieldUSDOTNumber,
		FieldLegalName,
		FieldDBAName,
		FieldPhone,
		FieldEmail,
		FieldCity,
		FieldState,
		FieldZip,
	},
	VariantSnapshot: {
		FieldLookupURL,
		FieldUSDOTNumber,
		FieldDocketNumber,
		FieldLegalName,
		FieldDBAName,
		FieldEntityType,
		FieldOperatingStatus,
		FieldPowerUnits,
		FieldDrivers,
		FieldPhysicalAddress,
		FieldCity,
		FieldState,
		FieldZip,
		FieldPhone,
		FieldCarrierOperation,
		FieldCategory,
	},
	VariantRegistration: {
		FieldLookupURL,
		FieldUSDOTNumber,
		FieldLegalName,
		FieldEntityType,
		FieldCategory,
		FieldFormDate,
		FieldOperatingStatus,
		FieldPowerUnits,
	},
}

// Columns returns the fixed column order for a named variant.
func Columns(variant string) ([]string, error) {
	cols, ok := columnSets[variant]
	if !ok {
		return nil, fmt.Errorf("unknown column variant %q", variant)
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, nil
}
