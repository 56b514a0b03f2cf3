package csvfile

import (
	"fmt"
	"strings"
)

const utf8BOM = "\ufeff"

// Dialect describes how ledger files are laid out on disk.
type Dialect struct {
	Name      string
	Separator rune
	// DecimalSeparator replaces '.' in formatted amounts.
	DecimalSeparator string
	BOM              bool
}

var (
	// Standard is the canonical comma separated dialect with '.' decimals.
	Standard = Dialect{Name: "standard", Separator: ',', DecimalSeparator: "."}

	// Excel is the locale variant: UTF-8 BOM, ';' separator, ',' decimals.
	Excel = Dialect{Name: "excel", Separator: ';', DecimalSeparator: ",", BOM: true}
)

// ParseDialect returns the dialect registered under name. An empty name
// selects Standard.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Standard.Name:
		return Standard, nil
	case Excel.Name:
		return Excel, nil
	default:
		return Dialect{}, fmt.Errorf("unknown ledger dialect %q", name)
	}
}

func (d Dialect) sep() string {
	return string(d.Separator)
}
