package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SKUParser turns a spa-cover SKU into its dimensional attributes. New
// inventory records are auto-provisioned from SKUs, so parsing is the
// validation gate for inventory creation.
type SKUParser interface {
	Parse(sku string) (*SKUAttributes, error)
}

// SKUAttributes is the decomposed form of a SKU.
//
// Format: LLLWWWRR-SS-FT-CCC
//
//	LLL  length in inches, zero padded
//	WWW  width in inches, zero padded
//	RR   corner radius in inches
//	SS   skirt length in inches
//	F    foam thickness at the spine, inches
//	T    foam thickness at the edge (taper), inches
//	CCC  vinyl color code
//
// Example: 08409608-15-42-GRY is an 84x96 cover with an 8" radius, 15" skirt,
// 4"-2" taper foam, in Gray.
type SKUAttributes struct {
	Length      int
	Width       int
	Radius      int
	SkirtLength int
	Foam        string
	Taper       string
	ColorCode   string
	ColorName   string
	Description string
}

var skuPattern = regexp.MustCompile(`^(\d{3})(\d{3})(\d{2})-(\d{2})-(\d)(\d)-([A-Z]{2,4})$`)

var colorNames = map[string]string{
	"BLK": "Black",
	"BRN": "Brown",
	"CHR": "Charcoal",
	"GRY": "Gray",
	"HGR": "Hunter Green",
	"NVY": "Navy",
	"SLT": "Slate",
	"TAN": "Tan",
	"TEA": "Teal",
	"WAL": "Walnut",
}

type skuParser struct{}

// NewSKUParser returns the standard SKU parser.
func NewSKUParser() SKUParser { return skuParser{} }

func (skuParser) Parse(sku string) (*SKUAttributes, error) {
	m := skuPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(sku)))
	if m == nil {
		return nil, fmt.Errorf("%w: %q does not match LLLWWWRR-SS-FT-CCC", ErrInvalidSKUFormat, sku)
	}

	length, _ := strconv.Atoi(m[1])
	width, _ := strconv.Atoi(m[2])
	radius, _ := strconv.Atoi(m[3])
	skirt, _ := strconv.Atoi(m[4])
	foam, taper := m[5], m[6]
	colorCode := m[7]

	if length == 0 || width == 0 {
		return nil, fmt.Errorf("%w: %q has a zero dimension", ErrInvalidSKUFormat, sku)
	}
	colorName, ok := colorNames[colorCode]
	if !ok {
		return nil, fmt.Errorf("%w: unknown color code %q", ErrInvalidSKUFormat, colorCode)
	}

	return &SKUAttributes{
		Length:      length,
		Width:       width,
		Radius:      radius,
		SkirtLength: skirt,
		Foam:        foam,
		Taper:       taper,
		ColorCode:   colorCode,
		ColorName:   colorName,
		Description: fmt.Sprintf(`%dx%d Spa Cover, %d" radius, %s"-%s" taper, %d" skirt, %s`,
			length, width, radius, foam, taper, skirt, colorName),
	}, nil
}
