package catalog

import (
	"fmt"
	"strings"
)

const (
	brandSep = " - "
	sizeSep  = ", "
)

// ProductText is the brand/name/size triple carried by a listing's alt text.
type ProductText struct {
	Brand       string
	ProductName string
	Size        string
}

// SplitProductText splits alt text of the form "Brand - Name, Size" (or
// "Brand - Name Size" when the text has no comma) into its parts.
//
// The brand is everything before the first " - ". The size is whatever
// follows the last ", " in the remainder, or the last space when the raw
// text lacks a hyphen or a comma. A missing separator or an empty part is
// ErrSplit; the caller gets either all three fields or none.
func SplitProductText(raw string) (ProductText, error) {
	brand, rest, ok := strings.Cut(raw, brandSep)
	if !ok {
		return ProductText{}, fmt.Errorf("%w: no %q in %q", ErrSplit, brandSep, raw)
	}

	tail := " "
	if strings.Contains(raw, "-") && strings.Contains(raw, ",") {
		tail = sizeSep
	}

	i := strings.LastIndex(rest, tail)
	if i < 0 {
		return ProductText{}, fmt.Errorf("%w: no %q after brand in %q", ErrSplit, tail, raw)
	}

	pt := ProductText{
		Brand:       strings.TrimSpace(brand),
		ProductName: strings.TrimSpace(rest[:i]),
		Size:        strings.TrimSpace(rest[i+len(tail):]),
	}
	if pt.Brand == "" || pt.ProductName == "" || pt.Size == "" {
		return ProductText{}, fmt.Errorf("%w: empty field in %q", ErrSplit, raw)
	}
	return pt, nil
}

// String joins the parts back in the comma grammar.
func (p ProductText) String() string {
	return p.Brand + brandSep + p.ProductName + sizeSep + p.Size
}
