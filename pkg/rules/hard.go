package rules

// HardFileCheck is a document check: the upload must be a PDF and its
// filename must contain one of the keywords (matched case- and
// diacritic-insensitively by the gate evaluator).
type HardFileCheck struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Field    string   `json:"field"` // files_meta key the upload is stored under
	Keywords []string `json:"keywords"`
}

// HardChecks defines the Hard-KO gate: 6 shop-info non-empty fields plus
// 7 eligibility checks. All 13 must pass for the gate to open.
type HardChecks struct {
	ShopInfoFields []string        `json:"shop_info_fields"`
	FileChecks     []HardFileCheck `json:"file_checks"`

	// Shop must have been operating strictly longer than this many months.
	MinOperatingMonths float64 `json:"min_operating_months"`

	// Metrics field that must equal EnumYes exactly.
	EnumField string `json:"enum_field"`
	EnumYes   string `json:"enum_yes"`

	// Metrics field that must be boolean true.
	BoolField string `json:"bool_field"`

	// Composed check: metrics field holding the brand website domain.
	// Passes when the domain matches DomainPattern, resolves to at least
	// one A record, and the shop satisfies MinOperatingMonths.
	DomainField   string `json:"domain_field"`
	DomainPattern string `json:"domain_pattern"`
}

// DefaultHardChecks returns the standard Hard-KO check set.
func DefaultHardChecks() HardChecks {
	return HardChecks{
		ShopInfoFields: []string{
			"shop_name", "owner_name", "tax_code", "address", "phone", "email",
		},
		FileChecks: []HardFileCheck{
			{ID: "HK-DOC-LICENCE", Name: "Business licence", Field: "business_licence",
				Keywords: []string{"giay phep", "gpkd", "licence", "license"}},
			{ID: "HK-DOC-TRADEMARK", Name: "Trademark certificate", Field: "trademark_cert",
				Keywords: []string{"nhan hieu", "trademark", "dang ky"}},
			{ID: "HK-DOC-QUALITY", Name: "Product quality declaration", Field: "quality_cert",
				Keywords: []string{"cong bo", "chat luong", "quality"}},
		},
		MinOperatingMonths: 6,
		EnumField:          "vat_invoice",
		EnumYes:            "Có",
		BoolField:          "no_severe_violation",
		DomainField:        "brand_domain",
		DomainPattern:      `^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`,
	}
}
