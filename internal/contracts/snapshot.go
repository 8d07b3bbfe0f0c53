package contracts

// FinancialSnapshot is one quarter's reconciled bundle. Income and cash-flow
// fields are single-quarter values; balance fields are point-in-time.
// Shares and EPS are already split-adjusted.
type FinancialSnapshot struct {
	Date string `json:"date"`

	Revenue         *float64 `json:"revenue"`
	NetIncome       *float64 `json:"net_income"`
	GrossProfit     *float64 `json:"gross_profit"`
	OperatingIncome *float64 `json:"operating_income"`
	OperatingCF     *float64 `json:"operating_cf"`
	Capex           *float64 `json:"capex"` // negative outflow
	Depreciation    *float64 `json:"depreciation"`
	EPS             *float64 `json:"eps"`
	IncomeTax       *float64 `json:"income_tax"`
	InterestExpense *float64 `json:"interest_expense"`

	TotalAssets *float64 `json:"total_assets"`
	TotalEquity *float64 `json:"total_equity"`
	TotalDebt   *float64 `json:"total_debt"`
	Cash        *float64 `json:"cash"`
	Shares      *float64 `json:"shares"`

	SharesEstimated bool `json:"shares_estimated"`
}

// HasCoreData reports whether revenue, net income or total assets is known
func (s *FinancialSnapshot) HasCoreData() bool {
	return s.Revenue != nil || s.NetIncome != nil || s.TotalAssets != nil
}

// EBITDA derivation paths
const (
	EBITDAFromOperatingIncome = "operating_income"
	EBITDAFromNetIncome       = "net_income"
)

// TTMSnapshot aggregates four consecutive quarterly snapshots, anchored on the
// latest one
type TTMSnapshot struct {
	Date string `json:"date"`

	RevenueTTM         *float64 `json:"revenue_ttm"`
	NetIncomeTTM       *float64 `json:"net_income_ttm"`
	GrossProfitTTM     *float64 `json:"gross_profit_ttm"`
	OperatingIncomeTTM *float64 `json:"operating_income_ttm"`
	EBITDATTM          *float64 `json:"ebitda_ttm"`
	FCFTTM             *float64 `json:"fcf_ttm"`
	EPSTTM             *float64 `json:"eps_ttm"`
	EBITDASource       string   `json:"ebitda_source,omitempty"`

	TotalAssets *float64 `json:"total_assets"`
	TotalEquity *float64 `json:"total_equity"`
	TotalDebt   *float64 `json:"total_debt"`
	Cash        *float64 `json:"cash"`
	Shares      *float64 `json:"shares"`

	SharesEstimated bool `json:"shares_estimated"`
}

// DynamicRatioPoint is one trading day's valuation
type DynamicRatioPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`

	MarketCap       *float64 `json:"market_cap"`
	PE              *float64 `json:"pe"`
	EVEBITDA        *float64 `json:"ev_ebitda"`
	PB              *float64 `json:"pb"`
	PS              *float64 `json:"ps"`
	NetDebtToEBITDA *float64 `json:"net_debt_to_ebitda"`

	RevenueTTM   *float64 `json:"revenue_ttm"`
	NetIncomeTTM *float64 `json:"net_income_ttm"`
	EBITDATTM    *float64 `json:"ebitda_ttm"`
	FCFTTM       *float64 `json:"fcf_ttm"`

	ROE             *float64 `json:"roe"`
	GrossMargin     *float64 `json:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	NetMargin       *float64 `json:"net_margin"`
	DebtToEquity    *float64 `json:"debt_to_equity"`

	// SharesEstimated is set when the share count came from public float / price
	SharesEstimated bool `json:"shares_estimated"`
}
