package contracts

// AnnualRecord is one fiscal year of the financial-statement series
type AnnualRecord struct {
	Period     string `json:"period"` // "2023-FY"
	PeriodDate string `json:"period_date"`

	Revenue            *float64 `json:"revenue"`
	NetIncome          *float64 `json:"net_income"`
	GrossProfit        *float64 `json:"gross_profit"`
	OperatingIncome    *float64 `json:"operating_income"`
	EBITDA             *float64 `json:"ebitda"`
	EPS                *float64 `json:"eps"`
	OperatingCashFlow  *float64 `json:"operating_cash_flow"`
	CapitalExpenditure *float64 `json:"capital_expenditure"` // negative outflow
	FreeCashFlow       *float64 `json:"free_cash_flow"`
	Depreciation       *float64 `json:"depreciation"`

	TotalAssets       *float64 `json:"total_assets"`
	TotalEquity       *float64 `json:"total_equity"`
	TotalDebt         *float64 `json:"total_debt"`
	Cash              *float64 `json:"cash"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
	BookValuePerShare *float64 `json:"book_value_per_share"`

	GrossMargin     *float64 `json:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	NetMargin       *float64 `json:"net_margin"`
	ROE             *float64 `json:"roe"`
	DebtToEquity    *float64 `json:"debt_to_equity"`

	RevenueGrowth *float64 `json:"revenue_growth"`
	EPSGrowth     *float64 `json:"eps_growth"`
}
