package extract

import "github.com/wonny/fundscope/internal/contracts"

// Tag identifies one concept inside a taxonomy
type Tag struct {
	Taxonomy string
	Name     string
}

func (t Tag) String() string {
	return t.Taxonomy + ":" + t.Name
}

// GAAP returns a us-gaap tag
func GAAP(name string) Tag {
	return Tag{Taxonomy: contracts.TaxonomyGAAP, Name: name}
}

// DEI returns a document-and-entity-information tag
func DEI(name string) Tag {
	return Tag{Taxonomy: contracts.TaxonomyDEI, Name: name}
}

// Chain is an ordered list of synonym tags for one logical quantity.
// Index 0 is the highest priority.
type Chain []Tag

// Single wraps one tag as a chain
func Single(t Tag) Chain {
	return Chain{t}
}

// ⭐ SSOT: synonym chains for every logical quantity the engine reads
var (
	Revenue = Chain{
		GAAP("RevenueFromContractWithCustomerExcludingAssessedTax"), // ASC 606, 2018+
		GAAP("SalesRevenueNet"),
		GAAP("Revenues"),
		GAAP("RevenuesNetOfInterestExpense"),       // banks
		GAAP("InterestAndDividendIncomeOperating"), // banks using interest income
		GAAP("SalesRevenueServicesNet"),
		GAAP("SalesRevenueGoodsNet"),
	}

	NetIncomeAnnual = Chain{
		GAAP("NetIncomeLoss"),
		GAAP("ProfitLoss"),
		GAAP("NetIncomeLossAvailableToCommonStockholdersBasic"),
		GAAP("IncomeLossFromContinuingOperations"),
	}

	// Quarterly net income leaves out the common-only and continuing-ops
	// variants; mixing them with NetIncomeLoss across quarters skews TTM sums.
	NetIncomeQuarterly = Chain{
		GAAP("NetIncomeLoss"),
		GAAP("ProfitLoss"),
	}

	GrossProfit = Single(GAAP("GrossProfit"))

	OperatingIncomeAnnual = Single(GAAP("OperatingIncomeLoss"))

	OperatingIncomeQuarterly = Chain{
		GAAP("OperatingIncomeLoss"),
		GAAP("IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest"),
	}

	EPS = Chain{
		GAAP("EarningsPerShareDiluted"),
		GAAP("EarningsPerShareBasic"),
	}

	// annual statements report basic EPS first
	EPSAnnual = Chain{
		GAAP("EarningsPerShareBasic"),
		GAAP("EarningsPerShareDiluted"),
	}

	IncomeTax = Single(GAAP("IncomeTaxExpenseBenefit"))

	InterestExpense = Chain{
		GAAP("InterestExpense"),
		GAAP("InterestExpenseDebt"),
		GAAP("InterestIncomeExpenseNet"), // negative when expense exceeds income
	}

	OperatingCashFlow = Single(GAAP("NetCashProvidedByUsedInOperatingActivities"))

	// Capex is disclosed as a positive payment; callers negate it
	Capex = Single(GAAP("PaymentsToAcquirePropertyPlantAndEquipment"))

	DepreciationCombined = Chain{
		GAAP("DepreciationDepletionAndAmortization"),
		GAAP("DepreciationAmortizationAndAccretionNet"),
		GAAP("DepreciationAndAmortization"),
	}

	DepreciationOnly = Single(GAAP("Depreciation"))
	AmortizationOnly = Single(GAAP("AmortizationOfIntangibleAssets"))

	AccumulatedDepreciation = Chain{
		GAAP("PropertyPlantAndEquipmentAndFinanceLeaseRightOfUseAssetAccumulatedDepreciationAndAmortization"),
		GAAP("AccumulatedDepreciationDepletionAndAmortizationPropertyPlantAndEquipment"),
	}

	TotalAssets = Single(GAAP("Assets"))
	TotalEquity = Single(GAAP("StockholdersEquity"))
	Cash        = Single(GAAP("CashAndCashEquivalentsAtCarryingValue"))

	TotalDebt = Chain{
		GAAP("LongTermDebtNoncurrent"),
		GAAP("LongTermDebt"),
	}

	Shares = Chain{
		GAAP("WeightedAverageNumberOfDilutedSharesOutstanding"),
		GAAP("CommonStockSharesOutstanding"),
	}

	// point-in-time count at fiscal year end, for book value per share
	SharesAnnual = Chain{
		GAAP("CommonStockSharesOutstanding"),
		GAAP("WeightedAverageNumberOfDilutedSharesOutstanding"),
	}

	PublicFloat = DEI("EntityPublicFloat")
	SharePrice  = GAAP("SharePrice")
)
