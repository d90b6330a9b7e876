package xbrl

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// KeyMetrics is the curated default list shown on a ticker page.
var KeyMetrics = []string{
	"Revenues",
	"RevenueFromContractWithCustomerExcludingAssessedTax",
	"GrossProfit",
	"OperatingIncomeLoss",
	"NetIncomeLoss",
	"EarningsPerShareBasic",
	"EarningsPerShareDiluted",
	"Assets",
	"AssetsCurrent",
	"Liabilities",
	"LiabilitiesCurrent",
	"StockholdersEquity",
	"CashAndCashEquivalentsAtCarryingValue",
	"OperatingCashFlowsFromOperatingActivities",
}

// IncomeMetrics lists income statement concepts.
var IncomeMetrics = []string{
	"Revenues",
	"RevenueFromContractWithCustomerExcludingAssessedTax",
	"CostOfRevenue",
	"CostOfGoodsAndServicesSold",
	"GrossProfit",
	"OperatingExpenses",
	"ResearchAndDevelopmentExpense",
	"SellingGeneralAndAdministrativeExpense",
	"OperatingIncomeLoss",
	"InterestExpense",
	"InterestIncome",
	"OtherNonoperatingIncomeExpense",
	"IncomeLossFromContinuingOperationsBeforeIncomeTaxesMinorityInterestAndIncomeLossFromEquityMethodInvestments",
	"IncomeTaxExpenseBenefit",
	"NetIncomeLoss",
	"NetIncomeLossAttributableToNoncontrollingInterest",
	"NetIncomeLossAttributableToParent",
	"EarningsPerShareBasic",
	"EarningsPerShareDiluted",
	"WeightedAverageNumberOfSharesOutstandingBasic",
	"WeightedAverageNumberOfDilutedSharesOutstanding",
}

// BalanceMetrics lists balance sheet concepts.
var BalanceMetrics = []string{
	"Assets",
	"AssetsCurrent",
	"CashAndCashEquivalentsAtCarryingValue",
	"MarketableSecurities",
	"AccountsReceivableNet",
	"Inventory",
	"PrepaidExpensesAndOtherAssets",
	"PropertyPlantAndEquipmentNet",
	"Goodwill",
	"IntangibleAssetsNet",
	"Investments",
	"OtherAssets",
	"Liabilities",
	"LiabilitiesCurrent",
	"AccountsPayableCurrent",
	"AccruedLiabilitiesCurrent",
	"ShortTermDebt",
	"LongTermDebt",
	"DeferredRevenue",
	"OtherLiabilities",
	"StockholdersEquity",
	"CommonStockValue",
	"RetainedEarningsAccumulatedDeficit",
	"AccumulatedOtherComprehensiveIncomeLoss",
	"TreasuryStockValue",
}

// CashFlowMetrics lists cash flow statement concepts.
var CashFlowMetrics = []string{
	"NetCashProvidedByUsedInOperatingActivities",
	"NetIncomeLoss",
	"DepreciationDepletionAndAmortization",
	"StockBasedCompensation",
	"DeferredIncomeTaxExpenseBenefit",
	"ChangesInOperatingAssetsAndLiabilities",
	"IncreaseDecreaseInAccountsReceivable",
	"IncreaseDecreaseInInventories",
	"IncreaseDecreaseInAccountsPayable",
	"NetCashProvidedByUsedInInvestingActivities",
	"PaymentsToAcquirePropertyPlantAndEquipment",
	"PaymentsToAcquireInvestments",
	"ProceedsFromSaleOfInvestments",
	"PaymentsToAcquireBusinessesNetOfCashAcquired",
	"NetCashProvidedByUsedInFinancingActivities",
	"PaymentsOfDividends",
	"PaymentsForRepurchaseOfCommonStock",
	"ProceedsFromIssuanceOfCommonStock",
	"RepaymentsOfDebt",
	"ProceedsFromDebt",
	"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalentsBeginningOfPeriod",
	"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalentsEndOfPeriod",
}

// BatchMetrics is the wider list written by offline batch processing.
var BatchMetrics = append(clone(KeyMetrics),
	"OperatingExpenses",
	"ResearchAndDevelopmentExpense",
	"SellingGeneralAndAdministrativeExpense",
	"InterestExpense",
	"IncomeTaxExpenseBenefit",
	"DepreciationDepletionAndAmortization",
	"PropertyPlantAndEquipmentNet",
	"Goodwill",
	"LongTermDebt",
	"ShortTermInvestments",
	"AccountsReceivableNetCurrent",
	"InventoryNet",
	"AccountsPayableCurrent",
	"DividendsCommonStockCash",
	"WeightedAverageNumberOfSharesOutstandingBasic",
	"WeightedAverageNumberOfDilutedSharesOutstanding",
)

// DEIMetrics lists document and entity information concepts summarized per company.
var DEIMetrics = []string{
	"EntityRegistrantName",
	"EntityCentralIndexKey",
	"EntityFilerCategory",
	"EntityPublicFloat",
	"EntityCommonStockSharesOutstanding",
	"DocumentPeriodEndDate",
	"DocumentFiscalYearEnd",
	"DocumentType",
}

// Lists bundles the named metric lists used for selection. It is passed
// explicitly to the extractor so callers can swap lists per request or test.
type Lists struct {
	Key      []string `yaml:"key"`
	Income   []string `yaml:"income"`
	Balance  []string `yaml:"balance"`
	CashFlow []string `yaml:"cashflow"`
	Batch    []string `yaml:"batch"`
	DEI      []string `yaml:"dei"`
}

// DefaultLists returns copies of the built-in lists.
func DefaultLists() Lists {
	return Lists{
		Key:      clone(KeyMetrics),
		Income:   clone(IncomeMetrics),
		Balance:  clone(BalanceMetrics),
		CashFlow: clone(CashFlowMetrics),
		Batch:    clone(BatchMetrics),
		DEI:      clone(DEIMetrics),
	}
}

// LoadLists reads list overrides from a YAML file. Lists missing from the
// file keep their defaults. An empty path returns the defaults.
//
//	key: [Revenues, NetIncomeLoss]
//	cashflow: [NetCashProvidedByUsedInOperatingActivities]
func LoadLists(path string) (Lists, error) {
	lists := DefaultLists()
	if path == "" {
		return lists, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return lists, eris.Wrapf(err, "xbrl: read metric lists %s", path)
	}

	var override Lists
	if err := yaml.Unmarshal(data, &override); err != nil {
		return lists, eris.Wrap(err, "xbrl: parse metric lists")
	}

	if len(override.Key) > 0 {
		lists.Key = override.Key
	}
	if len(override.Income) > 0 {
		lists.Income = override.Income
	}
	if len(override.Balance) > 0 {
		lists.Balance = override.Balance
	}
	if len(override.CashFlow) > 0 {
		lists.CashFlow = override.CashFlow
	}
	if len(override.Batch) > 0 {
		lists.Batch = override.Batch
	}
	if len(override.DEI) > 0 {
		lists.DEI = override.DEI
	}
	return lists, nil
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
