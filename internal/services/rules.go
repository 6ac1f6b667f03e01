package services

import (
	"regexp"
	"strings"

	"cardwise/internal/models"
)

// categoryRule owns the keyword list, regex set and priority for one
// category. Keyword hits score 1.0, pattern hits 1.5; the sum is divided by
// the rule's priority so broad categories do not shadow specific ones.
type categoryRule struct {
	category models.Category
	keywords []string
	patterns []*regexp.Regexp
	priority int
}

var categoryRules = []categoryRule{
	{
		category: models.CategoryFood,
		keywords: []string{"zomato", "swiggy", "restaurant", "cafe", "pizza", "dominos", "mcdonald", "kfc", "burger", "biryani", "eatery", "bakery", "foodcourt"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(dine|dining|kitchen)\b`),
			regexp.MustCompile(`(?i)food\s*(order|delivery)`),
		},
		priority: 1,
	},
	{
		category: models.CategoryFuel,
		keywords: []string{"petrol", "diesel", "fuel", "hpcl", "bpcl", "iocl", "indian oil", "bharat petroleum", "filling station"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)petro`),
			regexp.MustCompile(`(?i)\bgas\s*station\b`),
		},
		priority: 1,
	},
	{
		category: models.CategoryGrocery,
		keywords: []string{"bigbasket", "blinkit", "zepto", "grofers", "dmart", "supermarket", "kirana", "grocery", "hypermart", "reliance fresh"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bsuper\s*market\b`),
			regexp.MustCompile(`(?i)\bfresh\s*mart\b`),
		},
		priority: 1,
	},
	{
		category: models.CategoryTravel,
		keywords: []string{"irctc", "makemytrip", "goibibo", "uber", "ola", "flight", "airlines", "indigo", "vistara", "oyo", "railway", "metro", "redbus", "yatra", "cleartrip"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(air|jet)\s*(india|ways)\b`),
			regexp.MustCompile(`(?i)\b(cab|taxi)\b`),
		},
		priority: 1,
	},
	{
		category: models.CategoryEntertainment,
		keywords: []string{"bookmyshow", "netflix", "spotify", "hotstar", "cinema", "pvr", "inox", "movie", "prime video", "gaming"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bmulti\s*plex\b`),
		},
		priority: 1,
	},
	{
		category: models.CategoryUtilities,
		keywords: []string{"electricity", "broadband", "recharge", "airtel", "jio", "vodafone", "dth", "postpaid", "bescom", "mseb", "tneb", "water bill", "gas bill"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(bill\s*pay|billdesk)\b`),
		},
		priority: 1,
	},
	{
		category: models.CategoryMedical,
		keywords: []string{"pharmacy", "hospital", "clinic", "apollo", "medplus", "pharmeasy", "netmeds", "diagnostic", "pathology", "dental"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bmedi?c(al|ine)\b`),
			regexp.MustCompile(`(?i)\blab(oratory)?\b`),
		},
		priority: 1,
	},
	{
		category: models.CategoryATM,
		keywords: []string{"atm", "cash withdrawal", "atw", "cwdr"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcash\s*wdl\b`),
		},
		priority: 1,
	},
	{
		category: models.CategoryTransfer,
		keywords: []string{"neft", "imps", "rtgs", "fund transfer", "upi transfer", "money transfer"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\btransfer\s+to\b`),
		},
		priority: 1,
	},
	{
		category: models.CategoryInsurance,
		keywords: []string{"insurance", "lic", "policy premium", "policybazaar"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bpremium\s*(payment|due)\b`),
		},
		priority: 1,
	},
	{
		category: models.CategoryInvestment,
		keywords: []string{"mutual fund", "zerodha", "groww", "upstox", "demat", "sip", "nps", "ppf"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bsip\s*(installment|debit)\b`),
			regexp.MustCompile(`(?i)\b(stocks?|equity)\b`),
		},
		priority: 1,
	},
	{
		// Broad retail keywords sit at a lower priority so specific
		// categories win when both match.
		category: models.CategoryShopping,
		keywords: []string{"amazon", "flipkart", "myntra", "ajio", "nykaa", "mall", "store", "shopping", "croma", "ikea", "decathlon", "lifestyle"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bretail\b`),
		},
		priority: 2,
	},
}

const (
	keywordWeight = 1.0
	patternWeight = 1.5
	// ruleScale maps a single priority-1 keyword hit exactly onto the
	// confidence threshold.
	ruleScale = 0.7
)

// scoreAgainstRules returns the best-scoring category for a description and
// its normalized confidence. A category with zero keyword and pattern hits
// is never returned.
func scoreAgainstRules(description string) (models.Category, float64, string) {
	lowered := strings.ToLower(description)

	var bestCategory models.Category
	bestScore := 0.0
	bestDetail := ""

	for _, rule := range categoryRules {
		hits := 0.0
		detail := ""
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				hits += keywordWeight
				if detail == "" {
					detail = "keyword " + kw
				}
			}
		}
		for _, p := range rule.patterns {
			if p.MatchString(description) {
				hits += patternWeight
				if detail == "" {
					detail = "pattern " + p.String()
				}
			}
		}
		if hits == 0 {
			continue
		}
		score := hits / float64(rule.priority)
		if score > bestScore {
			bestScore = score
			bestCategory = rule.category
			bestDetail = detail
		}
	}

	if bestScore == 0 {
		return "", 0, ""
	}

	confidence := bestScore * ruleScale
	if confidence > 1 {
		confidence = 1
	}
	return bestCategory, confidence, bestDetail
}
