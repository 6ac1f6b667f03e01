package services

import (
	"regexp"
	"strings"
)

// boilerplateTokens are card-network / bank / payment-rail noise that carries
// no merchant information and is stripped before truncation.
var boilerplateTokens = map[string]bool{
	"pos": true, "upi": true, "neft": true, "imps": true, "rtgs": true,
	"ach": true, "nach": true, "ecs": true, "atm": true, "vps": true,
	"visa": true, "mastercard": true, "rupay": true, "amex": true,
	"payment": true, "purchase": true, "txn": true, "ref": true,
	"pvt": true, "ltd": true, "limited": true, "private": true, "india": true,
	"www": true, "com": true, "in": true,
}

var (
	separatorRe = regexp.MustCompile(`[*/\\\-_@:.,]+`)
	digitRe     = regexp.MustCompile(`\d`)
)

// maxMerchantTokens truncates the derived merchant name to the first few
// meaningful tokens.
const maxMerchantTokens = 3

// DeriveMerchant shortens a raw statement description to a merchant name:
// separators become spaces, tokens containing digits and known boilerplate
// are dropped, and the first three surviving tokens are kept with their
// original casing. Consumers (the merchant table, offers) match merchants
// case-insensitively.
func DeriveMerchant(description string) string {
	cleaned := separatorRe.ReplaceAllString(description, " ")

	var kept []string
	for _, token := range strings.Fields(cleaned) {
		if digitRe.MatchString(token) {
			continue
		}
		if boilerplateTokens[strings.ToLower(token)] {
			continue
		}
		kept = append(kept, token)
		if len(kept) == maxMerchantTokens {
			break
		}
	}

	if len(kept) == 0 {
		return strings.Join(strings.Fields(cleaned), " ")
	}
	return strings.Join(kept, " ")
}
