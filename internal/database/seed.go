package database

import (
	"cardwise/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// curatedMerchants is the seed data for the merchant → category lookup table.
// Names are the normalized merchant tokens the statement parser derives, not
// raw statement descriptions.
var curatedMerchants = map[string]models.Category{
	"zomato":          models.CategoryFood,
	"swiggy":          models.CategoryFood,
	"dominos":         models.CategoryFood,
	"mcdonalds":       models.CategoryFood,
	"kfc":             models.CategoryFood,
	"starbucks":       models.CategoryFood,
	"barbeque nation": models.CategoryFood,

	"indian oil":       models.CategoryFuel,
	"bharat petroleum": models.CategoryFuel,
	"hpcl":             models.CategoryFuel,
	"shell":            models.CategoryFuel,

	"bigbasket":        models.CategoryGrocery,
	"blinkit":          models.CategoryGrocery,
	"zepto":            models.CategoryGrocery,
	"dmart":            models.CategoryGrocery,
	"reliance fresh":   models.CategoryGrocery,
	"more supermarket": models.CategoryGrocery,

	"amazon":   models.CategoryShopping,
	"flipkart": models.CategoryShopping,
	"myntra":   models.CategoryShopping,
	"ajio":     models.CategoryShopping,
	"nykaa":    models.CategoryShopping,
	"croma":    models.CategoryShopping,

	"irctc":      models.CategoryTravel,
	"makemytrip": models.CategoryTravel,
	"goibibo":    models.CategoryTravel,
	"uber":       models.CategoryTravel,
	"ola":        models.CategoryTravel,
	"indigo":     models.CategoryTravel,
	"air india":  models.CategoryTravel,
	"oyo":        models.CategoryTravel,

	"bookmyshow": models.CategoryEntertainment,
	"netflix":    models.CategoryEntertainment,
	"spotify":    models.CategoryEntertainment,
	"hotstar":    models.CategoryEntertainment,
	"sony liv":   models.CategoryEntertainment,

	"airtel":        models.CategoryUtilities,
	"jio":           models.CategoryUtilities,
	"vodafone idea": models.CategoryUtilities,
	"tata power":    models.CategoryUtilities,
	"bescom":        models.CategoryUtilities,

	"apollo pharmacy": models.CategoryMedical,
	"pharmeasy":       models.CategoryMedical,
	"netmeds":         models.CategoryMedical,
	"practo":          models.CategoryMedical,

	"lic":           models.CategoryInsurance,
	"hdfc ergo":     models.CategoryInsurance,
	"icici lombard": models.CategoryInsurance,

	"zerodha": models.CategoryInvestment,
	"groww":   models.CategoryInvestment,
	"upstox":  models.CategoryInvestment,
	"coin":    models.CategoryInvestment,
}

// SeedMerchants upserts the curated merchant mappings. Existing rows keep
// any manual category overrides.
func SeedMerchants(db *gorm.DB) error {
	for merchant, category := range curatedMerchants {
		row := models.MerchantMapping{Merchant: merchant, Category: category}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merchant"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}
