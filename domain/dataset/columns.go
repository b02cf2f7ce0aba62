package dataset

// Source columns of the insurance transaction extract used by the core
const (
	ColTransactionMonth         = "TransactionMonth"
	ColTotalPremium             = "TotalPremium"
	ColTotalClaims              = "TotalClaims"
	ColRegistrationYear         = "RegistrationYear"
	ColCalculatedPremiumPerTerm = "CalculatedPremiumPerTerm"
	ColProvince                 = "Province"
	ColPostalCode               = "PostalCode"
	ColGender                   = "Gender"
	ColVehicleType              = "VehicleType"
)

// Derived columns added by cleaning and by the hypothesis engine
const (
	ColTransactionYear = "TransactionYear"
	ColVehicleAge      = "VehicleAge"
	ColMargin          = "Margin"
	ColClaimed         = "Claimed"
	ColLossRatio       = "LossRatio"
)
