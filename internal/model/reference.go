package model

// City is seeded reference data offered on registration forms.
type City struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

// Bank is seeded reference data for seller payout accounts.
type Bank struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

var DefaultCities = []City{
	{ID: 1, Name: "Karachi"},
	{ID: 2, Name: "Lahore"},
	{ID: 3, Name: "Islamabad"},
	{ID: 4, Name: "Rawalpindi"},
	{ID: 5, Name: "Faisalabad"},
	{ID: 6, Name: "Multan"},
	{ID: 7, Name: "Peshawar"},
	{ID: 8, Name: "Quetta"},
	{ID: 9, Name: "Hyderabad"},
	{ID: 10, Name: "Sialkot"},
}

var DefaultBanks = []Bank{
	{ID: 1, Name: "Habib Bank Limited"},
	{ID: 2, Name: "United Bank Limited"},
	{ID: 3, Name: "MCB Bank"},
	{ID: 4, Name: "Allied Bank"},
	{ID: 5, Name: "Bank Alfalah"},
	{ID: 6, Name: "Meezan Bank"},
	{ID: 7, Name: "National Bank of Pakistan"},
	{ID: 8, Name: "Standard Chartered Pakistan"},
}
