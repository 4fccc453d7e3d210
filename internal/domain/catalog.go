package domain

// FundInfo names a well-known fund
type FundInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PopularFunds is a short catalog of frequently analysed funds, in display order
var PopularFunds = []FundInfo{
	{Code: "CPU", Name: "Garanti Portföy Teknoloji"},
	{Code: "AAK", Name: "Ak Portföy Konut Gayrimenkul"},
	{Code: "AFA", Name: "Ak Portföy Altın Katılım"},
	{Code: "GAH", Name: "Garanti Portföy Altın"},
	{Code: "TKB", Name: "Taksit Endeksi"},
	{Code: "YAS", Name: "Yapı Kredi Portföy Altın"},
	{Code: "APE", Name: "Ak Portföy Petrol"},
	{Code: "GMF", Name: "Garanti Portföy Büyüme"},
	{Code: "GPB", Name: "Garanti Portföy Birinci"},
	{Code: "AEF", Name: "Ak Portföy Enflasyon Korumalı"},
}

// FundName returns the catalog name of code, if it is listed
func FundName(code string) (string, bool) {
	code = CleanFundCode(code)
	for _, f := range PopularFunds {
		if f.Code == code {
			return f.Name, true
		}
	}
	return "", false
}
