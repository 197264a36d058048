package types

// Country is one row of the country reference data.
type Country struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
}
