package marketdata

// rawValue is the provider's {"raw": 1.23, "fmt": "1.23"} number wrapper.
type rawValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				RegularMarketPrice         rawValue `json:"regularMarketPrice"`
				RegularMarketChangePercent rawValue `json:"regularMarketChangePercent"`
				Currency                   string   `json:"currency"`
			} `json:"price"`
			SummaryDetail struct {
				Beta *rawValue `json:"beta"`
			} `json:"summaryDetail"`
			AssetProfile struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteSummary"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}
