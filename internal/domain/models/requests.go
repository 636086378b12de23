package models

// Requests for market data HTTP endpoints.

type TickerRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,ticker"`
}

type HistoryRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,ticker"`
	Days   int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=3650"`
}

type ChangeRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,ticker"`
	Start  string `query:"start" json:"start" validate:"required,datetime=2006-01-02"`
	End    string `query:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
}

type SignificantRequest struct {
	Ticker    string  `param:"ticker" json:"ticker" validate:"required,ticker"`
	Threshold float64 `query:"threshold" json:"threshold" default:"2" validate:"gt=0"`
	Days      int     `query:"days" json:"days" default:"1" validate:"gte=1,lte=365"`
}

type NewsRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,ticker"`
	Limit  int    `query:"limit" json:"limit" default:"5" validate:"gte=1,lte=50"`
}
