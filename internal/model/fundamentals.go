package model

import "time"

// FinancialYear is one row of the annual income statement summary.
type FinancialYear struct {
	Year      int     `json:"year"`
	Revenue   float64 `json:"revenue"`
	NetIncome float64 `json:"net_income"`
}

// Profile holds company-level quote data from the provider.
type Profile struct {
	Symbol      string
	CompanyName string
	Sector      string
	Currency    string
	Price       *float64
	MarketCap   *float64
}

// RatiosTTM holds trailing-twelve-month ratios. Nil means the provider did not report the field.
type RatiosTTM struct {
	EPS     *float64
	PERatio *float64
	ROE     *float64 // fraction, e.g. 0.12
}

// Fundamentals is a validated market data record ready for valuation.
// Price and EPSTTM are always present; optional fields are nil when absent.
type Fundamentals struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"company_name"`
	Sector      string          `json:"sector"`
	Currency    string          `json:"currency"`
	Price       float64         `json:"price"`
	EPSTTM      float64         `json:"eps_ttm"`
	PERatioTTM  *float64        `json:"pe_ratio_ttm,omitempty"`
	ROETTM      *float64        `json:"roe_ttm,omitempty"` // percent
	MarketCap   *float64        `json:"market_cap,omitempty"`
	History     []FinancialYear `json:"history,omitempty"` // most recent first
	Source      string          `json:"source"`
	FetchedAt   time.Time       `json:"fetched_at"`
}
