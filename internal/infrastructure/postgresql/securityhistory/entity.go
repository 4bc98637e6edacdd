package securityhistory

import (
	"time"
)

// Row is one daily trading record for a security on a board. Columns mirror
// the MOEX ISS history table, so most prices are nullable.
type Row struct {
	BoardID                 string    `json:"BOARDID"`
	TradeDate               time.Time `json:"TRADEDATE"`
	ShortName               *string   `json:"SHORTNAME"`
	SecID                   string    `json:"SECID"`
	NumTrades               int64     `json:"NUMTRADES"`
	Value                   *float64  `json:"VALUE"`
	Open                    *float64  `json:"OPEN"`
	Low                     *float64  `json:"LOW"`
	High                    *float64  `json:"HIGH"`
	LegalClosePrice         *float64  `json:"LEGALCLOSEPRICE"`
	WAPrice                 *float64  `json:"WAPRICE"`
	Close                   *float64  `json:"CLOSE"`
	Volume                  *float64  `json:"VOLUME"`
	MarketPrice2            *float64  `json:"MARKETPRICE2"`
	MarketPrice3            *float64  `json:"MARKETPRICE3"`
	AdmittedQuote           *float64  `json:"ADMITTEDQUOTE"`
	MP2ValTrd               *float64  `json:"MP2VALTRD"`
	MarketPrice3TradesValue *float64  `json:"MARKETPRICE3TRADESVALUE"`
	AdmittedValue           *float64  `json:"ADMITTEDVALUE"`
	WAVal                   *float64  `json:"WAVAL"`
	TradingSession          int16     `json:"TRADINGSESSION"`
}
