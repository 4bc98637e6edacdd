package moex

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/securityhistory"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	"github.com/muhammadchandra19/moex-history-service/pkg/util"
)

// issTable is the columns/data table shape every ISS block uses.
type issTable struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// historyResponse is the ISS history endpoint payload. The cursor block
// carries INDEX, TOTAL and PAGESIZE for pagination.
type historyResponse struct {
	History issTable `json:"history"`
	Cursor  issTable `json:"history.cursor"`
}

type pageCursor struct {
	Index    int
	Total    int
	PageSize int
}

func (t issTable) columnIndex() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		idx[col] = i
	}
	return idx
}

func (r *historyResponse) cursor() (pageCursor, error) {
	idx := r.Cursor.columnIndex()
	if len(r.Cursor.Data) == 0 {
		return pageCursor{}, errors.TracerWithCode("history.cursor block is empty", errors.UpstreamError)
	}

	row := r.Cursor.Data[0]
	c := pageCursor{}
	for name, dst := range map[string]*int{"INDEX": &c.Index, "TOTAL": &c.Total, "PAGESIZE": &c.PageSize} {
		pos, ok := idx[name]
		if !ok || pos >= len(row) {
			return pageCursor{}, errors.TracerWithCode("history.cursor misses column "+name, errors.UpstreamError)
		}
		v, ok := row[pos].(float64)
		if !ok {
			return pageCursor{}, errors.TracerWithCode("history.cursor column "+name+" is not numeric", errors.UpstreamError)
		}
		*dst = int(v)
	}

	if c.PageSize <= 0 {
		return pageCursor{}, errors.TracerWithCode("history.cursor page size is not positive", errors.UpstreamError)
	}

	return c, nil
}

// rows converts the history block into storage rows.
func (r *historyResponse) rows(session int16) ([]*securityhistory.Row, error) {
	idx := r.History.columnIndex()

	result := make([]*securityhistory.Row, 0, len(r.History.Data))
	for _, raw := range r.History.Data {
		row := &securityhistory.Row{TradingSession: session}

		var err error
		if row.BoardID, err = stringAt(idx, raw, "BOARDID"); err != nil {
			return nil, err
		}
		if row.SecID, err = stringAt(idx, raw, "SECID"); err != nil {
			return nil, err
		}

		tradeDate, err := stringAt(idx, raw, "TRADEDATE")
		if err != nil {
			return nil, err
		}
		row.TradeDate, err = daterange.ParseDate(tradeDate)
		if err != nil {
			return nil, errors.TracerWithCode("malformed TRADEDATE "+tradeDate, errors.UpstreamError)
		}

		row.NumTrades = int64At(idx, raw, "NUMTRADES")
		row.ShortName = stringPtrAt(idx, raw, "SHORTNAME")
		row.Value = floatPtrAt(idx, raw, "VALUE")
		row.Open = floatPtrAt(idx, raw, "OPEN")
		row.Low = floatPtrAt(idx, raw, "LOW")
		row.High = floatPtrAt(idx, raw, "HIGH")
		row.LegalClosePrice = floatPtrAt(idx, raw, "LEGALCLOSEPRICE")
		row.WAPrice = floatPtrAt(idx, raw, "WAPRICE")
		row.Close = floatPtrAt(idx, raw, "CLOSE")
		row.Volume = floatPtrAt(idx, raw, "VOLUME")
		row.MarketPrice2 = floatPtrAt(idx, raw, "MARKETPRICE2")
		row.MarketPrice3 = floatPtrAt(idx, raw, "MARKETPRICE3")
		row.AdmittedQuote = floatPtrAt(idx, raw, "ADMITTEDQUOTE")
		row.MP2ValTrd = floatPtrAt(idx, raw, "MP2VALTRD")
		row.MarketPrice3TradesValue = floatPtrAt(idx, raw, "MARKETPRICE3TRADESVALUE")
		row.AdmittedValue = floatPtrAt(idx, raw, "ADMITTEDVALUE")
		row.WAVal = floatPtrAt(idx, raw, "WAVAL")

		if pos, ok := idx["TRADINGSESSION"]; ok && pos < len(raw) {
			if v, ok := raw[pos].(float64); ok {
				row.TradingSession = int16(v)
			}
		}

		result = append(result, row)
	}

	return result, nil
}

func decodeHistoryResponse(body []byte) (*historyResponse, error) {
	resp := &historyResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, errors.TracerWithCode("malformed ISS payload: "+err.Error(), errors.UpstreamError)
	}
	return resp, nil
}

func stringAt(idx map[string]int, raw []any, name string) (string, error) {
	pos, ok := idx[name]
	if !ok || pos >= len(raw) {
		return "", errors.TracerWithCode("history block misses column "+name, errors.UpstreamError)
	}
	v, ok := raw[pos].(string)
	if !ok || v == "" {
		return "", errors.TracerWithCode(fmt.Sprintf("history column %s has no value", name), errors.UpstreamError)
	}
	return v, nil
}

func stringPtrAt(idx map[string]int, raw []any, name string) *string {
	pos, ok := idx[name]
	if !ok || pos >= len(raw) {
		return nil
	}
	v, ok := raw[pos].(string)
	if !ok {
		return nil
	}
	return util.StringPointer(v)
}

func floatPtrAt(idx map[string]int, raw []any, name string) *float64 {
	pos, ok := idx[name]
	if !ok || pos >= len(raw) {
		return nil
	}
	v, ok := raw[pos].(float64)
	if !ok || math.IsNaN(v) {
		return nil
	}
	return util.Float64Pointer(v)
}

func int64At(idx map[string]int, raw []any, name string) int64 {
	pos, ok := idx[name]
	if !ok || pos >= len(raw) {
		return 0
	}
	v, ok := raw[pos].(float64)
	if !ok {
		return 0
	}
	return int64(v)
}
