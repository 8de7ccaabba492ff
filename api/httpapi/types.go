package httpapi

import (
	"github.com/samber/lo"

	"depthbook/domain/book"
)

type placeRequest struct {
	Side  string `json:"side"`
	Price string `json:"price"`
	Qty   string `json:"qty"`
}

type placeResponse struct {
	OrderID uint64 `json:"order_id"`
}

type amendRequest struct {
	Price string `json:"price"`
	Qty   string `json:"qty"`
}

type levelDTO struct {
	Price string `json:"price"`
	Qty   string `json:"qty"`
}

type depthResponse struct {
	Bids []levelDTO `json:"bids"`
	Asks []levelDTO `json:"asks"`
}

type bboResponse struct {
	Bid *levelDTO `json:"bid"`
	Ask *levelDTO `json:"ask"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toDepthResponse(s book.DepthSnapshot) depthResponse {
	return depthResponse{
		Bids: toLevelDTOs(s.Bids),
		Asks: toLevelDTOs(s.Asks),
	}
}

func toLevelDTOs(levels []book.PriceLevel) []levelDTO {
	return lo.Map(levels, func(l book.PriceLevel, _ int) levelDTO {
		return levelDTO{Price: l.Price.String(), Qty: l.Qty.String()}
	})
}

func toBBOResponse(q book.Quote) bboResponse {
	var resp bboResponse
	if q.Bid != nil {
		resp.Bid = &levelDTO{Price: q.Bid.Price.String(), Qty: q.Bid.Qty.String()}
	}
	if q.Ask != nil {
		resp.Ask = &levelDTO{Price: q.Ask.Price.String(), Qty: q.Ask.Qty.String()}
	}
	return resp
}
