package middleware

import (
	"context"

	"github.com/linqiao-quant/ashare/pkg/common"
)

var (
	NoopBarHdl       = func(context.Context, common.Bar) {}
	NoopOrderHdl     = func(context.Context, common.Order) {}
	NoopFillHdl      = func(context.Context, common.Fill) {}
	NoopOrderRjctHdl = func(context.Context, common.OrderRejected) {}
	NoopOrderCnclHdl = func(context.Context, common.OrderCancelled) {}
	NoopCashHdl      = func(context.Context, common.Cash) {}
	NoopEquityHdl    = func(context.Context, common.Equity) {}
)
