package broker

import (
	"github.com/linqiao-quant/ashare/pkg/broker/fees"
	"github.com/linqiao-quant/ashare/pkg/utility/fixed"
)

type Option func(*Simulator)

// DefaultSchedule is the common retail A-share fee setup: 0.03% commission
// with a 5 CNY floor on both sides, 0.1% stamp duty on sells.
func DefaultSchedule() fees.Schedule {
	return fees.Schedule{
		CommissionRate: fixed.FromFloat64(0.0003),
		StampDutyRate:  fixed.FromFloat64(0.001),
		MinCommission:  fixed.FromFloat64(5.0),
	}
}

func WithFeeSchedule(schedule fees.Schedule) Option {
	return func(s *Simulator) {
		s.schedule = schedule
	}
}

func WithLotSize(lotSize int64) Option {
	return func(s *Simulator) {
		s.lotSize = lotSize
	}
}
