package datasource

import (
	"github.com/linqiao-quant/ashare/pkg/bus"
	"github.com/linqiao-quant/ashare/pkg/common"
)

type BarSource interface {
	GetNext() (common.Bar, error)
}

// CreateBarDispatcher adapts a bar source to the router's feed callback. Used
// with ExecLoop, it advances the feed by exactly one bar each time the event
// queue runs dry, so all reactions to a bar settle before the next one.
func CreateBarDispatcher(r *bus.Router, ds BarSource) func() error {
	return func() error {
		var bar common.Bar
		var err error

		if bar, err = ds.GetNext(); err != nil {
			return err
		}
		if err = r.Post(bus.BarEvent, bar); err != nil {
			return err
		}
		return nil
	}
}
