package xim

import "time"

// DispatchInfo describes one completed dispatch.
type DispatchInfo struct {
	Kind     MessageKind
	Major    uint8
	Minor    uint8
	Client   Handle
	IC       Handle
	Live     []Handle
	Duration time.Duration
}

// Observer is told about every dispatch and every request refused because
// its context was dead. Observers run on the dispatch goroutine and must
// return quickly.
type Observer interface {
	ObserveDispatch(info DispatchInfo)
	ObserveRejected(op string, ic Handle)
	// ObserveDestroyed is called once from Server.Destroy. No context is
	// live afterwards and no further dispatch follows.
	ObserveDestroyed()
}

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) ObserveDispatch(info DispatchInfo) {
	for _, obs := range o {
		obs.ObserveDispatch(info)
	}
}

func (o Observers) ObserveRejected(op string, ic Handle) {
	for _, obs := range o {
		obs.ObserveRejected(op, ic)
	}
}

func (o Observers) ObserveDestroyed() {
	for _, obs := range o {
		obs.ObserveDestroyed()
	}
}
