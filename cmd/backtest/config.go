package main

const (
	routerEventCapacity = 256

	smaFastPeriod = 5
	smaSlowPeriod = 20
	rsiPeriod     = 14

	// Fraction of free cash committed per entry.
	buyRatio = 0.9
)
