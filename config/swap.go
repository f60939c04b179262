package config

import (
	"fmt"
	"math"
)

// SwapInterval is the number of vertical refreshes a buffer swap waits for.
// The zero value, DontWait, presents immediately.
type SwapInterval uint32

// DontWait presents without waiting for vertical refresh.
const DontWait SwapInterval = 0

// Wait returns the interval waiting for n vertical refreshes. n must be
// positive.
func Wait(n uint32) SwapInterval {
	if n == 0 {
		panic("config: Wait requires a positive interval")
	}
	return SwapInterval(n)
}

// Native returns the value passed to the native swap-interval call.
func (s SwapInterval) Native() int32 {
	if s > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(s)
}

func (s SwapInterval) String() string {
	if s == DontWait {
		return "dont-wait"
	}
	return fmt.Sprintf("wait(%d)", uint32(s))
}

// SwapIntervalRange is the half-open range [Min, Max) of swap intervals a
// config accepts.
type SwapIntervalRange struct {
	Min, Max uint32
}

// UnboundedMax is the exclusive upper bound used when a backend imposes no
// limit on the swap interval.
const UnboundedMax = math.MaxInt32

// SwapIntervalFromNative converts the inclusive [lo, hi] pair reported by a
// driver. Negative values or hi < lo indicate a broken driver and panic.
func SwapIntervalFromNative(lo, hi int32) SwapIntervalRange {
	if lo < 0 || hi < 0 {
		panic(fmt.Sprintf("config: driver reported negative swap interval [%d, %d]", lo, hi))
	}
	r := SwapIntervalRange{Min: uint32(lo), Max: uint32(hi) + 1}
	if r.Min >= r.Max {
		panic(fmt.Sprintf("config: driver reported empty swap interval range [%d, %d]", lo, hi))
	}
	return r
}

// Contains reports whether s is accepted.
func (r SwapIntervalRange) Contains(s SwapInterval) bool {
	return uint32(s) >= r.Min && uint32(s) < r.Max
}

// Covers reports whether every interval of o is accepted.
func (r SwapIntervalRange) Covers(o SwapIntervalRange) bool {
	return o.Min >= r.Min && o.Max <= r.Max
}

// DontWaitOnly reports whether only DontWait is accepted.
func (r SwapIntervalRange) DontWaitOnly() bool { return r.Min == 0 && r.Max == 1 }

// CanWait reports whether some Wait interval is accepted.
func (r SwapIntervalRange) CanWait() bool { return r.Max > 1 }

// CanDontWait reports whether DontWait is accepted.
func (r SwapIntervalRange) CanDontWait() bool { return r.Min == 0 }

func (r SwapIntervalRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Min, r.Max)
}
