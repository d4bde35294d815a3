// Package gps converts between wall clock time and GPS time.
//
// GPS time is a continuous count of seconds since 1980-01-06T00:00:00Z which, unlike UTC,
// does not skip leap seconds.
package gps

import (
	"fmt"
	"math"
	"time"
)

// nsPerSecond is the number of nanoseconds in one second.
const nsPerSecond = int64(time.Second)

// epoch is the start of GPS time as a UTC instant.
var epoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// leapSeconds lists the UTC instants at which a leap second was inserted since the GPS epoch.
var leapSeconds = []time.Time{
	time.Date(1981, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1982, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1983, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1985, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1988, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1991, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1992, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1993, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1994, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1997, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2012, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2015, time.July, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC),
}

// Time is an absolute GPS time split into integer seconds and a nanosecond fraction.
// NS is always in [0, 1e9).
type Time struct {
	Sec int64
	NS  int64
}

// New returns a normalized Time from seconds and nanoseconds.
func New(sec, ns int64) Time {
	sec += ns / nsPerSecond
	ns %= nsPerSecond
	if ns < 0 {
		ns += nsPerSecond
		sec--
	}
	return Time{Sec: sec, NS: ns}
}

// FromSeconds converts floating point GPS seconds to a Time, rounding to the nearest nanosecond.
func FromSeconds(s float64) Time {
	sec := math.Floor(s)
	ns := math.Round((s - sec) * float64(nsPerSecond))
	return New(int64(sec), int64(ns))
}

// FromTime converts a wall clock instant to GPS time.
func FromTime(t time.Time) Time {
	t = t.UTC()
	d := t.Sub(epoch)
	sec := int64(d / time.Second)
	ns := int64(d % time.Second)
	return New(sec+int64(leapsAt(t)), ns)
}

// Now returns the current GPS time.
func Now() Time {
	return FromTime(time.Now())
}

// leapsAt returns the number of leap seconds inserted between the GPS epoch and t.
func leapsAt(t time.Time) int {
	n := 0
	for _, l := range leapSeconds {
		if t.Before(l) {
			break
		}
		n++
	}
	return n
}

// Seconds returns t as floating point GPS seconds.
func (t Time) Seconds() float64 {
	return float64(t.Sec) + float64(t.NS)/float64(nsPerSecond)
}

// Add returns t shifted by d.
func (t Time) Add(d time.Duration) Time {
	return New(t.Sec+int64(d/time.Second), t.NS+int64(d%time.Second))
}

// Sub returns the duration t-u.
func (t Time) Sub(u Time) time.Duration {
	return time.Duration((t.Sec-u.Sec)*nsPerSecond + (t.NS - u.NS))
}

// Before reports whether t is strictly before u.
func (t Time) Before(u Time) bool {
	return t.Sec < u.Sec || (t.Sec == u.Sec && t.NS < u.NS)
}

// String formats t as seconds with a nine digit fraction.
func (t Time) String() string {
	return fmt.Sprintf("%d.%09d", t.Sec, t.NS)
}
