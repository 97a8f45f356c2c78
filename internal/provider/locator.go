package provider

import (
	"fmt"
	"strconv"
	"strings"
)

// Locator addresses either the whole soda collection ("sodas") or a
// single row ("sodas/<id>").
type Locator struct{ raw string }

func Collection() Locator { return Locator{raw: "sodas"} }

func Item(id int64) Locator { return Locator{raw: fmt.Sprintf("sodas/%d", id)} }

// FromString wraps an externally supplied locator string; whether it
// routes anywhere is decided at match time.
func FromString(s string) Locator { return Locator{raw: s} }

func (l Locator) String() string { return l.raw }

type matchCode int

const (
	matchNone matchCode = iota
	matchSodas
	matchSodaID
)

type route struct {
	pattern string // "#" matches one numeric path segment
	code    matchCode
}

// router is the locator table. It is built once at provider construction
// and never mutated afterwards.
type router struct{ routes []route }

func newRouter() *router {
	return &router{routes: []route{
		{pattern: "sodas", code: matchSodas},
		{pattern: "sodas/#", code: matchSodaID},
	}}
}

// match resolves a locator to a route code and, for item routes, the row
// key. matchNone means the locator is not one this provider serves.
func (r *router) match(l Locator) (matchCode, int64) {
	segs := strings.Split(l.raw, "/")
	for _, rt := range r.routes {
		want := strings.Split(rt.pattern, "/")
		if len(want) != len(segs) {
			continue
		}
		var id int64
		ok := true
		for i, w := range want {
			if w == "#" {
				n, err := strconv.ParseInt(segs[i], 10, 64)
				if err != nil {
					ok = false
					break
				}
				id = n
				continue
			}
			if w != segs[i] {
				ok = false
				break
			}
		}
		if ok {
			return rt.code, id
		}
	}
	return matchNone, 0
}
