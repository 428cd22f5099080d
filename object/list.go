package object

import "github.com/kvcore/kvcore/quicklist"

// NewList returns an empty list Object. spec.md §4.D: "list | packed
// (obsolete) | quicklist | always quicklist in this spec" — there is no
// compact list encoding here, every list Object is quicklist-backed from
// creation.
func NewList(opts ...quicklist.Option) *Object {
	return Create(TypeList, EncQuicklist, quicklist.New(opts...))
}

// List returns the quicklist payload of a list Object. Panics (a
// programmer error, not a user-visible WRONGTYPE) if o is not a list;
// callers must gate with CheckType first.
func List(o *Object) *quicklist.List { return o.payload.(*quicklist.List) }
