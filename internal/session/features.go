package session

import "net/url"

// ScriptParam is the query parameter that overrides the client script
// preference for a visitor ("1" enables, "0" disables).
const ScriptParam = "js"

// ResolveScripts decides whether client-side script is attached to the
// current render, and records any explicit override in the bag.
//
// An override in the URL always wins and is sticky: it is written back into
// the bag so the preference survives subsequent requests. Without an
// override the bag's recorded preference applies; an empty bag renders
// without scripts for this request but records nothing.
func ResolveScripts(query url.Values, bag *Bag) bool {
	if query.Has(ScriptParam) {
		enabled := query.Get(ScriptParam) == "1"
		bag.JS = &enabled
		return enabled
	}

	if bag.JS != nil {
		return *bag.JS
	}

	return false
}
