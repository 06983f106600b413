// Package vtest provides testing helpers for isodom components.
//
// The vtest package reduces boilerplate when testing components by mounting
// them on a fresh document and offering lookup, dispatch and render
// assertions.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Mount(t, Counter())
//	    h.Click(t, h.First(t, "button"))
//	    h.ExpectText(t, "button", "clicked 1")
//	}
//
// # Render Assertions
//
// Assert on a virtual tree without mounting it:
//
//	vtest.ExpectContains(t, view, "Welcome")
//	vtest.ExpectAttribute(t, view, "aria-pressed", "false")
//
// # Selection
//
// Harness.Find uses goquery over the live document, so it sees every element
// regardless of isolation. Use it to locate targets; use the component's own
// DOMSource to test what the component can see.
package vtest
