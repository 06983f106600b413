// Package vdom provides the virtual tree rendered by the isodom driver.
//
// A VNode is an immutable description of one element, text node, fragment,
// component or raw HTML chunk. Components emit a fresh tree on every change;
// the driver reconciles each emission against the live DOM.
//
// # Element API
//
// Elements are created using variadic factory functions or a hyperscript
// selector:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//	H("ul.list#todos", Li(Key("a"), "first"))
//
// # Isolation
//
// ApplyScope tags a root node with an isolation scope identifier. Tags form
// an ordered set: applying the same identifier twice is a no-op. The
// renderer turns them into namespace classes and the scope attribute.
//
// # Diffing
//
// The Diff function compares two VNode trees and returns a slice of Patch
// operations addressed by child index paths. Keyed reconciliation is used
// when children have Key attributes. The driver uses it to decide whether an
// emission changed the structure of the document.
package vdom
