// Package dom is the live document the isodom driver renders into.
//
// A Document owns one render root element, an *html.Node from
// golang.org/x/net/html, and a native event model: listeners attach to nodes
// per event type and Dispatch bubbles an event from its target through every
// ancestor, honoring StopPropagation.
//
// Renderer reconciles successive virtual trees into the render root. Nodes
// whose kind, tag and key match the previous emission are reused in place,
// so references held by listeners and event paths survive; everything else is
// created fresh and stale nodes are detached.
package dom
