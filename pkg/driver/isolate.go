package driver

import (
	"strconv"
	"sync/atomic"

	"github.com/vango-dev/isodom/pkg/stream"
	"github.com/vango-dev/isodom/pkg/vdom"
)

// Component turns a source into a stream of trees.
type Component func(src DOMSource) stream.Stream[*vdom.VNode]

var scopeSeq atomic.Uint64

// NewScopeID returns a scope identifier unique within the process.
func NewScopeID() string {
	return "s" + strconv.FormatUint(scopeSeq.Add(1), 10)
}

// Isolate wraps c so it reads from child scope id of the source it is given
// and tags its output with the same id. An empty id is replaced by one from
// NewScopeID, so two unnamed instances never share a scope.
//
// Example:
//
//	counter := driver.Isolate(Counter, "counter")
//	tree := counter(src)
func Isolate(c Component, id string) Component {
	if id == "" {
		id = NewScopeID()
	}
	return func(src DOMSource) stream.Stream[*vdom.VNode] {
		child, err := IsolateSource(src, id)
		if err != nil {
			return stream.Throw[*vdom.VNode](err)
		}
		out, err := IsolateSink(c(child), id)
		if err != nil {
			return stream.Throw[*vdom.VNode](err)
		}
		return out
	}
}
