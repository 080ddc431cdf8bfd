// Package component composes render units into a tree.
//
// A Class is one kind of component. Calling it builds an Instance from
// Props, then runs the class RenderFunc, which may invoke the Children
// continuation it was handed any number of times. The tree is walked lazily
// by the components themselves; nothing is pre-built.
//
// Cached is the memoized form of Call. Each class owns one bounded FIFO
// store (see package cache), created on first use and registered so that
// FlushAll reaches it. Keys depend only on props: a second call with equal
// props and a different continuation returns the first output.
//
// Any render may end the whole request early with Halt (an error threaded
// up the stack) or Abort (a panic). Boundary, installed once per request,
// turns either into the carried Response. Halted work is never cached.
package component
