// Package respond is the request boundary: it turns an HTTP request into
// root component props, renders the root inside component.Boundary, and
// writes the composed output or the halted Response.
//
// Guards adapted from the resilience patterns protect the render: a
// context deadline per request (WithTimeout) and a bulkhead bounding
// concurrent renders (WithMaxConcurrent). Each request gets an ID, echoed in
// X-Request-ID and logged with the access line.
package respond
