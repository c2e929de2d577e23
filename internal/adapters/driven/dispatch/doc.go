// Package dispatch hands worker requests off the request path.
//
// InProcess runs each job on a detached goroutine bounded by a
// concurrency limit. RedisQueue pushes jobs onto a Redis list that a
// separate `figsync worker` process consumes.
package dispatch
