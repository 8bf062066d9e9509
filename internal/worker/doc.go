// Package worker provides a fixed-size goroutine pool for CPU-bound jobs.
//
// Callers hand a Job to Submit and block until a worker has run it or their
// context ends, so the number of jobs executing at once never exceeds the
// configured worker count no matter how many requests arrive together. The
// service uses it to keep bcrypt hashing off the request goroutines.
package worker
