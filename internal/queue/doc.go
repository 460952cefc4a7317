// Package queue provides a bounded single-producer single-consumer queue.
//
// It carries control events into the audio context and notifications out of
// it. Push and Pop never block and never allocate; a full queue drops the new
// item and counts it.
package queue
