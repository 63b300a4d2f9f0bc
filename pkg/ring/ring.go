// Package ring implements the single-producer/single-consumer lock-free
// sample ring between the generator and the audio sink (§4.4), plus the
// park/unpark wake protocol that lets the generator sleep when the ring is
// full and wake when the sink drains it.
//
// The ring stores interleaved stereo float32 samples. Its synchronization
// follows the classic Lamport SPSC design: the producer only ever writes
// head and reads tail; the consumer only ever writes tail and reads head.
// Both are accessed through atomic.Uint64 so neither side needs a lock,
// matching the lock-free SPSC shape used elsewhere in the ecosystem for
// exactly this one-writer/one-reader relationship.
package ring

import (
	"sync/atomic"
	"time"
)

// Ring is a fixed-capacity circular buffer of float32 samples, safe for
// exactly one producer goroutine and one consumer goroutine concurrently.
// Capacity must be a count of samples (not blocks); the caller is
// responsible for sizing it to RingBlocks*BlockSize*2 (§4.4).
type Ring struct {
	buf  []float32
	cap  uint64        // len(buf); capacity is fixed at construction
	head atomic.Uint64 // next slot the producer will write; owned by producer
	tail atomic.Uint64 // next slot the consumer will read; owned by consumer

	// wake is the park/unpark signal: a buffered channel of capacity 1.
	// A signal that arrives with nobody parked is retained for the next
	// Park call rather than lost, so an unpark can never be missed.
	wake chan struct{}

	underruns atomic.Uint64
}

// New allocates a Ring with room for exactly capacity float32 samples.
func New(capacity int) *Ring {
	return &Ring{
		buf:  make([]float32, capacity),
		cap:  uint64(capacity),
		wake: make(chan struct{}, 1),
	}
}

// Len returns the number of samples currently queued (approximate if
// called from neither producer nor consumer, exact otherwise).
func (r *Ring) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Free returns the number of samples of free space available to the
// producer.
func (r *Ring) Free() int {
	return int(r.cap) - r.Len()
}

// Push writes len(samples) floats into the ring. The caller (the
// generator) must have already confirmed Free() >= len(samples); Push
// does not block or check again, matching the generator loop's contract
// of always measuring free space before evaluating a block.
func (r *Ring) Push(samples []float32) {
	head := r.head.Load()
	for i, s := range samples {
		r.buf[(head+uint64(i))%r.cap] = s
	}
	r.head.Store(head + uint64(len(samples)))
}

// Pop fills dst from the ring if it holds at least len(dst) samples, and
// reports true. If the ring holds fewer samples than requested, dst is
// filled with zeros (underrun, silent, counted) and Pop reports false.
// Called only from the audio sink callback; never blocks or allocates.
func (r *Ring) Pop(dst []float32) bool {
	tail := r.tail.Load()
	head := r.head.Load()
	available := head - tail
	if available < uint64(len(dst)) {
		for i := range dst {
			dst[i] = 0
		}
		r.underruns.Add(1)
		return false
	}
	for i := range dst {
		dst[i] = r.buf[(tail+uint64(i))%r.cap]
	}
	r.tail.Store(tail + uint64(len(dst)))
	return true
}

// Underruns returns the running count of callback invocations that found
// insufficient samples queued.
func (r *Ring) Underruns() uint64 {
	return r.underruns.Load()
}

// Park blocks the calling goroutine (the generator) until Unpark is next
// called, or until timeout elapses, whichever comes first. A spurious
// wake is harmless: the caller is expected to re-check Free() and re-park
// if there still isn't room.
func (r *Ring) Park(timeout time.Duration) {
	if timeout <= 0 {
		<-r.wake
		return
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-r.wake:
	case <-t.C:
	}
}

// Unpark wakes a parked generator. Called unconditionally by the audio
// sink after every callback invocation, underrun or not (§4.4); carries
// no data, and is harmless if nothing is parked.
func (r *Ring) Unpark() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}
