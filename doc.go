// Package eventgroup implements a multi-loop cooperative event scheduler
// for latency-sensitive workloads.
//
// # Architecture
//
// An [EventGroup] fans work out, by declared [Priority], across a small
// fixed set of [EventLoop] workers: one eager core cooperative loop, one
// eager blocking loop, one eager monitor loop, a lazily-created replication
// loop, and a lazily-created pool of concurrent loops. Each [EventLoop] owns
// one goroutine and drives its registered [EventHandler] instances
// round-robin, cooperatively: a handler performs one short, non-blocking
// step per invocation and returns.
//
// The monitor loop hosts [LoopBlockMonitor] probes, one per observed
// worker, which watch each worker's loopStartMS timestamp for signs of a
// stalled handler and, during a continuing stall, emit a diagnostic dump
// each time the stall crosses another half observation window rather than
// on every tick. It also hosts [PauserMonitor] probes,
// which periodically report [Pauser] statistics.
//
// # Usage
//
//	g := eventgroup.New(eventgroup.DefaultConfig(), eventgroup.WithDaemon(true))
//	g.Start()
//	defer g.Close()
//
//	if err := g.AddHandler(myHandler); err != nil {
//	    log.Fatal(err)
//	}
//
// # Scheduling model
//
// Cooperative within a loop, parallel across loops. Handlers on the same
// worker are strictly serialized; handlers on different workers run in
// parallel and must assume no mutual exclusion. There is no preemption,
// work stealing, fair scheduling, or priority inheritance between loops.
package eventgroup
