package metrics

import (
	"expvar"
)

// Store mutation metrics (counters) using expvar maps keyed by operation.
var (
	storeMutations  = expvar.NewMap("linkgraph_store_mutations_total")
	storeFailures   = expvar.NewMap("linkgraph_store_failures_total")
	validationFails = expvar.NewMap("linkgraph_validation_failures_total")
)

// Session metrics.
var (
	reloadsTotal    = new(expvar.Int)
	rollbacksTotal  = new(expvar.Int)
	optimisticTotal = new(expvar.Int)
	snapshotsTotal  = new(expvar.Int)
)

func init() {
	expvar.Publish("linkgraph_session_reloads_total", reloadsTotal)
	expvar.Publish("linkgraph_session_rollbacks_total", rollbacksTotal)
	expvar.Publish("linkgraph_optimistic_mutations_total", optimisticTotal)
	expvar.Publish("linkgraph_session_snapshots_total", snapshotsTotal)
}

// Store helpers
func StoreMutation(op string)       { storeMutations.Add(op, 1) }
func StoreFailure(op string)        { storeFailures.Add(op, 1) }
func ValidationFailure(code string) { validationFails.Add(code, 1) }

// Session helpers
func IncReloads()    { reloadsTotal.Add(1) }
func IncRollbacks()  { rollbacksTotal.Add(1) }
func IncOptimistic() { optimisticTotal.Add(1) }
func IncSnapshots()  { snapshotsTotal.Add(1) }
