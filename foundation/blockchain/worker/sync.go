package worker

// syncOperations periodically pulls the latest block and the pending
// transactions of every peer.
func (w *Worker) syncOperations() {
	w.evHandler("worker: syncOperations: G started")
	defer w.evHandler("worker: syncOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.evHandler("worker: syncOperations: sync peers")
				w.node.SyncPeers()
			}
		case <-w.shut:
			w.evHandler("worker: syncOperations: received shut signal")
			return
		}
	}
}
