// Stratus - Multi-Cloud Inventory Collector
// Poll. Normalize. Reconcile.
package main

func main() {
	Execute()
}
