// geoctl is the operator CLI for the geo service: it geocodes text,
// measures distances and runs backfill or recommendation passes directly
// against the configured store.
package main

func main() {
	Execute()
}
