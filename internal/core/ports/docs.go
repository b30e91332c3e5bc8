// Package ports defines the contracts between the order core and its
// infrastructure: persistence and the processing queue.
package ports
