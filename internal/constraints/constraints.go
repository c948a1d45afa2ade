// Package constraints provides type constraints for generic helpers.
package constraints

// Byteseq is any string-like input accepted by the parsers.
type Byteseq interface {
	~string | ~[]byte
}
