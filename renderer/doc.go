// Package renderer turns lots, gains and valuations into markdown documents.
package renderer
