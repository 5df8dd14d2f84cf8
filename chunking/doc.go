// Package chunking splits raw catalog content into bounded, independently
// normalizable chunks.
//
// Chunk boundaries follow logical record separators (rows for spreadsheet
// content, lines or paragraphs for text and PDF-extracted content), so a
// record is never split across two chunks. Concatenating the chunks in order
// reproduces the original record sequence, which is what makes per-chunk
// normalization equivalent to a single whole-content pass.
package chunking
